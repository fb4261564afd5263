package filestore

import (
	"bytes"
	"io"
	"os"

	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
	"github.com/jmgilman/go/filestore/storepath"
)

// Operations below dispatch to the provider when the capability is declared
// and otherwise synthesize it from declared primitives. They return errors
// without facade context; the exported methods add it.

func (s *Store) readBytes(op string, p storepath.Path) ([]byte, error) {
	if s.caps.Has(core.CapReadBytes) {
		r, ok := s.provider.(core.ByteReader)
		if !ok {
			return nil, s.missingImpl(op, p, core.CapReadBytes)
		}
		return r.ReadBytes(p)
	}
	if !s.caps.Has(core.CapOpenRead) {
		return nil, s.unsupported(op, p, core.CapReadBytes)
	}
	s.usingFallback(op, core.CapReadBytes)

	rc, err := s.openRead(op, p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, core.Wrap(err, errors.CodeInternal, op, p)
	}
	return data, nil
}

func (s *Store) writeBytes(op string, p storepath.Path, data []byte, overwrite bool) error {
	if s.caps.Has(core.CapWriteBytes) {
		w, ok := s.provider.(core.ByteWriter)
		if !ok {
			return s.missingImpl(op, p, core.CapWriteBytes)
		}
		return w.WriteBytes(p, data, overwrite)
	}
	if !s.caps.Has(core.CapOpenWrite) {
		return s.unsupported(op, p, core.CapWriteBytes)
	}
	s.usingFallback(op, core.CapWriteBytes)

	if !overwrite {
		exists, err := s.exists(op, p)
		if err != nil {
			return err
		}
		if exists {
			return core.AlreadyExists(op, p)
		}
	}

	wc, err := s.openWrite(op, p)
	if err != nil {
		return err
	}
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return core.Wrap(err, errors.CodeInternal, op, p)
	}
	return wc.Close()
}

func (s *Store) openRead(op string, p storepath.Path) (io.ReadCloser, error) {
	if s.caps.Has(core.CapOpenRead) {
		r, ok := s.provider.(core.StreamReader)
		if !ok {
			return nil, s.missingImpl(op, p, core.CapOpenRead)
		}
		return r.OpenRead(p)
	}
	if !s.caps.Has(core.CapReadBytes) {
		return nil, s.unsupported(op, p, core.CapOpenRead)
	}
	s.usingFallback(op, core.CapOpenRead)

	data, err := s.readBytes(op, p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) openWrite(op string, p storepath.Path) (io.WriteCloser, error) {
	if s.caps.Has(core.CapOpenWrite) {
		w, ok := s.provider.(core.StreamWriter)
		if !ok {
			return nil, s.missingImpl(op, p, core.CapOpenWrite)
		}
		return w.OpenWrite(p)
	}
	if !s.caps.Has(core.CapWriteBytes) {
		return nil, s.unsupported(op, p, core.CapOpenWrite)
	}
	s.usingFallback(op, core.CapOpenWrite)
	return &bufferedWriter{s: s, op: op, p: p}, nil
}

// bufferedWriter collects a stream and stores it with WriteBytes on Close.
type bufferedWriter struct {
	s      *Store
	op     string
	p      storepath.Path
	buf    bytes.Buffer
	closed bool
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	if w.closed {
		return 0, os.ErrClosed
	}
	return w.buf.Write(b)
}

func (w *bufferedWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.s.fail(w.s.writeBytes(w.op, w.p, w.buf.Bytes(), true), w.op, w.p)
}

// Abort implements core.Aborter.
func (w *bufferedWriter) Abort() error {
	w.closed = true
	w.buf.Reset()
	return nil
}

// kind is the result of inspecting a path.
type kind struct {
	exists bool
	dir    bool
}

// inspect determines whether p exists and whether it is a directory using
// whichever of stat, is_dir, is_file and exists the provider declares.
func (s *Store) inspect(op string, p storepath.Path) (kind, error) {
	switch {
	case s.caps.Has(core.CapStat):
		fi, err := s.stat(op, p)
		if errors.HasCode(err, errors.CodeNotFound) {
			return kind{}, nil
		}
		if err != nil {
			return kind{}, err
		}
		return kind{exists: true, dir: fi.IsDir()}, nil

	case s.caps.Has(core.CapIsDir) && (s.caps.Has(core.CapIsFile) || s.caps.Has(core.CapExists)):
		d, _ := s.provider.(core.DirChecker)
		if d == nil {
			return kind{}, s.missingImpl(op, p, core.CapIsDir)
		}
		dir, err := d.IsDir(p)
		if err != nil || dir {
			return kind{exists: dir, dir: dir}, err
		}
		var exists bool
		if f, ok := s.provider.(core.FileChecker); ok && s.caps.Has(core.CapIsFile) {
			exists, err = f.IsFile(p)
		} else if e, ok := s.provider.(core.Exister); ok && s.caps.Has(core.CapExists) {
			exists, err = e.Exists(p)
		} else {
			return kind{}, s.missingImpl(op, p, core.CapIsFile)
		}
		return kind{exists: exists}, err

	}
	return kind{}, s.unsupported(op, p, core.CapStat)
}

// canInspect reports whether inspect can tell files from directories.
func (s *Store) canInspect() bool {
	return s.caps.Has(core.CapStat) ||
		(s.caps.Has(core.CapIsDir) && (s.caps.Has(core.CapIsFile) || s.caps.Has(core.CapExists)))
}

func (s *Store) exists(op string, p storepath.Path) (bool, error) {
	if s.caps.Has(core.CapExists) {
		e, ok := s.provider.(core.Exister)
		if !ok {
			return false, s.missingImpl(op, p, core.CapExists)
		}
		return e.Exists(p)
	}
	if !s.canInspect() {
		return false, s.unsupported(op, p, core.CapExists)
	}
	s.usingFallback(op, core.CapExists)
	k, err := s.inspect(op, p)
	return k.exists, err
}

func (s *Store) isDir(op string, p storepath.Path) (bool, error) {
	if s.caps.Has(core.CapIsDir) {
		d, ok := s.provider.(core.DirChecker)
		if !ok {
			return false, s.missingImpl(op, p, core.CapIsDir)
		}
		return d.IsDir(p)
	}
	if !s.caps.Has(core.CapStat) {
		return false, s.unsupported(op, p, core.CapIsDir)
	}
	s.usingFallback(op, core.CapIsDir)
	k, err := s.inspect(op, p)
	return k.dir, err
}

func (s *Store) isFile(op string, p storepath.Path) (bool, error) {
	if s.caps.Has(core.CapIsFile) {
		f, ok := s.provider.(core.FileChecker)
		if !ok {
			return false, s.missingImpl(op, p, core.CapIsFile)
		}
		return f.IsFile(p)
	}
	if !s.canInspect() {
		return false, s.unsupported(op, p, core.CapIsFile)
	}
	s.usingFallback(op, core.CapIsFile)
	k, err := s.inspect(op, p)
	return k.exists && !k.dir, err
}

func (s *Store) stat(op string, p storepath.Path) (core.FileInfo, error) {
	if !s.caps.Has(core.CapStat) {
		return core.FileInfo{}, s.unsupported(op, p, core.CapStat)
	}
	st, ok := s.provider.(core.Stater)
	if !ok {
		return core.FileInfo{}, s.missingImpl(op, p, core.CapStat)
	}
	return st.Stat(p)
}

func (s *Store) listDir(op string, p storepath.Path) ([]string, error) {
	if !s.caps.Has(core.CapListDir) {
		return nil, s.unsupported(op, p, core.CapListDir)
	}
	l, ok := s.provider.(core.Lister)
	if !ok {
		return nil, s.missingImpl(op, p, core.CapListDir)
	}
	return l.ListDir(p)
}

func (s *Store) makeDirs(op string, p storepath.Path) error {
	if !s.caps.Has(core.CapMakeDirs) {
		return s.unsupported(op, p, core.CapMakeDirs)
	}
	m, ok := s.provider.(core.DirMaker)
	if !ok {
		return s.missingImpl(op, p, core.CapMakeDirs)
	}
	return m.MakeDirs(p)
}

func (s *Store) remove(op string, p storepath.Path) error {
	if !s.caps.Has(core.CapRemove) {
		return s.unsupported(op, p, core.CapRemove)
	}
	r, ok := s.provider.(core.Remover)
	if !ok {
		return s.missingImpl(op, p, core.CapRemove)
	}
	return r.Remove(p)
}

func (s *Store) rmdir(op string, p storepath.Path) error {
	if !s.caps.Has(core.CapRmdir) {
		return s.unsupported(op, p, core.CapRmdir)
	}
	r, ok := s.provider.(core.DirRemover)
	if !ok {
		return s.missingImpl(op, p, core.CapRmdir)
	}
	return r.Rmdir(p)
}

func (s *Store) rmtree(op string, p storepath.Path) error {
	if s.caps.Has(core.CapRmtree) {
		r, ok := s.provider.(core.TreeRemover)
		if !ok {
			return s.missingImpl(op, p, core.CapRmtree)
		}
		return r.Rmtree(p)
	}
	if !s.synthesizable(core.CapRmtree) {
		return s.unsupported(op, p, core.CapRmtree)
	}
	s.usingFallback(op, core.CapRmtree)

	k, err := s.inspect(op, p)
	switch {
	case err != nil:
		return err
	case !k.exists:
		return nil
	case !k.dir:
		return core.NotADirectory(op, p)
	}
	return s.removeTree(op, p)
}

// removeTree deletes the directory p bottom-up with remove and rmdir.
func (s *Store) removeTree(op string, p storepath.Path) error {
	names, err := s.listDir(op, p)
	if err != nil {
		return err
	}
	for _, name := range names {
		child, err := p.Join(name)
		if err != nil {
			return err
		}
		k, err := s.inspect(op, child)
		if err != nil {
			return err
		}
		if k.dir {
			err = s.removeTree(op, child)
		} else {
			err = s.remove(op, child)
		}
		if err != nil && !errors.HasCode(err, errors.CodeNotFound) {
			return err
		}
	}
	return s.rmdir(op, p)
}

func (s *Store) rename(op string, src, dst storepath.Path) error {
	if src.String() == dst.String() {
		return nil
	}
	if dst.Within(src) {
		return errors.Newf(errors.CodeInvalidPath, "rename %s to %s: destination is inside the source",
			src.String(), dst.String())
	}

	if s.caps.Has(core.CapRename) {
		r, ok := s.provider.(core.Renamer)
		if !ok {
			return s.missingImpl(op, src, core.CapRename)
		}
		return r.Rename(src, dst)
	}
	if !s.synthesizable(core.CapRename) {
		return s.unsupported(op, src, core.CapRename)
	}
	s.usingFallback(op, core.CapRename)

	sk, err := s.inspect(op, src)
	if err != nil {
		return err
	}
	if !sk.exists {
		return core.NotFound(op, src)
	}
	dk, err := s.inspect(op, dst)
	if err != nil {
		return err
	}
	if dk.exists {
		return core.AlreadyExists(op, dst)
	}

	copied := 0
	if sk.dir {
		err = s.copyTree(op, src, dst, &copied)
	} else {
		err = s.copyFile(op, src, dst, false)
		if err == nil {
			copied = 1
		}
	}
	if err != nil {
		if copied > 0 {
			return partialRename(err, "copy", src, dst, copied)
		}
		if sk.dir {
			// copyTree may have created directories under dst before failing.
			if cerr := s.rmtree(op, dst); cerr != nil {
				return partialRename(err, "copy", src, dst, 0)
			}
		}
		return err
	}

	if sk.dir {
		err = s.rmtree(op, src)
	} else {
		err = s.remove(op, src)
	}
	if err != nil {
		return partialRename(err, "delete", src, dst, copied)
	}
	return nil
}

// copyTree recreates the directory src at dst, counting copied files.
func (s *Store) copyTree(op string, src, dst storepath.Path, copied *int) error {
	if err := s.makeDirs(op, dst); err != nil {
		return err
	}
	names, err := s.listDir(op, src)
	if err != nil {
		return err
	}
	for _, name := range names {
		from, err := src.Join(name)
		if err != nil {
			return err
		}
		to, err := dst.Join(name)
		if err != nil {
			return err
		}
		k, err := s.inspect(op, from)
		if err != nil {
			return err
		}
		if k.dir {
			if err := s.copyTree(op, from, to, copied); err != nil {
				return err
			}
			continue
		}
		if err := s.copyFile(op, from, to, false); err != nil {
			return err
		}
		*copied++
	}
	return nil
}

// copyFile copies one file, streaming when both stream capabilities are
// declared.
func (s *Store) copyFile(op string, src, dst storepath.Path, overwrite bool) error {
	if s.caps.Has(core.CapOpenRead) && s.caps.Has(core.CapOpenWrite) && overwrite {
		r, err := s.openRead(op, src)
		if err != nil {
			return err
		}
		defer func() { _ = r.Close() }()

		w, err := s.openWrite(op, dst)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, r); err != nil {
			_ = w.Close()
			return core.Wrap(err, errors.CodeInternal, op, dst)
		}
		return w.Close()
	}

	data, err := s.readBytes(op, src)
	if err != nil {
		return err
	}
	return s.writeBytes(op, dst, data, overwrite)
}

func partialRename(cause error, stage string, src, dst storepath.Path, copied int) error {
	return errors.WrapWithContext(cause, errors.CodePartialRename,
		"rename "+src.String()+" to "+dst.String()+": partially completed during "+stage,
		map[string]interface{}{
			"src":    src.String(),
			"dst":    dst.String(),
			"stage":  stage,
			"copied": copied,
		})
}
