package fstest

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
	"github.com/jmgilman/go/filestore/fs/core"
)

// TestReadWrite checks whole-file reads and writes.
func TestReadWrite(t *testing.T, s *filestore.Store, config Config) {
	const group = "ReadWrite"

	run(t, config, group, "RoundTrip", func(t *testing.T) {
		data := []byte{0x00, 0x01, 0xfe, 0xff, '\n', 'x'}
		if err := s.WriteBytes("rw/file.bin", data, false); err != nil {
			t.Fatalf("WriteBytes(rw/file.bin): got error %v, want nil", err)
		}
		expectContent(t, s, "rw/file.bin", data)
	})

	run(t, config, group, "Overwrite", func(t *testing.T) {
		mustWrite(t, s, "rw/over.txt", []byte("first"))

		err := s.WriteBytes("rw/over.txt", []byte("second"), false)
		expectCode(t, err, errors.CodeAlreadyExists, "WriteBytes(overwrite=false)")
		expectContent(t, s, "rw/over.txt", []byte("first"))

		if err := s.WriteBytes("rw/over.txt", []byte("third"), true); err != nil {
			t.Fatalf("WriteBytes(overwrite=true): got error %v, want nil", err)
		}
		expectContent(t, s, "rw/over.txt", []byte("third"))
	})

	run(t, config, group, "EmptyFile", func(t *testing.T) {
		mustWrite(t, s, "rw/empty", nil)
		expectContent(t, s, "rw/empty", []byte{})
	})

	run(t, config, group, "CreatesParents", func(t *testing.T) {
		mustWrite(t, s, "rw/deep/er/x.txt", []byte("x"))
		ok, err := s.IsDir("rw/deep/er")
		if err != nil || !ok {
			t.Errorf("IsDir(rw/deep/er) = %v, %v; want true, nil", ok, err)
		}
	})

	run(t, config, group, "NormalizedPaths", func(t *testing.T) {
		mustWrite(t, s, `rw\norm\a.txt`, []byte("norm"))
		expectContent(t, s, "rw/norm/a.txt", []byte("norm"))
		expectContent(t, s, "/rw/./norm//a.txt", []byte("norm"))
		expectContent(t, s, "rw/norm/%61.txt", []byte("norm"))
	})

	run(t, config, group, "Errors", func(t *testing.T) {
		mustWrite(t, s, "rw/errs/file", []byte("f"))

		_, err := s.ReadBytes("rw/errs/missing")
		expectCode(t, err, errors.CodeNotFound, "ReadBytes(missing)")

		_, err = s.ReadBytes("rw/errs")
		expectCode(t, err, errors.CodeIsADirectory, "ReadBytes(directory)")

		err = s.WriteBytes("rw/errs", []byte("x"), true)
		expectCode(t, err, errors.CodeIsADirectory, "WriteBytes(directory)")

		_, err = s.ReadBytes("../outside")
		expectCode(t, err, errors.CodeInvalidPath, "ReadBytes(../outside)")

		err = s.WriteBytes("", []byte("x"), true)
		expectCode(t, err, errors.CodeInvalidPath, "WriteBytes(empty path)")
	})
}

// TestStreams checks streaming reads and writes.
func TestStreams(t *testing.T, s *filestore.Store, config Config) {
	const group = "Streams"

	run(t, config, group, "WriteThenRead", func(t *testing.T) {
		w, err := s.OpenWrite("streams/chunked.txt")
		if err != nil {
			t.Fatalf("OpenWrite: got error %v, want nil", err)
		}
		var want bytes.Buffer
		for i := 0; i < 100; i++ {
			chunk := bytes.Repeat([]byte{byte('a' + i%26)}, 100)
			want.Write(chunk)
			if _, err := w.Write(chunk); err != nil {
				t.Fatalf("Write chunk %d: got error %v, want nil", i, err)
			}
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: got error %v, want nil", err)
		}

		r, err := s.OpenRead("streams/chunked.txt")
		if err != nil {
			t.Fatalf("OpenRead: got error %v, want nil", err)
		}
		got, err := io.ReadAll(r)
		_ = r.Close()
		if err != nil {
			t.Fatalf("ReadAll: got error %v, want nil", err)
		}
		if !bytes.Equal(got, want.Bytes()) {
			t.Errorf("stream content mismatch: got %d bytes, want %d", len(got), want.Len())
		}
		expectContent(t, s, "streams/chunked.txt", want.Bytes())
	})

	run(t, config, group, "Truncates", func(t *testing.T) {
		mustWrite(t, s, "streams/trunc.txt", []byte("a much longer original"))
		w, err := s.OpenWrite("streams/trunc.txt")
		if err != nil {
			t.Fatalf("OpenWrite: got error %v, want nil", err)
		}
		_, _ = io.WriteString(w, "short")
		if err := w.Close(); err != nil {
			t.Fatalf("Close: got error %v, want nil", err)
		}
		expectContent(t, s, "streams/trunc.txt", []byte("short"))
	})

	run(t, config, group, "Abort", func(t *testing.T) {
		mustWrite(t, s, "streams/abort.txt", []byte("kept"))
		w, err := s.OpenWrite("streams/abort.txt")
		if err != nil {
			t.Fatalf("OpenWrite: got error %v, want nil", err)
		}
		a, ok := w.(core.Aborter)
		if !ok {
			_ = w.Close()
			t.Skip("writer does not implement core.Aborter")
		}
		_, _ = io.WriteString(w, "discarded")
		if err := a.Abort(); err != nil {
			t.Fatalf("Abort: got error %v, want nil", err)
		}
		if err := w.Close(); err != nil {
			t.Errorf("Close after Abort: got error %v, want nil", err)
		}
		expectContent(t, s, "streams/abort.txt", []byte("kept"))

		names, err := s.ListDir("streams")
		if err != nil {
			t.Fatalf("ListDir(streams): got error %v, want nil", err)
		}
		for _, name := range names {
			if strings.HasSuffix(name, ".tmp") {
				t.Errorf("ListDir(streams) contains leftover %q", name)
			}
		}
	})

	run(t, config, group, "OpenReadMissing", func(t *testing.T) {
		_, err := s.OpenRead("streams/none")
		expectCode(t, err, errors.CodeNotFound, "OpenRead(missing)")
	})
}
