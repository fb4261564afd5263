package fstest

import (
	"bytes"
	"testing"

	"github.com/jmgilman/go/filestore"
	"github.com/jmgilman/go/filestore/errors"
)

func mustWrite(t *testing.T, s *filestore.Store, path string, data []byte) {
	t.Helper()
	if err := s.WriteBytes(path, data, true); err != nil {
		t.Fatalf("WriteBytes(%s): setup failed: %v", path, err)
	}
}

func mustMakeDirs(t *testing.T, s *filestore.Store, path string) {
	t.Helper()
	if err := s.MakeDirs(path); err != nil {
		t.Fatalf("MakeDirs(%s): setup failed: %v", path, err)
	}
}

func expectContent(t *testing.T, s *filestore.Store, path string, want []byte) {
	t.Helper()
	got, err := s.ReadBytes(path)
	if err != nil {
		t.Fatalf("ReadBytes(%s): got error %v, want nil", path, err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("ReadBytes(%s) = %q, want %q", path, got, want)
	}
}

func expectCode(t *testing.T, err error, code errors.ErrorCode, call string) {
	t.Helper()
	if err == nil {
		t.Errorf("%s: got nil error, want %s", call, code)
		return
	}
	if !errors.HasCode(err, code) {
		t.Errorf("%s: got error %v (code %s), want %s", call, err, errors.GetCode(err), code)
	}
}

func expectExists(t *testing.T, s *filestore.Store, path string, want bool) {
	t.Helper()
	got, err := s.Exists(path)
	if err != nil {
		t.Fatalf("Exists(%s): got error %v, want nil", path, err)
	}
	if got != want {
		t.Errorf("Exists(%s) = %v, want %v", path, got, want)
	}
}

func expectList(t *testing.T, s *filestore.Store, path string, want ...string) {
	t.Helper()
	got, err := s.ListDir(path)
	if err != nil {
		t.Fatalf("ListDir(%s): got error %v, want nil", path, err)
	}
	if len(got) != len(want) {
		t.Fatalf("ListDir(%s) = %v, want %v", path, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("ListDir(%s) = %v, want %v", path, got, want)
		}
	}
}
