package pidfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempFile(t *testing.T) *File {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "procrun.pid"))
}

func TestWriteFormat(t *testing.T) {
	f := tempFile(t)

	if err := f.Write(1337); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, err := os.ReadFile(f.Path())
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "1337\n" {
		t.Errorf("expected content %q, got %q", "1337\n", string(data))
	}
}

func TestWriteOverwrites(t *testing.T) {
	f := tempFile(t)

	if err := os.WriteFile(f.Path(), []byte("99999\nstale trailer"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := f.Write(42); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	data, _ := os.ReadFile(f.Path())
	if string(data) != "42\n" {
		t.Errorf("expected old content replaced, got %q", string(data))
	}
}

func TestReadRoundTrip(t *testing.T) {
	f := tempFile(t)

	if err := f.Write(1337); err != nil {
		t.Fatal(err)
	}

	pid, err := f.Read()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if pid != 1337 {
		t.Errorf("expected pid 1337, got %d", pid)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"text", "not a pid\n"},
		{"empty", ""},
		{"trailing garbage", "1337 extra\n"},
		{"float", "13.37\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tempFile(t)
			if err := os.WriteFile(f.Path(), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}

			if _, err := f.Read(); !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestReadMissing(t *testing.T) {
	f := tempFile(t)

	_, err := f.Read()
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if errors.Is(err, ErrMalformed) {
		t.Error("missing file should be an I/O error, not ErrMalformed")
	}
}

func TestRemove(t *testing.T) {
	f := tempFile(t)

	if err := f.Write(1); err != nil {
		t.Fatal(err)
	}
	if err := f.Remove(); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if f.Exists() {
		t.Error("file should not exist after remove")
	}
}

func TestRemoveMissingIsNoOp(t *testing.T) {
	f := tempFile(t)

	if err := f.Remove(); err != nil {
		t.Errorf("removing a missing file should not fail, got %v", err)
	}
}

func TestExists(t *testing.T) {
	f := tempFile(t)

	if f.Exists() {
		t.Error("file should not exist before write")
	}
	if err := f.Write(1); err != nil {
		t.Fatal(err)
	}
	if !f.Exists() {
		t.Error("file should exist after write")
	}
}
