package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "case.json")
		content := []byte(`{"start": "a", "end": "a", "real": true}`)

		if err := writeFileAtomic(filename, content, 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != string(content) {
			t.Errorf("Expected %q, got %q", content, got)
		}
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, "case.json")

		if err := os.WriteFile(filename, []byte("initial"), 0644); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}

		if err := writeFileAtomic(filename, []byte("overwritten"), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != "overwritten" {
			t.Errorf("Expected content 'overwritten', got '%s'", string(got))
		}
	})

	t.Run("Creates Missing Directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		filename := filepath.Join(tmpDir, ".otcheck", "index.json")

		if err := writeFileAtomic(filename, []byte("{}"), 0644); err != nil {
			t.Fatalf("writeFileAtomic failed: %v", err)
		}
		if _, err := os.Stat(filename); err != nil {
			t.Fatalf("File was not created: %v", err)
		}
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		tmpDir := t.TempDir()
		if err := writeFileAtomic(filepath.Join(tmpDir, "a.yaml"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}

		entries, err := os.ReadDir(tmpDir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), TempFilePrefix) {
				t.Errorf("leftover temp file %s", e.Name())
			}
		}
	})
}
