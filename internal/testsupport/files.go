package testsupport

import (
	"bytes"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// fixedModTime делает архивы одного и того же каталога побайтно одинаковыми.
var fixedModTime = time.Date(2021, 3, 14, 15, 9, 26, 0, time.UTC)

// WritePhotos создаёт каталог name внутри root и раскладывает в него файлы.
// Ключи files задают пути относительно каталога.
func WritePhotos(t testing.TB, root, name string, files map[string][]byte) string {
	t.Helper()

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", path, err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		if err := os.Chtimes(path, fixedModTime, fixedModTime); err != nil {
			t.Fatalf("chtimes %s: %v", path, err)
		}
	}
	return dir
}

// RandomBytes возвращает несжимаемые данные: архив получается не меньше исходника.
func RandomBytes(t testing.TB, n int) []byte {
	t.Helper()

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return b
}

// ReadZip разбирает архив и возвращает содержимое файлов по именам записей.
// Записи каталогов пропускаются.
func ReadZip(t testing.TB, data []byte) map[string][]byte {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip (%d bytes): %v", len(data), err)
	}

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		out[f.Name] = content
	}
	return out
}
