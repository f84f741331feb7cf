// Package packer пишет ZIP-архив каталога в произвольный io.Writer, не создавая
// временных файлов. Используется как встроенный архиватор: сервис запускает
// `photoarchive pack .` отдельным процессом и читает архив из его stdout.
package packer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
)

// Options управляет раскладкой и сжатием записей.
type Options struct {
	// Flatten складывает все файлы в корень архива, без подкаталогов.
	Flatten bool
	// Store отключает сжатие: фотографии и так сжаты.
	Store bool
}

// Write обходит root в лексическом порядке и пишет каждый обычный файл записью архива.
// Пустой каталог даёт валидный пустой архив.
func Write(ctx context.Context, fsys afero.Fs, root string, w io.Writer, opts Options) error {
	zw := zip.NewWriter(w)
	used := map[string]int{}

	method := zip.Deflate
	if opts.Store {
		method = zip.Store
	}

	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		if info.IsDir() {
			if opts.Flatten {
				return nil
			}
			hdr := &zip.FileHeader{
				Name:     name + "/",
				Method:   zip.Store,
				Modified: info.ModTime(),
			}
			hdr.SetMode(info.Mode())
			_, err := zw.CreateHeader(hdr)
			return err
		}

		// Симлинки и прочие специальные файлы в архив не попадают.
		if !info.Mode().IsRegular() {
			return nil
		}

		if opts.Flatten {
			name = uniqueName(used, path.Base(name))
		}

		return addFile(zw, fsys, p, name, info, method)
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}

	return zw.Close()
}

func addFile(zw *zip.Writer, fsys afero.Fs, p, name string, info os.FileInfo, method uint16) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = method

	entry, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}

	f, err := fsys.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	return nil
}

// uniqueName разруливает совпадения имён в плоском архиве: a.jpg, a (1).jpg, ...
func uniqueName(used map[string]int, base string) string {
	n := used[base]
	used[base] = n + 1
	if n == 0 {
		return base
	}
	ext := path.Ext(base)
	candidate := fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(base, ext), n, ext)
	if _, taken := used[candidate]; taken {
		return uniqueName(used, candidate)
	}
	used[candidate] = 1
	return candidate
}
