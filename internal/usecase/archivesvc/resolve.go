package archivesvc

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sir_venger/photo_archive/internal/models"
)

// resolve превращает идентификатор архива в абсолютный путь каталога внутри корня.
// Идентификатор должен быть одним сегментом пути; всё, что ведёт за пределы корня, считается NotFound.
// Корень разворачивается на каждом запросе: каталог или симлинк на него может появиться
// уже после старта (смонтируют том).
func (s *Streamer) resolve(archiveHash string) (string, error) {
	if !validHash(archiveHash) {
		return "", fmt.Errorf("%w: invalid archive hash %q", models.ErrNotFound, archiveHash)
	}

	// BasePathFs отсекает выход за корень через "..".
	realPath, err := s.root.RealPath(archiveHash)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrNotFound, archiveHash, err)
	}

	info, err := s.root.Stat(archiveHash)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrNotFound, archiveHash, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", models.ErrNotFound, archiveHash)
	}

	// Симлинк внутри корня не должен уводить наружу.
	resolved, err := filepath.EvalSymlinks(realPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", models.ErrNotFound, archiveHash, err)
	}
	rootReal, err := filepath.EvalSymlinks(s.Root)
	if err != nil {
		return "", fmt.Errorf("%w: photos dir: %v", models.ErrNotFound, err)
	}
	if !within(rootReal, resolved) {
		return "", fmt.Errorf("%w: %s points outside photos dir", models.ErrNotFound, archiveHash)
	}

	return resolved, nil
}

func validHash(h string) bool {
	if h == "" || h == "." || h == ".." {
		return false
	}
	return !strings.ContainsAny(h, "/\\\x00")
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
