package archivesvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sir_venger/photo_archive/pkg/archiveproto"
)

// ArchiveFilename задаёт имя файла, под которым клиент сохраняет архив.
const ArchiveFilename = archiveproto.ArchiveFilename

type (
	// Sink принимает архив. Begin отправляет заголовки до первого байта тела,
	// Flush проталкивает записанный чанк клиенту.
	Sink interface {
		Begin(filename string) error
		Write(p []byte) (int, error)
		Flush() error
	}

	// Service отдаёт архив каталога в sink по мере его создания.
	Service interface {
		Stream(ctx context.Context, archiveHash string, sink Sink) error
	}
)

type Deps struct {
	// Root задаёт базовый каталог, внутри которого лежат все архивируемые папки.
	Root string
	// Command задаёт argv архиватора; процесс запускается с рабочим каталогом,
	// равным запрошенной папке, токен {dir} в аргументах заменяется на её путь.
	Command    []string
	ChunkSize  int
	ChunkDelay time.Duration
	QueueDepth int
	Logger     *zap.Logger
}

type Streamer struct {
	Deps

	root *afero.BasePathFs
}

var _ Service = (*Streamer)(nil)

// New проверяет зависимости и конструирует стример.
func New(deps Deps) (*Streamer, error) {
	if deps.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be > 0, got %d", deps.ChunkSize)
	}
	if deps.ChunkDelay < 0 {
		return nil, fmt.Errorf("chunk delay must be >= 0, got %s", deps.ChunkDelay)
	}
	if len(deps.Command) == 0 {
		return nil, fmt.Errorf("archiver command is empty")
	}
	if deps.QueueDepth <= 0 {
		deps.QueueDepth = 1
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	root, err := filepath.Abs(deps.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve photos dir: %w", err)
	}
	deps.Root = root

	return &Streamer{
		Deps: deps,
		root: afero.NewBasePathFs(afero.NewOsFs(), root).(*afero.BasePathFs),
	}, nil
}

// SelfCommand возвращает argv встроенного архиватора: текущий бинарник с подкомандой pack.
func SelfCommand(flatten bool) ([]string, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}

	cmd := []string{exe, "pack"}
	if flatten {
		cmd = append(cmd, "--flat")
	}
	return append(cmd, "."), nil
}

// ResolveCommand возвращает настроенный argv архиватора либо встроенный, если ничего не задано.
func ResolveCommand(configured []string, flatten bool) ([]string, error) {
	if len(configured) > 0 {
		return configured, nil
	}
	return SelfCommand(flatten)
}
