package testsupport

import (
	"context"
	"fmt"
	"os"
	"slices"
	"testing"

	"github.com/spf13/afero"

	"github.com/sir_venger/photo_archive/internal/packer"
)

const archiverEnv = "PHOTOARCHIVE_TEST_ARCHIVER"

// Флаги, которые понимает тестовый архиватор.
const (
	FlagFlat = "--flat"
	FlagFail = "--fail"
)

// RunMain заменяет тело TestMain. Тестовый бинарник умеет притворяться внешним
// архиватором: если он запущен дочерним процессом, он пишет ZIP текущего каталога
// в stdout и завершается, не запуская тесты.
func RunMain(m *testing.M) {
	if os.Getenv(archiverEnv) == "1" {
		os.Exit(runArchiver(os.Args[1:]))
	}

	// Дочерние процессы наследуют окружение и попадают в ветку выше.
	if err := os.Setenv(archiverEnv, "1"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func runArchiver(args []string) int {
	if slices.Contains(args, FlagFail) {
		fmt.Fprintln(os.Stderr, "zip error: Nothing to do!")
		return 12
	}

	opts := packer.Options{Flatten: slices.Contains(args, FlagFlat)}
	if err := packer.Write(context.Background(), afero.NewOsFs(), ".", os.Stdout, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return 0
}

// ArchiverCommand возвращает argv для запуска тестового бинарника в роли архиватора.
func ArchiverCommand(args ...string) []string {
	return append([]string{os.Args[0]}, args...)
}
