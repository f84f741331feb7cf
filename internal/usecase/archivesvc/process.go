package archivesvc

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/sir_venger/photo_archive/internal/models"
)

const (
	// waitDelay ограничивает ожидание закрытия пайпов после завершения архиватора.
	waitDelay = 5 * time.Second
	// stderrLimit: сколько последних байт stderr архиватора сохраняем для логов.
	stderrLimit = 4 << 10

	dirToken = "{dir}"
)

// process описывает внешний архиватор одного запроса. Принадлежит ровно одному запросу
// и обязан быть дождан (wait) ровно один раз на любом пути выполнения.
type process struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer
	cancel context.CancelFunc
	pid    int

	once    sync.Once
	waitErr error
}

// startProcess запускает архиватор в каталоге dir. Отмена ctx или вызов kill
// убивает всю группу процессов сигналом SIGKILL.
func startProcess(ctx context.Context, argv []string, dir string) (*process, error) {
	procCtx, cancel := context.WithCancel(ctx)

	args := make([]string, len(argv)-1)
	for i, a := range argv[1:] {
		args[i] = strings.ReplaceAll(a, dirToken, dir)
	}

	cmd := exec.CommandContext(procCtx, argv[0], args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	configureKill(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: stdout pipe: %v", models.ErrArchiverFailed, err)
	}
	stderr := &tailBuffer{limit: stderrLimit}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: start %s: %v", models.ErrArchiverFailed, argv[0], err)
	}

	return &process{
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		cancel: cancel,
		pid:    cmd.Process.Pid,
	}, nil
}

// kill немедленно убивает архиватор. Частичный архив бесполезен, поэтому без SIGTERM.
func (p *process) kill() {
	p.cancel()
}

// wait дожидается завершения и забирает код возврата, чтобы не оставить зомби.
// Повторные вызовы возвращают тот же результат.
func (p *process) wait() error {
	p.once.Do(func() {
		p.waitErr = p.cmd.Wait()
		p.cancel()
	})
	return p.waitErr
}

func (p *process) exitCode() int {
	if p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}

// tailBuffer хранит только последние limit байт.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(string(b.buf))
}
