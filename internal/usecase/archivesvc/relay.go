package archivesvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/photo_archive/internal/models"
)

// chunkWriter принимает от писателя прочитанные чанки, по одному, в порядке чтения.
type chunkWriter interface {
	WriteChunk(p []byte) error
}

type relayOptions struct {
	chunkSize int
	depth     int
	delay     time.Duration
	// abort вызывается, если писатель не смог отдать чанк: читатель может висеть
	// на пайпе, и разбудить его можно только убив архиватор.
	abort func()
}

type chunk struct {
	buf []byte
	n   int
}

// sinkError помечает ошибки записи клиенту: клиент ушёл, это отмена, а не сбой архиватора.
type sinkError struct {
	err error
}

func (e *sinkError) Error() string { return "write to client: " + e.err.Error() }
func (e *sinkError) Unwrap() error { return e.err }

func isSinkError(err error) bool {
	var se *sinkError
	return errors.As(err, &se)
}

// relay перекачивает src в dst двумя горутинами: читатель заполняет буферы из
// кольца фиксированного размера, писатель отдаёт их клиенту в том же порядке.
// Читатель не может обогнать писателя больше чем на depth чанков.
func relay(ctx context.Context, src io.Reader, dst chunkWriter, opts relayOptions) (models.StreamStats, error) {
	var stats models.StreamStats

	free := make(chan []byte, opts.depth)
	for i := 0; i < opts.depth; i++ {
		free <- make([]byte, opts.chunkSize)
	}
	filled := make(chan chunk, opts.depth)

	eg, egCtx := errgroup.WithContext(ctx)

	// Читатель: пустой буфер -> Read из stdout архиватора -> очередь писателю.
	eg.Go(func() error {
		defer close(filled)
		for {
			var buf []byte
			select {
			case buf = <-free:
			case <-egCtx.Done():
				return egCtx.Err()
			}

			n, err := src.Read(buf)
			if n > 0 {
				select {
				case filled <- chunk{buf: buf, n: n}:
				case <-egCtx.Done():
					return egCtx.Err()
				}
			} else {
				free <- buf
			}

			if err == nil {
				continue
			}
			// EOF после убийства архиватора означает отмену, а не конец архива.
			if ctxErr := egCtx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read archiver output: %w", err)
		}
	})

	// Писатель: строго по порядку отдаёт чанки клиенту.
	eg.Go(func() error {
		for {
			var (
				c  chunk
				ok bool
			)
			select {
			case c, ok = <-filled:
				if !ok {
					return nil
				}
			case <-egCtx.Done():
				return egCtx.Err()
			}

			if err := dst.WriteChunk(c.buf[:c.n]); err != nil {
				if opts.abort != nil {
					opts.abort()
				}
				return &sinkError{err: err}
			}
			stats.Chunks++
			stats.Bytes += int64(c.n)
			free <- c.buf

			if opts.delay > 0 {
				if err := sleep(egCtx, opts.delay); err != nil {
					return err
				}
			}
		}
	})

	err := eg.Wait()
	return stats, err
}

// sleep делает прерываемую паузу между чанками.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
