package archivesvc

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sir_venger/photo_archive/internal/models"
)

// Stream архивирует каталог archiveHash и отдаёт архив в sink по мере создания.
//
// Возвращает models.ErrNotFound, если каталога нет; models.ErrCancelled, если
// клиент ушёл или sink отказал в записи; models.ErrArchiverFailed при сбое
// архиватора. Архиватор дожидается (wait) до возврата на любом пути.
func (s *Streamer) Stream(ctx context.Context, archiveHash string, sink Sink) error {
	req := models.ArchiveRequest{
		ID:          uuid.NewString(),
		ArchiveHash: archiveHash,
	}
	log := s.Logger.With(zap.String("request_id", req.ID), zap.String("archive_hash", archiveHash))

	dir, err := s.resolve(archiveHash)
	if err != nil {
		log.Info("archive not found", zap.Error(err))
		return err
	}
	req.Dir = dir

	proc, err := startProcess(ctx, s.Command, req.Dir)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("client gone before archiver start", zap.Error(err))
			return fmt.Errorf("%w: %v", models.ErrCancelled, ctx.Err())
		}
		log.Error("failed to start archiver", zap.Strings("command", s.Command), zap.Error(err))
		return err
	}
	log = log.With(zap.Int("pid", proc.pid))
	log.Debug("archiver started", zap.Strings("command", s.Command), zap.String("dir", req.Dir))

	out := &committingSink{sink: sink}
	start := time.Now()

	stats, relayErr := relay(ctx, proc.stdout, out, relayOptions{
		chunkSize: s.ChunkSize,
		depth:     s.QueueDepth,
		delay:     s.ChunkDelay,
		abort:     proc.kill,
	})
	if relayErr == nil && ctx.Err() != nil {
		relayErr = ctx.Err()
	}
	if relayErr != nil {
		proc.kill()
	}
	waitErr := proc.wait()

	fields := []zap.Field{
		zap.Int64("bytes", stats.Bytes),
		zap.Int("chunks", stats.Chunks),
		zap.Int("exit_code", proc.exitCode()),
		zap.Duration("duration", time.Since(start)),
	}

	switch {
	case relayErr != nil && (ctx.Err() != nil || isSinkError(relayErr)):
		log.Info("archive stream cancelled, archiver killed and reaped", append(fields, zap.Error(relayErr))...)
		return fmt.Errorf("%w: %v", models.ErrCancelled, relayErr)

	case relayErr != nil:
		log.Error("archive relay failed", append(fields, zap.Error(relayErr))...)
		return fmt.Errorf("%w: %v", models.ErrArchiverFailed, relayErr)

	case waitErr != nil && !out.committed:
		log.Error("archiver failed before first byte",
			append(fields, zap.String("stderr", proc.stderr.String()), zap.Error(waitErr))...)
		return fmt.Errorf("%w: %v", models.ErrArchiverFailed, waitErr)

	case waitErr != nil:
		// Заголовки и тело уже ушли, отменить ответ задним числом нельзя.
		log.Warn("archive sent, but archiver exited with error",
			append(fields, zap.String("stderr", proc.stderr.String()), zap.Error(waitErr))...)
		return nil
	}

	if !out.committed {
		if err := out.begin(); err != nil {
			log.Info("client gone before headers", zap.Error(err))
			return fmt.Errorf("%w: %v", models.ErrCancelled, err)
		}
	}

	log.Info("archive sent", fields...)
	return nil
}

// committingSink отправляет заголовки перед первым чанком. Пока ничего не
// отправлено, сбой архиватора ещё можно вернуть клиенту как ошибку запроса.
type committingSink struct {
	sink      Sink
	committed bool
}

func (c *committingSink) begin() error {
	c.committed = true
	return c.sink.Begin(ArchiveFilename)
}

func (c *committingSink) WriteChunk(p []byte) error {
	if !c.committed {
		if err := c.begin(); err != nil {
			return err
		}
	}
	if _, err := c.sink.Write(p); err != nil {
		return err
	}
	return c.sink.Flush()
}
