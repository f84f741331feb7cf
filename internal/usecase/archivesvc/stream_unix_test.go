//go:build unix

package archivesvc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/sir_venger/photo_archive/internal/models"
	"github.com/sir_venger/photo_archive/internal/testsupport"
)

const cancelledMessage = "archive stream cancelled, archiver killed and reaped"

// requireReaped проверяет, что процесса больше нет: ни живого, ни зомби.
func requireReaped(t *testing.T, pid int) {
	t.Helper()
	require.Positive(t, pid)
	assert.ErrorIs(t, unix.Kill(pid, 0), unix.ESRCH, "pid %d still exists", pid)
}

// bigAlbum заведомо больше буфера пайпа: архиватор не успеет завершиться сам.
func bigAlbum(t *testing.T, root string) {
	testsupport.WritePhotos(t, root, "big", map[string][]byte{
		"a.jpg": testsupport.RandomBytes(t, 1<<20),
		"b.jpg": testsupport.RandomBytes(t, 1<<20),
	})
}

func TestStream_ClientGoneKillsArchiver(t *testing.T) {
	root := t.TempDir()
	bigAlbum(t, root)

	s, logs := newStreamer(t, root, func(d *Deps) {
		d.ChunkSize = 1024
		d.ChunkDelay = 5 * time.Millisecond
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := &recordingSink{onWrite: func(writes int) {
		if writes == 4 {
			cancel()
		}
	}}

	start := time.Now()
	err := s.Stream(ctx, "big", sink)
	require.ErrorIs(t, err, models.ErrCancelled)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Less(t, len(sink.Bytes()), 2<<20)

	requireReaped(t, pidFrom(t, logs, cancelledMessage))
}

func TestStream_WriteFailureKillsArchiver(t *testing.T) {
	root := t.TempDir()
	bigAlbum(t, root)

	s, logs := newStreamer(t, root, func(d *Deps) { d.ChunkSize = 4096 })
	sink := &recordingSink{failWriteAt: 3}

	err := s.Stream(context.Background(), "big", sink)
	require.ErrorIs(t, err, models.ErrCancelled)
	assert.Equal(t, 1, sink.begun)

	requireReaped(t, pidFrom(t, logs, cancelledMessage))
}

func TestStream_CancelledBeforeStart(t *testing.T) {
	root := t.TempDir()
	testsupport.WritePhotos(t, root, "x", map[string][]byte{"a.jpg": []byte("a")})

	s, _ := newStreamer(t, root, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Stream(ctx, "x", &recordingSink{})
	require.ErrorIs(t, err, models.ErrCancelled)
}
