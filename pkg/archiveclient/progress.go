package archiveclient

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	progressBarWidth     = 32
	progressRenderPeriod = 120 * time.Millisecond
)

// progressBar рисует однострочный индикатор скачивания. Архив отдаётся chunked,
// поэтому размер обычно неизвестен: тогда вместо полосы выводятся байты и скорость.
type progressBar struct {
	mu sync.Mutex

	out      io.Writer
	prefix   string
	total    int64
	current  int64
	started  time.Time
	rendered time.Time
	width    int
	finished bool

	now func() time.Time
}

func newProgressBar(out io.Writer, prefix string, total int64) *progressBar {
	return &progressBar{
		out:     out,
		prefix:  prefix,
		total:   total,
		started: time.Now(),
		now:     time.Now,
	}
}

func (p *progressBar) AddBytes(n int64) {
	if p == nil || n <= 0 {
		return
	}

	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.current += n
	p.mu.Unlock()

	p.render(false, "")
}

func (p *progressBar) render(force bool, suffix string) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	now := p.now()
	if !force && now.Sub(p.rendered) < progressRenderPeriod {
		return
	}
	p.rendered = now
	p.writeLocked(p.lineLocked(now)+suffix, "")
}

// writeLocked перерисовывает строку поверх предыдущей, затирая хвост пробелами.
func (p *progressBar) writeLocked(line, end string) {
	pad := ""
	if p.width > len(line) {
		pad = strings.Repeat(" ", p.width-len(line))
	}
	p.width = len(line)
	fmt.Fprintf(p.out, "\r%s%s%s", line, pad, end)
}

func (p *progressBar) lineLocked(now time.Time) string {
	var b strings.Builder
	b.WriteString(p.prefix)
	b.WriteByte(' ')

	if p.total > 0 {
		ratio := min(float64(p.current)/float64(p.total), 1)
		filled := min(int(ratio*progressBarWidth+0.5), progressBarWidth)

		b.WriteByte('[')
		b.WriteString(strings.Repeat("=", filled))
		b.WriteString(strings.Repeat(" ", progressBarWidth-filled))
		fmt.Fprintf(&b, "] %3d%% %s/%s", int(ratio*100+0.5), humanBytes(p.current), humanBytes(p.total))
	} else {
		b.WriteString(humanBytes(p.current))
		b.WriteString(" transferred")
	}

	if elapsed := now.Sub(p.started); elapsed > 0 {
		fmt.Fprintf(&b, " (%s/s)", humanBytes(int64(float64(p.current)/elapsed.Seconds())))
	}
	return b.String()
}

func (p *progressBar) Finish() {
	p.complete(nil)
}

func (p *progressBar) Fail(err error) {
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	p.complete(err)
}

func (p *progressBar) complete(err error) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true

	suffix := " ✓"
	if err != nil {
		suffix = fmt.Sprintf(" ✗ %v", err)
	}
	p.writeLocked(p.lineLocked(p.now())+suffix, "\n")
}

// progressReadCloser двигает индикатор по мере чтения тела ответа.
type progressReadCloser struct {
	inner io.ReadCloser
	bar   *progressBar
	once  sync.Once
}

func newProgressReadCloser(inner io.ReadCloser, bar *progressBar) io.ReadCloser {
	if bar == nil || inner == nil {
		return inner
	}

	return &progressReadCloser{
		inner: inner,
		bar:   bar,
	}
}

func (p *progressReadCloser) Read(b []byte) (int, error) {
	n, err := p.inner.Read(b)
	p.bar.AddBytes(int64(n))
	if err != nil {
		p.finish(err)
	}
	return n, err
}

func (p *progressReadCloser) Close() error {
	err := p.inner.Close()
	p.finish(err)
	return err
}

func (p *progressReadCloser) finish(err error) {
	p.once.Do(func() {
		if err != nil && err != io.EOF {
			p.bar.Fail(err)
			return
		}
		p.bar.Finish()
	})
}

// byteUnits перечисляет префиксы двоичных единиц после байтов.
const byteUnits = "KMGTPE"

// humanBytes печатает размер в двоичных единицах: 1536 -> "1.5 KB".
func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return strconv.FormatInt(v, 10) + " B"
	}

	div, exp := int64(unit), 0
	for n := v / unit; n >= unit && exp < len(byteUnits)-1; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(v)/float64(div), byteUnits[exp])
}
