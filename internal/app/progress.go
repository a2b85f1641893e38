package app

import (
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/hackebrot/go-unpark-bench/internal/driver"
)

// progressBar shows resolved operations. It is updated between steps, outside the measured poll time.
type progressBar struct {
	p     *mpb.Progress
	bar   *mpb.Bar
	total int
}

func newProgressBar(w io.Writer, cfg driver.Config) *progressBar {
	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(64), mpb.WithRefreshRate(100*time.Millisecond))
	barStyle := mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟")

	name := string(cfg.Strategy)
	bar := p.New(int64(cfg.Count),
		barStyle,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WC{W: 4}), "done"),
		),
	)

	return &progressBar{p: p, bar: bar, total: cfg.Count}
}

// Update implements driver.Progress.
func (b *progressBar) Update(remaining int) {
	b.bar.SetCurrent(int64(b.total - remaining))
}

// Finish completes or aborts the bar and waits for the final render.
func (b *progressBar) Finish(ok bool) {
	if ok {
		b.bar.SetTotal(-1, true)
	} else {
		b.bar.Abort(false)
	}
	b.p.Wait()
}

var _ driver.Progress = (*progressBar)(nil)
