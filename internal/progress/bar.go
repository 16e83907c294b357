package progress

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/thadeu/soxcorpus/corpus"
)

// Bar draws a single mpb progress bar over the whole run, with the file in
// flight shown after the ETA.
type Bar struct {
	w       io.Writer
	p       *mpb.Progress
	bar     *mpb.Bar
	current atomic.Value // string, read by the render goroutine
}

// NewBar returns a Bar rendering to w.
func NewBar(w io.Writer) *Bar {
	b := &Bar{w: w}
	b.current.Store("")
	return b
}

func (o *Bar) OnStart(total int) {
	if total == 0 {
		return
	}
	o.p = mpb.New(mpb.WithOutput(o.w), mpb.WithWidth(64))
	o.bar = o.p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Degrading: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.AverageETA(decor.ET_STYLE_GO),
			decor.Any(func(decor.Statistics) string { return " " + o.current.Load().(string) }),
		),
	)
}

func (o *Bar) OnFile(_, _ int, e corpus.Entry) {
	o.current.Store(e.RelPath)
}

func (o *Bar) OnFileDone(int, int, corpus.Entry, error) {
	if o.bar != nil {
		o.bar.Increment()
	}
}

func (o *Bar) OnFinish(r corpus.Report) {
	if o.p != nil {
		if !o.bar.Completed() {
			// run stopped early; keep the partial bar on screen
			o.bar.Abort(false)
		}
		o.p.Wait()
	}
	if r.Total > 0 {
		fmt.Fprintf(o.w, "Done: %d degraded, %d copied, %d failed\n", r.Audio, r.Copied, len(r.Failed))
	}
}
