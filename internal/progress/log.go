package progress

import (
	"log"

	"github.com/thadeu/soxcorpus/corpus"
)

// Log writes one line per file:
//
//	Processing file speech/a.flac (#3/10, 20%)
type Log struct {
	logger *log.Logger
}

// NewLog returns a Log writing to l.
func NewLog(l *log.Logger) *Log {
	return &Log{logger: l}
}

func (o *Log) OnStart(total int) {
	o.logger.Printf("Found %d files", total)
}

func (o *Log) OnFile(idx, total int, e corpus.Entry) {
	o.logger.Printf("Processing file %s (#%d/%d, %d%%)", e.RelPath, idx, total, corpus.Percent(idx, total))
}

func (o *Log) OnFileDone(int, int, corpus.Entry, error) {}

func (o *Log) OnFinish(r corpus.Report) {
	if r.Total == 0 {
		return
	}
	o.logger.Printf("Done: %d degraded, %d copied, %d failed", r.Audio, r.Copied, len(r.Failed))
}
