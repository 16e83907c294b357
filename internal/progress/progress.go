// Package progress reports corpus.Transformer runs on a terminal, either as
// one log line per file or as a live progress bar.
package progress

import (
	"io"
	"log"
	"os"

	"github.com/thadeu/soxcorpus/corpus"
)

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return false
	}

	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// New picks a Bar when w is a terminal and per-file log lines otherwise.
// Verbose forces log lines so that sox diagnostics are not drawn over.
func New(w io.Writer, verbose bool) corpus.Observer {
	if !verbose && IsTTY(w) {
		return NewBar(w)
	}
	return NewLog(log.New(w, log.Prefix(), log.Flags()))
}
