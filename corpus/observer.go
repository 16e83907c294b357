package corpus

// Observer receives progress from Transformer.Run. Events arrive in order from
// the goroutine calling Run.
type Observer interface {
	// OnStart is called once the tree has been scanned.
	OnStart(total int)
	// OnFile is called before entry idx (1-based) of total is processed.
	OnFile(idx, total int, e Entry)
	// OnFileDone is called after the entry, with its error if any.
	OnFileDone(idx, total int, e Entry, err error)
	// OnFinish is called when Run returns, successful or not.
	OnFinish(r Report)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnStart(int)                       {}
func (NopObserver) OnFile(int, int, Entry)            {}
func (NopObserver) OnFileDone(int, int, Entry, error) {}
func (NopObserver) OnFinish(Report)                   {}

// Percent is the share of total done before entry idx starts.
func Percent(idx, total int) int {
	if total <= 0 {
		return 100
	}
	return (idx - 1) * 100 / total
}

// Report summarises one run.
type Report struct {
	Total  int // files found under the input root
	Audio  int // files degraded successfully
	Copied int // files copied verbatim
	Failed []*FileError
}

// Done is the number of files that reached the output tree.
func (r Report) Done() int { return r.Audio + r.Copied }
