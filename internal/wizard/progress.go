package wizard

import "math"

// Progress reports a bulk generation run. Items that already existed count
// as completed; failed items are listed in Errors and do not stop the run.
type Progress struct {
	Completed int         `json:"completed"`
	Total     int         `json:"total"`
	Percent   int         `json:"percent"`
	Errors    []ItemError `json:"errors,omitempty"`
}

// ItemError records one failed item of a bulk run
type ItemError struct {
	Item  string `json:"item"`
	Error string `json:"error"`
}

// ProgressFunc receives a snapshot after every item of a bulk run
type ProgressFunc func(Progress)

func newProgress(total int) *Progress {
	return &Progress{Total: total}
}

func (p *Progress) succeed() {
	p.Completed++
	p.update()
}

func (p *Progress) fail(item string, err error) {
	p.Errors = append(p.Errors, ItemError{Item: item, Error: err.Error()})
	p.update()
}

func (p *Progress) update() {
	if p.Total == 0 {
		p.Percent = 100
		return
	}
	p.Percent = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
}

func (p *Progress) report(fn ProgressFunc) {
	if fn == nil {
		return
	}
	snapshot := *p
	snapshot.Errors = append([]ItemError(nil), p.Errors...)
	fn(snapshot)
}
