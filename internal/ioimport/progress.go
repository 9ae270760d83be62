package ioimport

import (
	"github.com/cheggaaa/pb/v3"
)

// progress reports inserted records. The zero value is silent.
type progress struct {
	bar *pb.ProgressBar
}

func newProgress(show bool, table string, total int) *progress {
	if !show || total == 0 {
		return &progress{}
	}

	bar := pb.Full.Start(total)
	bar.Set("prefix", "Importing "+table+": ")
	bar.Set(pb.CleanOnFinish, true)
	return &progress{bar: bar}
}

func (p *progress) increment() {
	if p.bar != nil {
		p.bar.Increment()
	}
}

func (p *progress) finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
