package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

type Bar struct {
	*progressbar.ProgressBar
}

// NewBar draws to w, or stderr when w is nil.
func NewBar(max int64, description string, w io.Writer) *Bar {
	if w == nil {
		w = os.Stderr
	}

	bar := progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)

	return &Bar{ProgressBar: bar}
}

func (b *Bar) Increment() {
	if b == nil || b.ProgressBar == nil {
		return
	}
	_ = b.Add(1)
}

func (b *Bar) Finish() {
	if b == nil || b.ProgressBar == nil {
		return
	}
	_ = b.ProgressBar.Finish()
}
