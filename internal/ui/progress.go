package ui

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner wraps an indeterminate progressbar/v3 bar shown while a query runs
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner creates a spinner writing to w. A nil w disables output.
func NewSpinner(w io.Writer, description string) *Spinner {
	if w == nil {
		w = io.Discard
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(10),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)

	return &Spinner{bar: bar}
}

// Tick advances the spinner by one item
func (s *Spinner) Tick() {
	_ = s.bar.Add(1)
}

// Describe changes the description
func (s *Spinner) Describe(description string) {
	s.bar.Describe(description)
}

// Stop finishes and clears the spinner
func (s *Spinner) Stop() error {
	if err := s.bar.Finish(); err != nil {
		return err
	}
	return s.bar.Clear()
}

// IsFinished reports whether Stop was called
func (s *Spinner) IsFinished() bool {
	return s.bar.IsFinished()
}
