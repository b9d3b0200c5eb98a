package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quantmind-br/pacfront/internal/catalog"
	"github.com/quantmind-br/pacfront/internal/plan"
	"github.com/quantmind-br/pacfront/internal/syspkg"
)

// streamed wraps a message produced by a background query together with
// the command that waits for the next one
type streamed struct {
	msg  tea.Msg
	next tea.Cmd
}

// stream runs fn in a goroutine and feeds every emitted message back into
// Update, one at a time, until fn returns
func stream(fn func(emit func(tea.Msg))) tea.Cmd {
	ch := make(chan tea.Msg, 8)
	go func() {
		defer close(ch)
		fn(func(msg tea.Msg) { ch <- msg })
	}()
	return listen(ch)
}

func listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return streamed{msg: msg, next: listen(ch)}
	}
}

type searchBatchMsg struct {
	gen   int
	batch catalog.Batch[syspkg.Package]
}

type searchDoneMsg struct {
	gen    int
	result *catalog.Result[syspkg.Package]
	err    error
}

type installedBatchMsg struct {
	gen   int
	batch catalog.Batch[syspkg.Package]
}

type installedDoneMsg struct {
	gen    int
	result *catalog.Result[syspkg.Package]
	err    error
}

type updatesBatchMsg struct {
	gen   int
	batch catalog.Batch[syspkg.Update]
}

type updatesDoneMsg struct {
	gen    int
	result *catalog.Result[syspkg.Update]
	err    error
}

type detailsMsg struct {
	key     string
	details *syspkg.Details
	err     error
}

// planReadyMsg carries a plan waiting for confirmation, or why it could
// not be built
type planReadyMsg struct {
	tab   tab
	title string
	plan  *plan.Plan
	err   error
}

type detailsSettledMsg struct {
	key string
}

type execDoneMsg struct {
	plan      *plan.Plan
	historyID string
	err       error
}

type launchedMsg struct {
	plan      *plan.Plan
	historyID string
	terminal  string
	err       error
}

type dbChangedMsg struct{}

type dbSettledMsg struct {
	seq int
}

type watchErrMsg struct {
	err error
}
