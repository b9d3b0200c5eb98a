package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// settleDelay groups the burst of events one pacman transaction produces
const settleDelay = 750 * time.Millisecond

// dbWatcher reports changes to the local pacman database directory
type dbWatcher struct {
	w *fsnotify.Watcher
}

func newDBWatcher(dir string) (*dbWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &dbWatcher{w: w}, nil
}

// next waits for the next relevant event
func (d *dbWatcher) next() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-d.w.Events:
				if !ok {
					return nil
				}
				if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Write) {
					return dbChangedMsg{}
				}
			case err, ok := <-d.w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

func (d *dbWatcher) Close() error {
	return d.w.Close()
}

func settle(seq int) tea.Cmd {
	return tea.Tick(settleDelay, func(time.Time) tea.Msg {
		return dbSettledMsg{seq: seq}
	})
}
