package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pacfront/internal/theme"
)

func sampleList() checkList {
	l := newCheckList(column{"Package", 0}, column{"Version", 12})
	l.SetSize(60, 10)
	l.SetRows(
		[]string{"pacman/bash", "pacman/htop", "yay/yay"},
		[][]string{{"bash", "5.2.026-2"}, {"htop", "3.3.0-1"}, {"yay", "12.3.5-1"}},
	)
	return l
}

func TestCheckListToggle(t *testing.T) {
	l := sampleList()

	l.Toggle()
	l.Move(2)
	l.Toggle()
	assert.Equal(t, []int{0, 2}, l.Checked())

	l.Toggle()
	assert.Equal(t, []int{0}, l.Checked())
}

func TestCheckListToggleAll(t *testing.T) {
	l := sampleList()

	l.ToggleAll()
	assert.Equal(t, 3, l.CheckedCount())
	l.ToggleAll()
	assert.Zero(t, l.CheckedCount())

	l.SetVisible([]int{1})
	l.ToggleAll()
	assert.Equal(t, []int{1}, l.Checked())
}

func TestCheckListHiddenChecksAreIgnored(t *testing.T) {
	l := sampleList()
	l.ToggleAll()

	l.SetVisible([]int{0, 2})
	assert.Equal(t, []int{0, 2}, l.Checked())

	l.SetVisible(nil)
	assert.Empty(t, l.Checked())

	l.SetVisible([]int{0, 1, 2})
	assert.Equal(t, 3, l.CheckedCount(), "checks survive filtering")
}

func TestCheckListSetRowsKeepsChecks(t *testing.T) {
	l := sampleList()
	l.ToggleAll()

	l.SetRows(
		[]string{"pacman/bash", "pacman/git"},
		[][]string{{"bash", "5.2.026-2"}, {"git", "2.45.2-1"}},
	)
	assert.Equal(t, []int{0}, l.Checked())
}

func TestCheckListCursorClamp(t *testing.T) {
	l := sampleList()

	l.Move(-5)
	idx, ok := l.Current()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)

	l.Bottom()
	idx, _ = l.Current()
	assert.Equal(t, 2, idx)

	l.SetVisible([]int{0})
	idx, _ = l.Current()
	assert.Equal(t, 0, idx)

	l.SetVisible(nil)
	_, ok = l.Current()
	assert.False(t, ok)
}

func TestCheckListView(t *testing.T) {
	p, err := theme.Builtin(theme.Dark)
	require.NoError(t, err)
	st := theme.NewStyles(p)
	l := sampleList()
	l.Toggle()

	out := l.View(st, true, "nothing here")
	assert.Contains(t, out, "Package")
	assert.Contains(t, out, "htop")
	assert.Contains(t, out, "[x]")

	empty := newCheckList(column{"Package", 0})
	empty.SetSize(40, 5)
	assert.Contains(t, empty.View(st, false, "nothing here"), "nothing here")
}
