// Package filter narrows package and update lists by text and source.
package filter

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/quantmind-br/pacfront/internal/syspkg"
)

// Query combines a text filter with a source filter. The zero value
// matches everything.
type Query struct {
	Text   string
	Source syspkg.Source
	Fuzzy  bool
}

// Empty reports whether the query matches everything
func (q Query) Empty() bool {
	return strings.TrimSpace(q.Text) == "" && q.Source == ""
}

func (q Query) match(source syspkg.Source, name string, haystack ...string) bool {
	if q.Source != "" && source != q.Source {
		return false
	}

	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text == "" {
		return true
	}

	if q.Fuzzy {
		return fuzzy.MatchFold(text, name)
	}

	for _, h := range haystack {
		if strings.Contains(strings.ToLower(h), text) {
			return true
		}
	}
	return false
}

// MatchPackage matches name and version
func (q Query) MatchPackage(p syspkg.Package) bool {
	return q.match(p.Source, p.Name, p.Name, p.Version)
}

// MatchUpdate matches name, both versions and the source label
func (q Query) MatchUpdate(u syspkg.Update) bool {
	return q.match(u.Source, u.Name, u.Name, u.Current, u.New, u.Source.Label())
}

// Packages returns the packages the query matches, in order
func Packages(q Query, pkgs []syspkg.Package) []syspkg.Package {
	return apply(pkgs, q.MatchPackage)
}

// Updates returns the updates the query matches, in order
func Updates(q Query, updates []syspkg.Update) []syspkg.Update {
	return apply(updates, q.MatchUpdate)
}

// Indices returns the positions of matching items, for views that keep
// selection state against the unfiltered list.
func Indices[T any](items []T, match func(T) bool) []int {
	idx := make([]int, 0, len(items))
	for i, it := range items {
		if match(it) {
			idx = append(idx, i)
		}
	}
	return idx
}

func apply[T any](items []T, match func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}
