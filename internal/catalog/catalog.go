// Package catalog runs pacman and yay queries side by side and merges their
// results into the lists shown by the window and the CLI.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/quantmind-br/pacfront/internal/security"
	"github.com/quantmind-br/pacfront/internal/syspkg"
)

const (
	DefaultSearchLimit    = 500
	DefaultInstalledLimit = 5000
)

// RepoQuerier is the pacman side of the catalog
type RepoQuerier interface {
	syspkg.Provider
	InstalledNames(ctx context.Context) ([]string, error)
	Explicit(ctx context.Context, kind syspkg.ExplicitKind, onItem func(syspkg.Package)) ([]syspkg.Package, error)
}

// AURQuerier is the yay side of the catalog
type AURQuerier interface {
	syspkg.Provider
	Usable(ctx context.Context) bool
}

// Options tunes result limits and filtering
type Options struct {
	SearchLimit    int
	InstalledLimit int
	HideInstalled  bool
}

// DefaultOptions returns the limits used when nothing is configured
func DefaultOptions() Options {
	return Options{
		SearchLimit:    DefaultSearchLimit,
		InstalledLimit: DefaultInstalledLimit,
		HideInstalled:  true,
	}
}

// Kind identifies a query family. Starting a query cancels the previous
// query of the same kind.
type Kind int

const (
	KindSearch Kind = iota
	KindInstalled
	KindUpdates
	KindDetails
)

// SourceError records the failure of one side of a query
type SourceError struct {
	Source syspkg.Source
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source.Label(), e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Batch is what one source produced, delivered as soon as it finishes
type Batch[T any] struct {
	Source syspkg.Source
	Items  []T
	Err    error
}

// Result is the merged outcome of a query. Items from pacman come first.
type Result[T any] struct {
	Items     []T
	Errors    []error
	Truncated bool
}

// Err joins the per-source errors, or returns nil when there are none
func (r *Result[T]) Err() error {
	return errors.Join(r.Errors...)
}

// Failed reports whether every source failed
func (r *Result[T]) Failed() bool {
	return len(r.Items) == 0 && len(r.Errors) > 0
}

type detailsKey struct {
	source syspkg.Source
	name   string
}

// Catalog orchestrates queries against pacman and yay
type Catalog struct {
	repo RepoQuerier
	aur  AURQuerier
	opts Options
	log  *zerolog.Logger

	mu        sync.Mutex
	installed map[string]struct{}
	details   map[detailsKey]*syspkg.Details
	cancels   map[Kind]context.CancelFunc
	yayUsable *bool
}

// New creates a Catalog over the given providers
func New(repo RepoQuerier, aur AURQuerier, opts Options, log *zerolog.Logger) *Catalog {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.InstalledLimit <= 0 {
		opts.InstalledLimit = DefaultInstalledLimit
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Catalog{
		repo:    repo,
		aur:     aur,
		opts:    opts,
		log:     log,
		details: make(map[detailsKey]*syspkg.Details),
		cancels: make(map[Kind]context.CancelFunc),
	}
}

// Options returns the active options
func (c *Catalog) Options() Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// SetOptions replaces limits and filtering for subsequent queries
func (c *Catalog) SetOptions(opts Options) {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.InstalledLimit <= 0 {
		opts.InstalledLimit = DefaultInstalledLimit
	}
	c.mu.Lock()
	c.opts = opts
	c.mu.Unlock()
}

// begin derives a context for a new query of the given kind and cancels
// the one it supersedes.
func (c *Catalog) begin(ctx context.Context, kind Kind) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if prev, ok := c.cancels[kind]; ok {
		prev()
	}
	c.cancels[kind] = cancel
	c.mu.Unlock()

	return ctx, cancel
}

// Cancel stops the running query of the given kind, if any
func (c *Catalog) Cancel(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cancel, ok := c.cancels[kind]; ok {
		cancel()
		delete(c.cancels, kind)
	}
}

// CancelAll stops every running query
func (c *Catalog) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for kind, cancel := range c.cancels {
		cancel()
		delete(c.cancels, kind)
	}
}

// YayUsable probes yay once and remembers the answer
func (c *Catalog) YayUsable(ctx context.Context) bool {
	c.mu.Lock()
	if c.yayUsable != nil {
		usable := *c.yayUsable
		c.mu.Unlock()
		return usable
	}
	c.mu.Unlock()

	usable := c.aur != nil && c.aur.Usable(ctx)
	if ctx.Err() != nil {
		return usable
	}

	c.mu.Lock()
	c.yayUsable = &usable
	c.mu.Unlock()

	if !usable {
		c.log.Warn().Msg("yay is not usable, AUR queries disabled")
	}
	return usable
}

// InvalidateInstalled drops the cached installed-name set and the yay probe
func (c *Catalog) InvalidateInstalled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installed = nil
	c.yayUsable = nil
}

// InstalledNames returns the cached set of installed package names,
// loading it with pacman -Qq on first use.
func (c *Catalog) InstalledNames(ctx context.Context) (map[string]struct{}, error) {
	c.mu.Lock()
	if c.installed != nil {
		set := c.installed
		c.mu.Unlock()
		return set, nil
	}
	c.mu.Unlock()

	names, err := c.repo.InstalledNames(ctx)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}

	c.mu.Lock()
	c.installed = set
	c.mu.Unlock()

	c.log.Debug().Int("count", len(set)).Msg("installed names loaded")
	return set, nil
}

// Search queries the repositories and the AUR in parallel. Only hits whose
// name contains the term are kept and, unless disabled, installed packages
// are hidden. onBatch receives each source's filtered hits as it finishes.
func (c *Catalog) Search(ctx context.Context, term string, onBatch func(Batch[syspkg.Package])) (*Result[syspkg.Package], error) {
	term = strings.TrimSpace(term)
	if err := security.ValidateSearchTerm(term); err != nil {
		return nil, fmt.Errorf("%w: %v", syspkg.ErrInvalidTerm, err)
	}

	ctx, cancel := c.begin(ctx, KindSearch)
	defer cancel()

	opts := c.Options()

	var installed map[string]struct{}
	if opts.HideInstalled {
		set, err := c.InstalledNames(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn().Err(err).Msg("could not load installed names, showing all hits")
		}
		installed = set
	}

	needle := strings.ToLower(term)
	keep := func(pkgs []syspkg.Package) []syspkg.Package {
		out := pkgs[:0]
		for _, p := range pkgs {
			if !strings.Contains(strings.ToLower(p.Name), needle) {
				continue
			}
			if _, ok := installed[p.Name]; ok {
				continue
			}
			out = append(out, p)
		}
		return out
	}

	query := func(q syspkg.Provider) func(context.Context) ([]syspkg.Package, error) {
		return func(ctx context.Context) ([]syspkg.Package, error) {
			pkgs, err := q.Search(ctx, term, nil)
			return keep(pkgs), err
		}
	}

	c.log.Debug().Str("term", term).Msg("searching repos + AUR")
	repoBatch, aurBatch := runBoth(ctx, c, query(c.repo), query(c.aur), onBatch)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return merge(repoBatch, aurBatch, opts.SearchLimit), nil
}

// Installed lists explicitly installed packages: native ones as pacman
// packages and foreign ones as yay packages.
func (c *Catalog) Installed(ctx context.Context, onBatch func(Batch[syspkg.Package])) (*Result[syspkg.Package], error) {
	ctx, cancel := c.begin(ctx, KindInstalled)
	defer cancel()

	explicit := func(kind syspkg.ExplicitKind) func(context.Context) ([]syspkg.Package, error) {
		return func(ctx context.Context) ([]syspkg.Package, error) {
			return c.repo.Explicit(ctx, kind, nil)
		}
	}

	var native, foreign Batch[syspkg.Package]
	var wg conc.WaitGroup
	wg.Go(func() {
		native = collect(ctx, syspkg.SourceRepo, explicit(syspkg.ExplicitNative))
		deliver(onBatch, native)
	})
	wg.Go(func() {
		foreign = collect(ctx, syspkg.SourceAUR, explicit(syspkg.ExplicitForeign))
		deliver(onBatch, foreign)
	})
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return merge(native, foreign, c.Options().InstalledLimit), nil
}

// Updates lists pending upgrades from pacman -Qu and yay -Qua,
// deduplicated by source and name.
func (c *Catalog) Updates(ctx context.Context, onBatch func(Batch[syspkg.Update])) (*Result[syspkg.Update], error) {
	ctx, cancel := c.begin(ctx, KindUpdates)
	defer cancel()

	query := func(q syspkg.Provider) func(context.Context) ([]syspkg.Update, error) {
		return func(ctx context.Context) ([]syspkg.Update, error) {
			return q.Updates(ctx, nil)
		}
	}

	repoBatch, aurBatch := runBoth(ctx, c, query(c.repo), query(c.aur), onBatch)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := merge(repoBatch, aurBatch, 0)
	res.Items = DedupeUpdates(res.Items)
	return res, nil
}

// DedupeUpdates drops repeated (source, name) pairs, keeping the first
func DedupeUpdates(updates []syspkg.Update) []syspkg.Update {
	seen := make(map[detailsKey]struct{}, len(updates))
	out := make([]syspkg.Update, 0, len(updates))
	for _, u := range updates {
		k := detailsKey{u.Source, u.Name}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Details fetches -Si output for a package, from yay for AUR packages and
// from pacman otherwise. Results are cached for the session.
func (c *Catalog) Details(ctx context.Context, source syspkg.Source, name string) (*syspkg.Details, error) {
	key := detailsKey{source, name}

	c.mu.Lock()
	if d, ok := c.details[key]; ok {
		c.mu.Unlock()
		return d, nil
	}
	c.mu.Unlock()

	ctx, cancel := c.begin(ctx, KindDetails)
	defer cancel()

	var q syspkg.Provider = c.repo
	if source == syspkg.SourceAUR {
		if !c.YayUsable(ctx) {
			return nil, syspkg.ErrYayUnavailable
		}
		q = c.aur
	}

	d, err := q.Details(ctx, name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.details[key] = d
	c.mu.Unlock()
	return d, nil
}

// runBoth runs the pacman and yay halves of a query concurrently. The yay
// half is skipped when yay cannot run.
func runBoth[T any](ctx context.Context, c *Catalog, repoFn, aurFn func(context.Context) ([]T, error), onBatch func(Batch[T])) (Batch[T], Batch[T]) {
	var repoBatch, aurBatch Batch[T]
	var wg conc.WaitGroup

	wg.Go(func() {
		repoBatch = collect(ctx, syspkg.SourceRepo, repoFn)
		deliver(onBatch, repoBatch)
	})
	wg.Go(func() {
		if !c.YayUsable(ctx) {
			aurBatch = Batch[T]{Source: syspkg.SourceAUR, Err: syspkg.ErrYayUnavailable}
		} else {
			aurBatch = collect(ctx, syspkg.SourceAUR, aurFn)
		}
		deliver(onBatch, aurBatch)
	})
	wg.Wait()

	return repoBatch, aurBatch
}

func collect[T any](ctx context.Context, source syspkg.Source, fn func(context.Context) ([]T, error)) Batch[T] {
	items, err := fn(ctx)
	return Batch[T]{Source: source, Items: items, Err: err}
}

func deliver[T any](onBatch func(Batch[T]), b Batch[T]) {
	if onBatch != nil && !errors.Is(b.Err, context.Canceled) {
		onBatch(b)
	}
}

// merge concatenates pacman then yay items, capping at limit when positive
func merge[T any](repo, aur Batch[T], limit int) *Result[T] {
	res := &Result[T]{}
	for _, b := range []Batch[T]{repo, aur} {
		res.Items = append(res.Items, b.Items...)
		if b.Err != nil {
			res.Errors = append(res.Errors, &SourceError{Source: b.Source, Err: b.Err})
		}
	}
	if limit > 0 && len(res.Items) > limit {
		res.Items = res.Items[:limit]
		res.Truncated = true
	}
	return res
}
