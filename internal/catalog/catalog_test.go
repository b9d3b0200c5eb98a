package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pacfront/internal/syspkg"
)

type fakeProvider struct {
	source   syspkg.Source
	search   []syspkg.Package
	updates  []syspkg.Update
	details  map[string]*syspkg.Details
	err      error
	usable   bool
	names    []string
	native   []syspkg.Package
	foreign  []syspkg.Package
	block    chan struct{}
	calls    atomic.Int32
	qqCalls  atomic.Int32
	probes   atomic.Int32
	lastTerm string
	mu       sync.Mutex
}

func (f *fakeProvider) Name() string          { return string(f.source) }
func (f *fakeProvider) Source() syspkg.Source { return f.source }

func (f *fakeProvider) wait(ctx context.Context) error {
	if f.block == nil {
		return nil
	}
	select {
	case <-f.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeProvider) Search(ctx context.Context, term string, _ func(syspkg.Package)) ([]syspkg.Package, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastTerm = term
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return append([]syspkg.Package(nil), f.search...), f.err
}

func (f *fakeProvider) Updates(ctx context.Context, _ func(syspkg.Update)) ([]syspkg.Update, error) {
	f.calls.Add(1)
	return append([]syspkg.Update(nil), f.updates...), f.err
}

func (f *fakeProvider) Details(ctx context.Context, name string) (*syspkg.Details, error) {
	f.calls.Add(1)
	if d, ok := f.details[name]; ok {
		return d, nil
	}
	return nil, syspkg.ErrPackageNotFound
}

func (f *fakeProvider) InstalledNames(ctx context.Context) ([]string, error) {
	f.qqCalls.Add(1)
	return f.names, nil
}

func (f *fakeProvider) Explicit(ctx context.Context, kind syspkg.ExplicitKind, _ func(syspkg.Package)) ([]syspkg.Package, error) {
	if kind == syspkg.ExplicitForeign {
		return f.foreign, nil
	}
	return f.native, nil
}

func (f *fakeProvider) Usable(ctx context.Context) bool {
	f.probes.Add(1)
	return f.usable
}

func pkg(repo, name string) syspkg.Package {
	return syspkg.Package{Repo: repo, Name: name, Version: "1-1", Source: syspkg.SourceFromRepo(repo)}
}

func names(pkgs []syspkg.Package) []string {
	var out []string
	for _, p := range pkgs {
		out = append(out, p.Name)
	}
	return out
}

func TestSearch_MergesFiltersAndHides(t *testing.T) {
	repo := &fakeProvider{
		source: syspkg.SourceRepo,
		search: []syspkg.Package{pkg("extra", "firefox"), pkg("extra", "firefox-i18n-de"), pkg("extra", "librewolf-like"), pkg("core", "firefox-installed")},
		names:  []string{"firefox-installed"},
	}
	aur := &fakeProvider{
		source: syspkg.SourceAUR,
		search: []syspkg.Package{pkg("aur", "firefox-nightly"), pkg("aur", "something-else")},
		usable: true,
	}

	c := New(repo, aur, DefaultOptions(), nil)

	var mu sync.Mutex
	var batches []syspkg.Source
	res, err := c.Search(context.Background(), "  FireFox ", func(b Batch[syspkg.Package]) {
		mu.Lock()
		batches = append(batches, b.Source)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"firefox", "firefox-i18n-de", "firefox-nightly"}, names(res.Items))
	assert.Empty(t, res.Errors)
	assert.False(t, res.Truncated)
	assert.ElementsMatch(t, []syspkg.Source{syspkg.SourceRepo, syspkg.SourceAUR}, batches)
	assert.Equal(t, "FireFox", repo.lastTerm)

	_, err = c.Search(context.Background(), "firefox", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.qqCalls.Load(), "installed names are cached")
	assert.Equal(t, int32(1), aur.probes.Load(), "yay probe is cached")

	c.InvalidateInstalled()
	_, err = c.Search(context.Background(), "firefox", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), repo.qqCalls.Load())
}

func TestSearch_ShowInstalledWhenDisabled(t *testing.T) {
	repo := &fakeProvider{source: syspkg.SourceRepo, search: []syspkg.Package{pkg("core", "bash")}, names: []string{"bash"}}
	aur := &fakeProvider{source: syspkg.SourceAUR, usable: true}

	opts := DefaultOptions()
	opts.HideInstalled = false
	c := New(repo, aur, opts, nil)

	res, err := c.Search(context.Background(), "bash", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"bash"}, names(res.Items))
	assert.Zero(t, repo.qqCalls.Load())
}

func TestSearch_InvalidTerm(t *testing.T) {
	repo := &fakeProvider{source: syspkg.SourceRepo}
	c := New(repo, &fakeProvider{source: syspkg.SourceAUR}, DefaultOptions(), nil)

	for _, term := range []string{"", "  ", "-Syu"} {
		_, err := c.Search(context.Background(), term, nil)
		assert.ErrorIs(t, err, syspkg.ErrInvalidTerm)
	}
	assert.Zero(t, repo.calls.Load())
}

func TestSearch_Limit(t *testing.T) {
	repo := &fakeProvider{source: syspkg.SourceRepo}
	for i := 0; i < 4; i++ {
		repo.search = append(repo.search, pkg("extra", "lib"+string(rune('a'+i))))
	}
	aur := &fakeProvider{source: syspkg.SourceAUR, usable: true, search: []syspkg.Package{pkg("aur", "lib-aur")}}

	c := New(repo, aur, Options{SearchLimit: 3}, nil)
	res, err := c.Search(context.Background(), "lib", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"liba", "libb", "libc"}, names(res.Items))
	assert.True(t, res.Truncated)
}

func TestSearch_OneSourceFails(t *testing.T) {
	repo := &fakeProvider{source: syspkg.SourceRepo, err: errors.New("db locked")}
	aur := &fakeProvider{source: syspkg.SourceAUR, usable: true, search: []syspkg.Package{pkg("aur", "yay-bin")}}

	c := New(repo, aur, Options{}, nil)
	res, err := c.Search(context.Background(), "yay", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"yay-bin"}, names(res.Items))
	require.Len(t, res.Errors, 1)
	var srcErr *SourceError
	require.ErrorAs(t, res.Errors[0], &srcErr)
	assert.Equal(t, syspkg.SourceRepo, srcErr.Source)
	assert.Contains(t, res.Err().Error(), "Pacman: db locked")
	assert.False(t, res.Failed())
}

func TestSearch_YayUnusable(t *testing.T) {
	repo := &fakeProvider{source: syspkg.SourceRepo, search: []syspkg.Package{pkg("extra", "vim")}}
	aur := &fakeProvider{source: syspkg.SourceAUR, usable: false, search: []syspkg.Package{pkg("aur", "vim-git")}}

	c := New(repo, aur, Options{}, nil)
	res, err := c.Search(context.Background(), "vim", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"vim"}, names(res.Items))
	assert.Zero(t, aur.calls.Load())
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Errors[0], syspkg.ErrYayUnavailable)
	assert.False(t, c.YayUsable(context.Background()))
}

func TestSearch_NewQueryCancelsPrevious(t *testing.T) {
	repo := &fakeProvider{source: syspkg.SourceRepo, block: make(chan struct{})}
	aur := &fakeProvider{source: syspkg.SourceAUR, usable: false}
	c := New(repo, aur, Options{}, nil)

	first := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background(), "first", nil)
		first <- err
	}()
	require.Eventually(t, func() bool { return repo.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background(), "second", nil)
		second <- err
	}()

	select {
	case err := <-first:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("first search was not cancelled")
	}

	require.Eventually(t, func() bool { return repo.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	close(repo.block)

	select {
	case err := <-second:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second search did not finish")
	}
}

func TestCancelAll(t *testing.T) {
	repo := &fakeProvider{source: syspkg.SourceRepo, block: make(chan struct{})}
	c := New(repo, &fakeProvider{source: syspkg.SourceAUR}, Options{}, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Search(context.Background(), "vim", nil)
		errCh <- err
	}()
	require.Eventually(t, func() bool { return repo.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	c.CancelAll()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("search was not cancelled")
	}
}

func TestInstalled(t *testing.T) {
	repo := &fakeProvider{
		source:  syspkg.SourceRepo,
		native:  []syspkg.Package{{Name: "base", Source: syspkg.SourceRepo}, {Name: "linux", Source: syspkg.SourceRepo}},
		foreign: []syspkg.Package{{Name: "yay", Source: syspkg.SourceAUR}},
	}
	c := New(repo, nil, Options{}, nil)

	res, err := c.Installed(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "linux", "yay"}, names(res.Items))

	c.SetOptions(Options{InstalledLimit: 2})
	res, err = c.Installed(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.True(t, res.Truncated)
}

func TestUpdates_Dedupes(t *testing.T) {
	repo := &fakeProvider{
		source: syspkg.SourceRepo,
		updates: []syspkg.Update{
			{Name: "bash", Current: "1", New: "2", Source: syspkg.SourceRepo},
			{Name: "bash", Current: "1", New: "2", Source: syspkg.SourceRepo},
		},
	}
	aur := &fakeProvider{
		source:  syspkg.SourceAUR,
		usable:  true,
		updates: []syspkg.Update{{Name: "bash", Current: "1", New: "3", Source: syspkg.SourceAUR}},
	}

	res, err := New(repo, aur, Options{}, nil).Updates(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, syspkg.SourceRepo, res.Items[0].Source)
	assert.Equal(t, syspkg.SourceAUR, res.Items[1].Source)
}

func TestDetails_RoutesAndCaches(t *testing.T) {
	repo := &fakeProvider{source: syspkg.SourceRepo, details: map[string]*syspkg.Details{"vim": {Name: "vim", Repo: "extra"}}}
	aur := &fakeProvider{source: syspkg.SourceAUR, usable: true, details: map[string]*syspkg.Details{"vim-git": {Name: "vim-git", Repo: "aur"}}}
	c := New(repo, aur, Options{}, nil)

	d, err := c.Details(context.Background(), syspkg.SourceRepo, "vim")
	require.NoError(t, err)
	assert.Equal(t, "extra", d.Repo)

	d, err = c.Details(context.Background(), syspkg.SourceAUR, "vim-git")
	require.NoError(t, err)
	assert.Equal(t, "aur", d.Repo)

	_, err = c.Details(context.Background(), syspkg.SourceRepo, "vim")
	require.NoError(t, err)
	assert.Equal(t, int32(1), repo.calls.Load())

	_, err = c.Details(context.Background(), syspkg.SourceRepo, "missing")
	assert.ErrorIs(t, err, syspkg.ErrPackageNotFound)
}

func TestDetails_YayUnavailable(t *testing.T) {
	c := New(&fakeProvider{source: syspkg.SourceRepo}, &fakeProvider{source: syspkg.SourceAUR}, Options{}, nil)
	_, err := c.Details(context.Background(), syspkg.SourceAUR, "spotify")
	assert.ErrorIs(t, err, syspkg.ErrYayUnavailable)
}

func TestDedupeUpdates(t *testing.T) {
	in := []syspkg.Update{
		{Name: "a", Source: syspkg.SourceRepo},
		{Name: "b", Source: syspkg.SourceRepo},
		{Name: "a", Source: syspkg.SourceRepo, New: "later"},
	}
	out := DedupeUpdates(in)
	require.Len(t, out, 2)
	assert.Empty(t, out[0].New)
}
