// Package theme holds the built-in colour palettes and custom theme files.
package theme

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/quantmind-br/pacfront/internal/fsops"
)

// Theme names shown in the settings overlay, in order
const (
	System         = "System"
	Light          = "Light"
	Dark           = "Dark"
	Nord           = "Nord"
	Dracula        = "Dracula"
	SolarizedLight = "Solarized Light"
	SolarizedDark  = "Solarized Dark"
	Custom         = "Custom"
)

// ErrUnknownTheme is returned for names outside Names()
var ErrUnknownTheme = errors.New("unknown theme")

var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Palette is a set of hex colours. An empty colour means the terminal default.
type Palette struct {
	Name             string `toml:"name"`
	Background       string `toml:"background"`
	Foreground       string `toml:"foreground"`
	InputBackground  string `toml:"input_background"`
	InputForeground  string `toml:"input_foreground"`
	Border           string `toml:"border"`
	Button           string `toml:"button"`
	ButtonHover      string `toml:"button_hover"`
	ListBackground   string `toml:"list_background"`
	StatusBackground string `toml:"status_background"`
	Accent           string `toml:"accent"`
	Error            string `toml:"error"`
}

var builtin = map[string]Palette{
	System: {Name: System},
	Light: {
		Name: Light, Background: "#fafafa", Foreground: "#202020",
		InputBackground: "#ffffff", InputForeground: "#202020", Border: "#cfcfcf",
		Button: "#f3f3f3", ButtonHover: "#e9e9e9", ListBackground: "#ffffff",
		StatusBackground: "#f0f0f0", Accent: "#1565c0", Error: "#c62828",
	},
	Dark: {
		Name: Dark, Background: "#121212", Foreground: "#e0e0e0",
		InputBackground: "#1e1e1e", InputForeground: "#e0e0e0", Border: "#2a2a2a",
		Button: "#1f2933", ButtonHover: "#26323d", ListBackground: "#1a1a1a",
		StatusBackground: "#181818", Accent: "#4fc3f7", Error: "#ef5350",
	},
	Nord: {
		Name: Nord, Background: "#2e3440", Foreground: "#d8dee9",
		InputBackground: "#3b4252", InputForeground: "#eceff4", Border: "#434c5e",
		Button: "#434c5e", ButtonHover: "#4c566a", ListBackground: "#3b4252",
		StatusBackground: "#2e3440", Accent: "#88c0d0", Error: "#bf616a",
	},
	Dracula: {
		Name: Dracula, Background: "#282a36", Foreground: "#f8f8f2",
		InputBackground: "#1e1f29", InputForeground: "#f8f8f2", Border: "#44475a",
		Button: "#44475a", ButtonHover: "#5a5f73", ListBackground: "#1e1f29",
		StatusBackground: "#1e1f29", Accent: "#bd93f9", Error: "#ff5555",
	},
	SolarizedLight: {
		Name: SolarizedLight, Background: "#fdf6e3", Foreground: "#657b83",
		InputBackground: "#eee8d5", InputForeground: "#586e75", Border: "#d6ceb6",
		Button: "#e9e2c6", ButtonHover: "#e2dabd", ListBackground: "#fefcf2",
		StatusBackground: "#f3eddb", Accent: "#268bd2", Error: "#dc322f",
	},
	SolarizedDark: {
		Name: SolarizedDark, Background: "#002b36", Foreground: "#93a1a1",
		InputBackground: "#073642", InputForeground: "#93a1a1", Border: "#0f3945",
		Button: "#0f3945", ButtonHover: "#12404d", ListBackground: "#073642",
		StatusBackground: "#002b36", Accent: "#268bd2", Error: "#dc322f",
	},
}

// Names returns every selectable theme name
func Names() []string {
	return []string{System, Light, Dark, Nord, Dracula, SolarizedLight, SolarizedDark, Custom}
}

// Canonical maps a case-insensitive theme name to its display form
func Canonical(name string) (string, bool) {
	for _, n := range Names() {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return n, true
		}
	}
	return "", false
}

// Builtin returns the palette for a built-in theme. Custom is not built in.
func Builtin(name string) (Palette, error) {
	canonical, ok := Canonical(name)
	if !ok {
		return Palette{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	p, ok := builtin[canonical]
	if !ok {
		return Palette{}, fmt.Errorf("%w: %q has no built-in palette", ErrUnknownTheme, name)
	}
	return p, nil
}

// Resolve returns the palette for name, reading customFile for Custom.
// On any error it still returns the System palette so callers can carry on.
func Resolve(fs afero.Fs, name, customFile string) (Palette, error) {
	canonical, ok := Canonical(name)
	if !ok {
		return builtin[System], fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	if canonical != Custom {
		return builtin[canonical], nil
	}

	p, err := Import(fs, customFile)
	if err != nil {
		return builtin[System], err
	}
	return p, nil
}

// Validate checks that every colour is empty or a #rgb / #rrggbb value
func (p Palette) Validate() error {
	colors := map[string]string{
		"background":        p.Background,
		"foreground":        p.Foreground,
		"input_background":  p.InputBackground,
		"input_foreground":  p.InputForeground,
		"border":            p.Border,
		"button":            p.Button,
		"button_hover":      p.ButtonHover,
		"list_background":   p.ListBackground,
		"status_background": p.StatusBackground,
		"accent":            p.Accent,
		"error":             p.Error,
	}
	var errs []error
	for _, key := range slices.Sorted(maps.Keys(colors)) {
		if v := colors[key]; v != "" && !hexColorRegex.MatchString(v) {
			errs = append(errs, fmt.Errorf("%s: invalid colour %q", key, v))
		}
	}
	return errors.Join(errs...)
}

// Export writes p as TOML to path
func Export(fs afero.Fs, path string, p Palette) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}
	if err := fsops.WriteFileAtomic(fs, path, data, 0644); err != nil {
		return fmt.Errorf("write theme: %w", err)
	}
	return nil
}

// Import reads a TOML palette from path. The result is always named Custom.
func Import(fs afero.Fs, path string) (Palette, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Palette{}, fmt.Errorf("read theme: %w", err)
	}

	var p Palette
	if err := toml.Unmarshal(data, &p); err != nil {
		return Palette{}, fmt.Errorf("decode theme %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Palette{}, fmt.Errorf("theme %s: %w", path, err)
	}

	p.Name = Custom
	return p, nil
}
