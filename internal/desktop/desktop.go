// Package desktop reads and writes the freedesktop launcher for pacfront.
package desktop

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/quantmind-br/pacfront/internal/cache"
	"github.com/quantmind-br/pacfront/internal/fsops"
	"github.com/quantmind-br/pacfront/internal/security"
)

// Entry is the [Desktop Entry] group of a .desktop file
type Entry struct {
	Type           string
	Name           string
	GenericName    string
	Comment        string
	Exec           string
	Icon           string
	Terminal       bool
	Categories     []string
	Keywords       []string
	StartupWMClass string
}

// NewLauncher returns the launcher entry that opens the window in a terminal
func NewLauncher(execPath string) *Entry {
	return &Entry{
		Type:        "Application",
		Name:        "pacfront",
		GenericName: "Package Manager",
		Comment:     "Search, install, update and remove pacman and AUR packages",
		Exec:        escapeExecToken(execPath) + " ui",
		Icon:        "system-software-install",
		Terminal:    true,
		Categories:  []string{"System", "PackageManager"},
		Keywords:    []string{"pacman", "yay", "aur", "package"},
	}
}

// Parse parses a .desktop file from a reader
func Parse(r io.Reader) (*Entry, error) {
	de := &Entry{}
	scanner := bufio.NewScanner(r)
	inDesktopEntry := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			inDesktopEntry = line == "[Desktop Entry]"
			continue
		}

		if !inDesktopEntry {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Type":
			de.Type = value
		case "Name":
			de.Name = value
		case "GenericName":
			de.GenericName = value
		case "Exec":
			de.Exec = value
		case "Icon":
			de.Icon = value
		case "Comment":
			de.Comment = value
		case "Categories":
			de.Categories = parseSemicolonList(value)
		case "Keywords":
			de.Keywords = parseSemicolonList(value)
		case "Terminal":
			de.Terminal = value == "true"
		case "StartupWMClass":
			de.StartupWMClass = value
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan desktop file: %w", err)
	}

	return de, nil
}

// Write writes a .desktop file to a writer
func Write(w io.Writer, de *Entry) error {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "[Desktop Entry]")
	fmt.Fprintf(&buf, "Type=%s\n", de.Type)
	fmt.Fprintf(&buf, "Name=%s\n", de.Name)
	if de.GenericName != "" {
		fmt.Fprintf(&buf, "GenericName=%s\n", de.GenericName)
	}
	if de.Comment != "" {
		fmt.Fprintf(&buf, "Comment=%s\n", de.Comment)
	}
	fmt.Fprintf(&buf, "Exec=%s\n", de.Exec)
	if de.Icon != "" {
		fmt.Fprintf(&buf, "Icon=%s\n", de.Icon)
	}
	fmt.Fprintf(&buf, "Terminal=%t\n", de.Terminal)
	if len(de.Categories) > 0 {
		fmt.Fprintf(&buf, "Categories=%s;\n", strings.Join(de.Categories, ";"))
	}
	if len(de.Keywords) > 0 {
		fmt.Fprintf(&buf, "Keywords=%s;\n", strings.Join(de.Keywords, ";"))
	}
	if de.StartupWMClass != "" {
		fmt.Fprintf(&buf, "StartupWMClass=%s\n", de.StartupWMClass)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Validate checks if the desktop entry has required fields
func Validate(de *Entry) error {
	if de.Type == "" {
		return errors.New("Type field is required")
	}
	if de.Name == "" {
		return errors.New("Name field is required")
	}
	if de.Exec == "" {
		return errors.New("Exec field is required")
	}
	if strings.ContainsAny(de.Exec, "\n\r") {
		return errors.New("Exec field must be a single line")
	}
	return nil
}

// Installer places the launcher in an applications directory
type Installer struct {
	fs    afero.Fs
	cache cache.Updater
	log   *zerolog.Logger
}

// NewInstaller creates an Installer
func NewInstaller(fs afero.Fs, updater cache.Updater, log *zerolog.Logger) *Installer {
	return &Installer{fs: fs, cache: updater, log: log}
}

// Install writes the entry to path and refreshes the desktop database
func (i *Installer) Install(ctx context.Context, path string, de *Entry) error {
	if err := security.ValidateFilePath(path); err != nil {
		return fmt.Errorf("invalid desktop file path: %w", err)
	}
	if err := Validate(de); err != nil {
		return fmt.Errorf("invalid desktop entry: %w", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, de); err != nil {
		return fmt.Errorf("render desktop entry: %w", err)
	}

	if err := fsops.WriteFileAtomic(i.fs, path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to create desktop file: %w", err)
	}
	i.log.Info().Str("path", path).Msg("desktop launcher installed")

	return i.cache.UpdateDesktopDatabase(ctx, filepath.Dir(path), i.log)
}

// Remove deletes the launcher at path. It reports whether a file was removed.
func (i *Installer) Remove(ctx context.Context, path string) (bool, error) {
	removed, err := fsops.RemoveIfExists(i.fs, path)
	if err != nil {
		return false, err
	}
	if !removed {
		i.log.Debug().Str("path", path).Msg("desktop launcher not installed")
		return false, nil
	}
	i.log.Info().Str("path", path).Msg("desktop launcher removed")

	return true, i.cache.UpdateDesktopDatabase(ctx, filepath.Dir(path), i.log)
}

// Load reads and parses the launcher at path
func (i *Installer) Load(path string) (*Entry, error) {
	f, err := i.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open desktop file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// parseSemicolonList parses semicolon-separated list
func parseSemicolonList(value string) []string {
	value = strings.TrimSuffix(value, ";")
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// escapeExecToken quotes an Exec argument containing reserved characters
func escapeExecToken(token string) string {
	if !strings.ContainsAny(token, " \t\"'\\$`;&|<>()*?#~") {
		return token
	}
	escaped := strings.ReplaceAll(token, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "`", "\\`")
	escaped = strings.ReplaceAll(escaped, `$`, `\$`)
	return `"` + escaped + `"`
}
