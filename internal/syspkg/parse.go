package syspkg

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

var searchHeaderRe = regexp.MustCompile(`^([^/\s]+)/(\S+)\s+(.+)$`)

// CleanControlCodes strips ANSI escape sequences, OSC 8 hyperlinks included.
func CleanControlCodes(text string) string {
	return ansi.Strip(text)
}

// SearchParser incrementally parses -Ss output. A header line
// "repo/name version [flags]" opens an entry, indented lines extend its
// description, and any other non-indented line closes it.
type SearchParser struct {
	current *Package
	desc    []string
	emit    func(Package)
}

// NewSearchParser creates a parser that calls emit for each finished entry
func NewSearchParser(emit func(Package)) *SearchParser {
	return &SearchParser{emit: emit}
}

// Feed consumes one raw output line
func (p *SearchParser) Feed(raw string) {
	line := strings.TrimRight(CleanControlCodes(raw), "\r")
	if line == "" || strings.HasPrefix(line, "::") {
		return
	}

	if m := searchHeaderRe.FindStringSubmatch(line); m != nil {
		p.flush()
		p.current = &Package{
			Repo:    m[1],
			Name:    m[2],
			Version: strings.TrimSpace(m[3]),
			Source:  SourceFromRepo(m[1]),
		}
		return
	}

	if p.current == nil {
		return
	}

	if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
		if s := strings.TrimSpace(line); s != "" {
			p.desc = append(p.desc, s)
		}
		return
	}

	p.flush()
}

// Close emits the pending entry, if any
func (p *SearchParser) Close() {
	p.flush()
}

func (p *SearchParser) flush() {
	if p.current == nil {
		return
	}
	pkg := *p.current
	pkg.Description = strings.Join(p.desc, " ")
	p.current = nil
	p.desc = nil
	p.emit(pkg)
}

// ParseSearch parses complete -Ss output
func ParseSearch(output string) []Package {
	var pkgs []Package
	parser := NewSearchParser(func(pkg Package) {
		pkgs = append(pkgs, pkg)
	})
	for _, line := range strings.Split(output, "\n") {
		parser.Feed(line)
	}
	parser.Close()
	return pkgs
}

// ParseInstalledLine parses one "name version" line from -Q output
func ParseInstalledLine(raw string) (Package, bool) {
	parts := strings.Fields(CleanControlCodes(raw))
	if len(parts) < 2 {
		return Package{}, false
	}
	return Package{Name: parts[0], Version: parts[1]}, true
}

// ParseInstalled parses complete -Qe/-Qen/-Qem output
func ParseInstalled(output string) []Package {
	var pkgs []Package
	for _, line := range strings.Split(output, "\n") {
		if pkg, ok := ParseInstalledLine(line); ok {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs
}

// ParseNames parses -Qq output into package names
func ParseNames(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		parts := strings.Fields(CleanControlCodes(line))
		if len(parts) == 0 {
			continue
		}
		names = append(names, parts[0])
	}
	return names
}

// ParseUpdateLine parses "name old -> new" from -Qu / -Qua output. A
// leading "repo/" prefix on the name is dropped and a trailing "[ignored]"
// marks packages listed in IgnorePkg.
func ParseUpdateLine(raw string) (Update, bool) {
	line := strings.TrimSpace(CleanControlCodes(raw))
	if line == "" || strings.HasPrefix(line, "::") {
		return Update{}, false
	}

	parts := strings.Fields(line)
	if len(parts) < 4 || parts[2] != "->" {
		return Update{}, false
	}

	name := parts[0]
	if idx := strings.IndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}

	return Update{
		Name:    name,
		Current: parts[1],
		New:     parts[3],
		Ignored: len(parts) > 4 && parts[4] == "[ignored]",
	}, true
}

// ParseUpdates parses complete -Qu / -Qua output
func ParseUpdates(output string) []Update {
	var updates []Update
	for _, line := range strings.Split(output, "\n") {
		if u, ok := ParseUpdateLine(line); ok {
			updates = append(updates, u)
		}
	}
	return updates
}

// ParseDetails parses -Si output. Keys are split on the first colon;
// lines starting with whitespace continue the previous value.
func ParseDetails(output string) *Details {
	d := &Details{}

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(CleanControlCodes(raw), " \r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if n := len(d.Fields); n > 0 {
				d.Fields[n-1].Value = joinValue(d.Fields[n-1].Value, strings.TrimSpace(line))
			}
			continue
		}

		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		d.Fields = append(d.Fields, Field{
			Key:   strings.TrimSpace(key),
			Value: strings.TrimSpace(val),
		})
	}

	for _, f := range d.Fields {
		val := f.Value
		if val == "" || val == "None" {
			continue
		}
		switch strings.ToLower(f.Key) {
		case "name":
			d.Name = val
		case "version":
			d.Version = val
		case "repository":
			d.Repo = val
		case "description":
			d.Description = val
		case "url":
			d.URL = val
		case "licenses":
			d.Licenses = splitList(val)
		case "depends on":
			d.Depends = splitList(val)
		}
	}

	return d
}

func joinValue(prev, next string) string {
	if prev == "" {
		return next
	}
	return prev + "\n" + next
}

func splitList(val string) []string {
	return strings.Fields(val)
}
