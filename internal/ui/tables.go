package ui

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/quantmind-br/pacfront/internal/history"
	"github.com/quantmind-br/pacfront/internal/syspkg"
)

const maxDescription = 60

// PrintPackageTable prints search hits or installed packages
func PrintPackageTable(w io.Writer, pkgs []syspkg.Package, withDescription bool) error {
	header := []string{"Package", "Version", "Source"}
	if withDescription {
		header = append(header, "Description")
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader(header),
		tablewriter.WithAlignment(tw.MakeAlign(len(header), tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, p := range pkgs {
		row := []string{p.Name, p.Version, ColorizeSource(p.Source)}
		if withDescription {
			row = append(row, truncate(p.Description, maxDescription))
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}

	return table.Render()
}

// PrintUpdateTable prints pending upgrades
func PrintUpdateTable(w io.Writer, updates []syspkg.Update) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Package", "Current", "New", "Source"}),
		tablewriter.WithAlignment(tw.MakeAlign(4, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleNone)),
	)

	for _, u := range updates {
		newVersion := u.New
		if u.Ignored {
			newVersion += " [ignored]"
		}
		if err := table.Append([]string{u.Name, u.Current, newVersion, ColorizeSource(u.Source)}); err != nil {
			return err
		}
	}

	return table.Render()
}

// PrintHistoryTable prints operation history, newest first
func PrintHistoryTable(w io.Writer, entries []history.Entry) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Started", "Action", "Packages", "Mode", "Exit", "Command"}),
		tablewriter.WithAlignment(tw.MakeAlign(7, tw.AlignLeft)),
		tablewriter.WithSymbols(tw.NewSymbols(tw.StyleLight)),
	)

	for _, e := range entries {
		var exit string
		switch {
		case e.FinishedAt == nil:
			exit = Warning.Sprint("running")
		case e.ExitCode < 0 && e.Error == "":
			exit = Muted.Sprint("launched")
		case e.Succeeded():
			exit = Success.Sprint(strconv.Itoa(e.ExitCode))
		default:
			exit = Error.Sprint(strconv.Itoa(e.ExitCode))
		}

		if err := table.Append([]string{
			ShortID(e.ID),
			e.StartedAt.Local().Format("2006-01-02 15:04"),
			e.Action,
			truncate(strings.Join(e.Packages, " "), 40),
			e.Mode,
			exit,
			truncate(e.Command, maxDescription),
		}); err != nil {
			return err
		}
	}

	return table.Render()
}

// PrintDetails prints every -Si field in order, or the parsed summary
// when no raw fields were kept
func PrintDetails(w io.Writer, d *syspkg.Details) {
	PrintHeader(w, d.Name+" "+d.Version)
	if len(d.Fields) > 0 {
		for _, f := range d.Fields {
			PrintKeyValue(w, f.Key, f.Value)
		}
		return
	}

	summary := []syspkg.Field{
		{Key: "Name", Value: d.Name},
		{Key: "Version", Value: d.Version},
		{Key: "Repository", Value: d.Repo},
		{Key: "Description", Value: d.Description},
		{Key: "URL", Value: d.URL},
		{Key: "Licenses", Value: strings.Join(d.Licenses, "  ")},
		{Key: "Depends On", Value: strings.Join(d.Depends, "  ")},
	}
	for _, f := range summary {
		if f.Value == "" {
			continue
		}
		PrintKeyValue(w, f.Key, f.Value)
	}
}

// ShortID is the leading part of a history ID shown in tables; history
// lookups accept it as a prefix
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
