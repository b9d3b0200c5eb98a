package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/pacfront/internal/filter"
	"github.com/quantmind-br/pacfront/internal/syspkg"
	"github.com/quantmind-br/pacfront/internal/ui"
)

// listFlags are shared by search, installed and updates
type listFlags struct {
	json   bool
	source string
	filter string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.json, "json", false, "output in JSON format")
	cmd.Flags().StringVar(&f.source, "source", "all", "show one source only: all, pacman or yay")
	cmd.Flags().StringVar(&f.filter, "filter", "", "keep rows whose name or version contains this text")
}

func (f *listFlags) query(fuzzy bool) (filter.Query, error) {
	src, err := syspkg.ParseSource(f.source)
	if err != nil {
		return filter.Query{}, err
	}
	return filter.Query{Text: f.filter, Source: src, Fuzzy: fuzzy}, nil
}

// spinner shows progress on stderr unless the output is JSON
func (f *listFlags) spinner(cmd *cobra.Command, description string) *ui.Spinner {
	if f.json {
		return ui.NewSpinner(nil, description)
	}
	return ui.NewSpinner(cmd.ErrOrStderr(), description)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// warnSourceErrors prints one line per failed source
func warnSourceErrors(w io.Writer, errs []error) {
	for _, err := range errs {
		fmt.Fprintln(w, ui.Warning.Sprint(ui.SprintWarning("%v", err)))
	}
}

func countBySource(updates []syspkg.Update) (repo, aur int) {
	for _, u := range updates {
		if u.Source == syspkg.SourceAUR {
			aur++
		} else {
			repo++
		}
	}
	return repo, aur
}
