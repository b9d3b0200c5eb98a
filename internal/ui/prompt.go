package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt
var ErrCancelled = errors.New("operation cancelled by user")

// Prompter asks the user questions. Commands take one so tests can answer.
type Prompter interface {
	Confirm(label string, defaultYes bool) (bool, error)
	MultiSelect(label string, items []string) ([]string, error)
}

// TerminalPrompter prompts on the controlling terminal with promptui
type TerminalPrompter struct{}

// Confirm implements Prompter
func (TerminalPrompter) Confirm(label string, defaultYes bool) (bool, error) {
	return ConfirmWithDefault(label, defaultYes)
}

// MultiSelect implements Prompter
func (TerminalPrompter) MultiSelect(label string, items []string) ([]string, error) {
	return MultiSelectPrompt(label, items)
}

// ConfirmPrompt asks a yes/no confirmation question
func ConfirmPrompt(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, ErrCancelled
		}
		// promptui reports "n" as ErrAbort
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}

	return strings.EqualFold(result, "y"), nil
}

// ConfirmWithDefault asks for confirmation with a default value
func ConfirmWithDefault(label string, defaultYes bool) (bool, error) {
	def := "n"
	if defaultYes {
		def = "y"
	}

	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Default:   def,
	}

	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, ErrCancelled
		}
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}

	if result == "" {
		return defaultYes, nil
	}
	return strings.EqualFold(result, "y"), nil
}

// MultiSelectPrompt presents a multi-select list (simulated with repeated selection)
func MultiSelectPrompt(label string, items []string) ([]string, error) {
	const done = "[Done - Finish selection]"

	selected := make([]string, 0)
	available := append([]string{}, items...)

	for len(available) > 0 {
		current := append(append([]string{}, available...), done)

		prompt := promptui.Select{
			Label:    fmt.Sprintf("%s (%d selected, choose 'Done' when finished)", label, len(selected)),
			Items:    current,
			Size:     min(10, len(current)),
			Searcher: fuzzySearcher(current),
		}

		index, result, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
				return nil, ErrCancelled
			}
			return nil, err
		}

		if index == len(current)-1 {
			break
		}

		selected = append(selected, result)
		available = append(available[:index], available[index+1:]...)
	}

	return selected, nil
}

func fuzzySearcher(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		if index < 0 || index >= len(items) {
			return false
		}
		input = strings.TrimSpace(input)
		if input == "" {
			return true
		}
		return fuzzy.MatchNormalizedFold(input, items[index])
	}
}
