package arch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/quantmind-br/pacfront/internal/syspkg"
)

// streamLines runs a query command and hands every stdout line to onLine
// as it arrives.
func streamLines(ctx context.Context, runner helpers.CommandRunner, bin string, args []string, onLine func(string)) error {
	var stderr bytes.Buffer
	lw := helpers.NewLineWriter(onLine)

	err := runner.RunCommandStreaming(ctx, lw, &stderr, bin, args...)
	lw.Flush()

	return classify(ctx, bin, err, stderr.String())
}

// classify turns a query failure into the error the caller should see.
// pacman and yay exit 1 without any stderr when a query simply has no
// results, which is not an error.
func classify(ctx context.Context, bin string, err error, stderr string) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if helpers.IsNotFound(err) {
		return fmt.Errorf("%s: %w", bin, syspkg.ErrToolNotFound)
	}
	if helpers.ExitCode(err) == 1 && strings.TrimSpace(stderr) == "" {
		return nil
	}

	var cmdErr *helpers.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stderr == "" {
		cmdErr.Stderr = stderr
	}
	return err
}

func checkTerm(term string) error {
	term = strings.TrimSpace(term)
	if term == "" || strings.HasPrefix(term, "-") {
		return fmt.Errorf("%w: %q", syspkg.ErrInvalidTerm, term)
	}
	return nil
}

func detailsError(ctx context.Context, bin, name string, err error, stdout, stderr string) error {
	if strings.Contains(stderr, "was not found") || (err != nil && strings.TrimSpace(stdout) == "" && helpers.ExitCode(err) == 1) {
		return fmt.Errorf("%s: %w", name, syspkg.ErrPackageNotFound)
	}
	return classify(ctx, bin, err, stderr)
}
