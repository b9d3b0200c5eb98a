package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"
)

// WriteCrashLog overwrites path with the panic value and stack trace
func WriteCrashLog(path string, recovered any, stack []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create crash log dir: %w", err)
		}
	}

	content := fmt.Sprintf("pacfront crashed at %s\n\npanic: %v\n\n%s",
		time.Now().Format(time.RFC3339), recovered, stack)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write crash log: %w", err)
	}
	return nil
}

// HandlePanic is deferred in main. It records a panic to the crash log,
// tells the user where it went and returns the process exit code, or 0
// when there was no panic.
func HandlePanic(recovered any, path string) int {
	if recovered == nil {
		return 0
	}

	stack := debug.Stack()
	fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", recovered, stack)

	if err := WriteCrashLog(path, recovered, stack); err != nil {
		fmt.Fprintf(os.Stderr, "could not write crash log: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "A crash log was written to: %s\n", path)
	return 1
}
