package cache

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/rs/zerolog"
)

const updateDesktopDatabaseCmd = "update-desktop-database"

// Updater refreshes desktop caches after a launcher file changes
type Updater interface {
	UpdateDesktopDatabase(ctx context.Context, appsDir string, log *zerolog.Logger) error
}

// CacheManager handles cache updates
type CacheManager struct {
	runner  helpers.CommandRunner
	timeout time.Duration
}

// NewCacheManager creates a new CacheManager with the default command runner
func NewCacheManager() *CacheManager {
	return NewCacheManagerWithRunner(helpers.NewOSCommandRunner())
}

// NewCacheManagerWithRunner creates a new CacheManager with a custom command runner
func NewCacheManagerWithRunner(runner helpers.CommandRunner) *CacheManager {
	return &CacheManager{
		runner:  runner,
		timeout: 30 * time.Second,
	}
}

// UpdateDesktopDatabase updates the desktop database using update-desktop-database.
// A missing tool or a failed run is logged and ignored.
func (c *CacheManager) UpdateDesktopDatabase(ctx context.Context, appsDir string, log *zerolog.Logger) error {
	if !c.runner.CommandExists(updateDesktopDatabaseCmd) {
		log.Warn().Msg("update-desktop-database not found, skipping desktop database update")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	execName := updateDesktopDatabaseCmd
	cmdArgs := []string{appsDir}
	if needsSudo(appsDir) {
		execName = "sudo"
		cmdArgs = append([]string{updateDesktopDatabaseCmd}, cmdArgs...)
	}

	if _, err := c.runner.RunCommand(ctx, execName, cmdArgs...); err != nil {
		log.Warn().Err(err).Msg("desktop database update failed (non-fatal)")
		return nil // Non-fatal
	}

	log.Debug().Str("apps_dir", appsDir).Msg("desktop database updated")
	return nil
}

func needsSudo(path string) bool {
	cleaned := filepath.Clean(path)
	systemPrefixes := []string{"/usr", "/opt", "/var", "/etc"}
	for _, prefix := range systemPrefixes {
		if cleaned == prefix || strings.HasPrefix(cleaned, prefix+"/") {
			return true
		}
	}
	return false
}
