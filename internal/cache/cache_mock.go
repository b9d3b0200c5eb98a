package cache

import (
	"context"

	"github.com/rs/zerolog"
)

// MockCacheManager is a mock implementation of Updater for testing
type MockCacheManager struct {
	UpdateDesktopDatabaseFunc func(ctx context.Context, appsDir string, log *zerolog.Logger) error
}

// UpdateDesktopDatabase implements Updater.UpdateDesktopDatabase
func (m *MockCacheManager) UpdateDesktopDatabase(ctx context.Context, appsDir string, log *zerolog.Logger) error {
	if m.UpdateDesktopDatabaseFunc != nil {
		return m.UpdateDesktopDatabaseFunc(ctx, appsDir, log)
	}
	return nil
}
