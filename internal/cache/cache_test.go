package cache

import (
	"context"
	"testing"

	"github.com/quantmind-br/pacfront/internal/helpers"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

var _ Updater = (*CacheManager)(nil)
var _ Updater = (*MockCacheManager)(nil)

func TestNewCacheManager(t *testing.T) {
	cm := NewCacheManager()
	assert.NotNil(t, cm)
	assert.IsType(t, &helpers.OSCommandRunner{}, cm.runner)
}

func TestNewCacheManagerWithRunner(t *testing.T) {
	mockRunner := &helpers.MockCommandRunner{}
	cm := NewCacheManagerWithRunner(mockRunner)
	assert.NotNil(t, cm)
	assert.Equal(t, mockRunner, cm.runner)
}

func TestUpdateDesktopDatabase(t *testing.T) {
	mockRunner := &helpers.MockCommandRunner{}
	cm := NewCacheManagerWithRunner(mockRunner)
	log := zerolog.Nop()
	ctx := context.Background()

	// Tool missing: nothing runs
	ran := false
	mockRunner.CommandExistsFunc = func(_ string) bool {
		return false
	}
	mockRunner.RunCommandFunc = func(_ context.Context, _ string, _ ...string) (string, error) {
		ran = true
		return "", nil
	}
	assert.NoError(t, cm.UpdateDesktopDatabase(ctx, "/home/user/.local/share/applications", &log))
	assert.False(t, ran)

	// Tool present
	var gotName string
	var gotArgs []string
	mockRunner.CommandExistsFunc = func(name string) bool {
		return name == updateDesktopDatabaseCmd
	}
	mockRunner.RunCommandFunc = func(ctx context.Context, name string, args ...string) (string, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		gotName, gotArgs = name, args
		return "", nil
	}
	assert.NoError(t, cm.UpdateDesktopDatabase(ctx, "/home/user/.local/share/applications", &log))
	assert.Equal(t, updateDesktopDatabaseCmd, gotName)
	assert.Equal(t, []string{"/home/user/.local/share/applications"}, gotArgs)

	// System directory goes through sudo
	assert.NoError(t, cm.UpdateDesktopDatabase(ctx, "/usr/share/applications", &log))
	assert.Equal(t, "sudo", gotName)
	assert.Equal(t, []string{updateDesktopDatabaseCmd, "/usr/share/applications"}, gotArgs)

	// Failure is non-fatal
	mockRunner.RunCommandFunc = func(_ context.Context, _ string, _ ...string) (string, error) {
		return "", assert.AnError
	}
	assert.NoError(t, cm.UpdateDesktopDatabase(ctx, "/tmp/apps", &log))
}

func TestNeedsSudo(t *testing.T) {
	assert.True(t, needsSudo("/usr/share/applications"))
	assert.True(t, needsSudo("/opt/myapp"))
	assert.True(t, needsSudo("/var/lib/apps"))
	assert.True(t, needsSudo("/etc/xdg"))

	assert.False(t, needsSudo("/home/user/.local/share/applications"))
	assert.False(t, needsSudo("/tmp/apps"))
	assert.False(t, needsSudo("/usrlocal"))
}
