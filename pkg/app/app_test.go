package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"manifestctl/pkg/config"
)

func newTestAppConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	cfg, err := config.NewAppConfig("manifestctl", "test-version", "test-commit", "test-date", false)
	assert.Nil(t, err)
	return cfg
}

func TestNewAppInitializesFields(t *testing.T) {
	app, err := NewApp(newTestAppConfig(t))
	assert.Nil(t, err)
	assert.NotNil(t, app.Config)
	assert.NotNil(t, app.Log)
	assert.NotNil(t, app.OSCommand)
}

// mockError is a simple error implementation for testing.
type mockError struct{ message string }

func (e *mockError) Error() string { return e.message }

func TestAppKnownErrorHandling(t *testing.T) {
	app, err := NewApp(newTestAppConfig(t))
	assert.Nil(t, err)

	text, known := app.KnownError(&mockError{message: "Got permission denied while trying to connect to the Docker daemon socket"})
	assert.True(t, known)
	assert.NotEmpty(t, text)

	text, known = app.KnownError(&mockError{message: "some unknown error message"})
	assert.False(t, known)
	assert.Empty(t, text)
}

func TestAppClose(t *testing.T) {
	app, err := NewApp(newTestAppConfig(t))
	assert.Nil(t, err)
	assert.Nil(t, app.Close())
}
