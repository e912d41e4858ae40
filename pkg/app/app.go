// Package app is the composition root: it bootstraps logging and the
// OS command runner, then hands off to pkg/pipeline for the actual
// build/validate/list-tools/run operations.
package app

import (
	"io"
	"strings"

	"github.com/docker/docker/client"
	"github.com/sirupsen/logrus"

	"manifestctl/pkg/commands"
	"manifestctl/pkg/config"
	"manifestctl/pkg/log"
)

// App struct
type App struct {
	closers []io.Closer

	Config    *config.AppConfig
	Log       *logrus.Entry
	OSCommand *commands.OSCommand
}

// NewApp bootstraps a new application.
func NewApp(cfg *config.AppConfig) (*App, error) {
	app := &App{
		closers: []io.Closer{},
		Config:  cfg,
	}
	app.Log = log.NewLogger(cfg)
	app.OSCommand = commands.NewOSCommand(app.Log)
	return app, nil
}

// Close closes any resources.
func (app *App) Close() error {
	for _, closer := range app.closers {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	return nil
}

type errorMapping struct {
	originalError string
	newError      string
}

// KnownError takes an error and tells us whether it's an error we know
// about where we can print a nicely formatted version of it rather than
// a stack trace.
func (app *App) KnownError(err error) (string, bool) {
	if client.IsErrConnectionFailed(err) {
		return "could not connect to the Docker daemon; is it running?", true
	}

	errorMessage := err.Error()
	mappings := []errorMapping{
		{
			originalError: "Got permission denied while trying to connect to the Docker daemon socket",
			newError:      "permission denied connecting to the Docker daemon socket; try running with sufficient privileges or adding your user to the docker group",
		},
	}

	for _, mapping := range mappings {
		if strings.Contains(errorMessage, mapping.originalError) {
			return mapping.newError, true
		}
	}

	return "", false
}
