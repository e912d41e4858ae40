// Package pipeline implements C9: wiring C1 through C8 into the four
// user-facing operations (build, validate, list-tools, run) without
// adding business logic of its own.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"manifestctl/pkg/apperrors"
	"manifestctl/pkg/builder"
	"manifestctl/pkg/credentials"
	"manifestctl/pkg/dockerfile"
	"manifestctl/pkg/loader"
	"manifestctl/pkg/manifest"
	"manifestctl/pkg/module"
	"manifestctl/pkg/registry"
	"manifestctl/pkg/resolver"
	"manifestctl/pkg/runner"
	"manifestctl/pkg/validator"
)

// Options carries the flags common to every operation.
type Options struct {
	Workspace     string
	ToolsDir      string
	ConnectorsDir string
	ConfigPath    string
	Env           string
	GeneratorName string
	GeneratorVer  string
}

// DiscoverResult is the shared product of C1-C3, reused by every
// downstream operation so each only runs the stages it needs.
type DiscoverResult struct {
	Modules     []module.Module
	Warnings    []loader.Warning
	Validation  validator.Result
	Credentials []module.AggregatedCredential
}

// Discover runs the loader, validator, and credential discoverer — the
// shared prefix of every pipeline operation.
func Discover(log *logrus.Entry, opts Options) (DiscoverResult, error) {
	ld := loader.New(log, loader.Options{ToolsDir: opts.ToolsDir, ConnectorsDir: opts.ConnectorsDir})
	modules, err := ld.Load(opts.Workspace)
	if err != nil {
		return DiscoverResult{}, &apperrors.ConfigurationError{Path: opts.Workspace, Message: err.Error()}
	}

	result := validator.Validate(modules)
	creds := credentials.Discover(modules)

	return DiscoverResult{
		Modules:     modules,
		Warnings:    ld.Warnings,
		Validation:  result,
		Credentials: creds,
	}, nil
}

// Validate runs C1-C3 and reports whether the workspace is buildable,
// without touching the daemon.
func Validate(log *logrus.Entry, opts Options) (DiscoverResult, error) {
	return Discover(log, opts)
}

// ListTools runs C1-C3 and projects the discovered modules into the
// shape list-tools prints.
func ListTools(log *logrus.Entry, opts Options) (DiscoverResult, error) {
	return Discover(log, opts)
}

// BuildResult is what a full build run produces.
type BuildResult struct {
	Manifest manifest.Manifest
	Artifact builder.Artifact
	Pushed   []string
	PushErrs []error
}

// BuildOptions configures a Build call beyond the shared Options.
type BuildOptions struct {
	Tags       []string
	NoCache    bool
	WorkDir    string
	LogDir     string
	Push       bool
	PushDryRun bool
	OnProgress func(builder.ProgressEvent)
}

// Build runs discover, validate (fatal on error), synthesize the
// manifest and Dockerfile, build the image, and optionally push every
// requested tag. It does not run the config resolver (C4); ResolveConfig
// is a separate call.
func Build(ctx context.Context, log *logrus.Entry, opts Options, bopts BuildOptions) (BuildResult, error) {
	disc, err := Discover(log, opts)
	if err != nil {
		return BuildResult{}, err
	}
	if !disc.Validation.Valid() {
		msgs := make([]string, 0, len(disc.Validation.Errors))
		for _, issue := range disc.Validation.Errors {
			msgs = append(msgs, fmt.Sprintf("%s: %s: %s", issue.ModulePath, issue.Field, issue.Message))
		}
		return BuildResult{}, &apperrors.ConfigurationError{Path: opts.Workspace, Message: fmt.Sprintf("%d validation error(s): %v", len(msgs), msgs)}
	}

	name := opts.GeneratorName
	if name == "" {
		name = filepath.Base(opts.Workspace)
	}

	m := manifest.Synthesize(disc.Modules, manifest.Options{
		Name:             name,
		GeneratorVersion: opts.GeneratorVer,
	})
	if errs := manifest.Validate(m); len(errs) > 0 {
		return BuildResult{}, &apperrors.ConfigurationError{Path: opts.Workspace, Message: fmt.Sprintf("manifest invalid: %v", errs)}
	}

	dfOut := dockerfile.Synthesize(m, disc.Modules, dockerfile.Options{ConfigPath: opts.ConfigPath})
	if res := dockerfile.Validate(dfOut.Dockerfile); !res.Valid {
		return BuildResult{}, &apperrors.ConfigurationError{Path: opts.Workspace, Message: fmt.Sprintf("synthesized Dockerfile invalid: %v", res.Errors)}
	}

	cli, err := builder.NewClient()
	if err != nil {
		return BuildResult{}, apperrors.NewDaemonError(err)
	}
	defer cli.Close()
	if err := builder.Ping(cli); err != nil {
		return BuildResult{}, apperrors.NewDaemonError(err)
	}

	workDir := bopts.WorkDir
	if workDir == "" {
		var derr error
		workDir, derr = os.MkdirTemp("", "manifestctl-build-")
		if derr != nil {
			return BuildResult{}, &apperrors.ConfigurationError{Path: "", Message: derr.Error()}
		}
		defer os.RemoveAll(workDir)
	}

	artifact, err := builder.Build(ctx, cli, m, dfOut, builder.Options{
		WorkDir:    workDir,
		Tags:       bopts.Tags,
		NoCache:    bopts.NoCache,
		LogDir:     bopts.LogDir,
		OnProgress: bopts.OnProgress,
	})
	if err != nil {
		return BuildResult{}, err
	}

	res := BuildResult{Manifest: m, Artifact: artifact}

	if bopts.Push {
		for _, tag := range artifact.Tags {
			perr := registry.Push(ctx, cli, tag, registry.PushOptions{DryRun: bopts.PushDryRun})
			if perr != nil {
				res.PushErrs = append(res.PushErrs, perr)
				continue
			}
			res.Pushed = append(res.Pushed, tag)
		}
	}

	return res, nil
}

// ResolveConfig runs C4 against the workspace's configuration sources.
func ResolveConfig(opts Options, env map[string]string, cliArgs []string) (resolver.Result, error) {
	return resolver.Resolve(resolver.Input{
		ConfigPath: opts.ConfigPath,
		Env:        opts.Env,
		EnvVars:    env,
		CliArgs:    cliArgs,
	})
}

// WatchResult pairs a validation pass with the configuration resolved at
// the same moment, the product of one WatchValidate tick.
type WatchResult struct {
	Discover DiscoverResult
	Config   resolver.Result
}

func validateOnce(log *logrus.Entry, opts Options, env map[string]string, cliArgs []string) (WatchResult, error) {
	disc, err := Discover(log, opts)
	if err != nil {
		return WatchResult{}, err
	}
	cfg, err := ResolveConfig(opts, env, cliArgs)
	if err != nil {
		return WatchResult{}, &apperrors.ConfigurationError{Path: opts.ConfigPath, Message: err.Error()}
	}
	return WatchResult{Discover: disc, Config: cfg}, nil
}

// watchedConfigPaths lists every file a re-resolution of opts/env/cliArgs
// could read from, following the same precedence order Resolve itself
// walks: the base config file plus every environment overlay candidate,
// whether or not that file exists yet.
func watchedConfigPaths(opts Options) []string {
	var paths []string
	if opts.ConfigPath != "" {
		paths = append(paths, opts.ConfigPath)
	}
	paths = append(paths, resolver.OverlayCandidates(opts.ConfigPath, opts.Env)...)
	return paths
}

// WatchValidate runs a validation pass once, then watches the config
// sources it read and calls onChange with a freshly computed WatchResult
// every time one of them changes, until the returned stop function is
// called. A change never mutates the previous result in place — each
// invocation gets its own independently-resolved WatchResult.
func WatchValidate(log *logrus.Entry, opts Options, env map[string]string, cliArgs []string, onChange func(WatchResult, error)) (stop func(), err error) {
	result, err := validateOnce(log, opts, env, cliArgs)
	if err != nil {
		return nil, err
	}

	w := resolver.NewWatcher(log, watchedConfigPaths(opts), func() {
		onChange(validateOnce(log, opts, env, cliArgs))
	})
	if err := w.Start(); err != nil {
		return nil, &apperrors.ConfigurationError{Path: opts.ConfigPath, Message: err.Error()}
	}

	onChange(result, nil)
	return w.Stop, nil
}

// RunOptions configures starting a previously built image (the `run`
// command).
type RunOptions struct {
	Image   string
	Ports   []string
	Host    string
	Detach  bool
	Name    string
	EnvFile string
	Rm      bool
}

// RunContainer starts opts.Image as a container via the local daemon.
// Unlike Build, it performs no discovery or synthesis — it drives the
// daemon directly, the way `docker run` itself does.
func RunContainer(ctx context.Context, ropts RunOptions, stdout io.Writer) (runner.Result, error) {
	cli, err := builder.NewClient()
	if err != nil {
		return runner.Result{}, apperrors.NewDaemonError(err)
	}
	defer cli.Close()
	if err := builder.Ping(cli); err != nil {
		return runner.Result{}, apperrors.NewDaemonError(err)
	}

	return runner.Start(ctx, cli, runner.Options{
		Image:   ropts.Image,
		Ports:   ropts.Ports,
		Host:    ropts.Host,
		Detach:  ropts.Detach,
		Name:    ropts.Name,
		EnvFile: ropts.EnvFile,
		Rm:      ropts.Rm,
	}, stdout)
}
