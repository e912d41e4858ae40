package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/fatih/color"
	"github.com/integrii/flaggy"
	"github.com/samber/lo"

	"manifestctl/internal/humanize"
	"manifestctl/pkg/app"
	"manifestctl/pkg/builder"
	"manifestctl/pkg/config"
	"manifestctl/pkg/pipeline"
	"manifestctl/pkg/utils"
)

const defaultVersion = "unversioned"

var (
	commit  string
	version = defaultVersion
	date    string

	workspace     = "."
	toolsDir      = ""
	connectorsDir = ""
	configPath    = ""
	envName       = ""
	debuggingFlag = false
	quiet         = false
	verbose       = false

	buildTags    []string
	buildNoCache = false
	buildPush    = false
	buildDryRun  = false

	validateWatch = false

	runImage   = ""
	runPorts   []string
	runHost    = ""
	runDetach  = false
	runName    = ""
	runEnvFile = ""
	runRm      = false
)

func main() {
	updateBuildInfo()

	info := fmt.Sprintf("%s\nDate: %s\nCommit: %s\nOS: %s\nArch: %s", version, date, commit, runtime.GOOS, runtime.GOARCH)

	flaggy.SetName("manifestctl")
	flaggy.SetDescription("Build, validate, and run MCP-style tool/connector workspaces")
	flaggy.SetVersion(info)

	flaggy.String(&workspace, "w", "workspace", "Path to the workspace root")
	flaggy.String(&toolsDir, "", "tools-dir", "Override the tools/ subtree name")
	flaggy.String(&connectorsDir, "", "connectors-dir", "Override the connectors/ subtree name")
	flaggy.String(&configPath, "c", "config", "Path to the base config file")
	flaggy.String(&envName, "e", "env", "Environment name, used to pick a config overlay file")
	flaggy.Bool(&debuggingFlag, "d", "debug", "Enable debug logging")
	flaggy.Bool(&quiet, "q", "quiet", "Suppress non-error output")
	flaggy.Bool(&verbose, "v", "verbose", "Enable verbose output")

	buildCmd := flaggy.NewSubcommand("build")
	buildCmd.ShortName = "b"
	buildCmd.Description = "Synthesize the manifest/Dockerfile and build an image"
	buildCmd.StringSlice(&buildTags, "t", "tag", "Tag to apply to the built image (repeatable)")
	buildCmd.Bool(&buildNoCache, "", "no-cache", "Disable the build cache")
	buildCmd.Bool(&buildPush, "", "push", "Push every applied tag after a successful build")
	buildCmd.Bool(&buildDryRun, "", "dry-run", "Validate push credentials without pushing")
	flaggy.AttachSubcommand(buildCmd, 1)

	validateCmd := flaggy.NewSubcommand("validate")
	validateCmd.ShortName = "check"
	validateCmd.Description = "Validate the workspace's modules without building"
	validateCmd.Bool(&validateWatch, "", "watch", "Re-validate and reprint whenever a config source file changes")
	flaggy.AttachSubcommand(validateCmd, 1)

	listCmd := flaggy.NewSubcommand("list-tools")
	listCmd.ShortName = "ls"
	listCmd.Description = "List discovered tools and connectors"
	flaggy.AttachSubcommand(listCmd, 1)

	runCmd := flaggy.NewSubcommand("run")
	runCmd.ShortName = "r"
	runCmd.Description = "Start a previously built image"
	runCmd.AddPositionalValue(&runImage, "image", 1, true, "Image reference to start")
	runCmd.StringSlice(&runPorts, "p", "port", "Publish a port as hostPort:containerPort (repeatable)")
	runCmd.String(&runHost, "", "host", "Bind address for published ports (default 0.0.0.0)")
	runCmd.Bool(&runDetach, "", "detach", "Run the container in the background")
	runCmd.String(&runName, "", "name", "Assign a name to the container")
	runCmd.String(&runEnvFile, "", "env-file", "Read environment variables from a file")
	runCmd.Bool(&runRm, "", "rm", "Automatically remove the container when it exits")
	flaggy.AttachSubcommand(runCmd, 1)

	flaggy.Parse()

	appConfig, err := config.NewAppConfig("manifestctl", version, commit, date, debuggingFlag)
	if err != nil {
		log.Fatal(err.Error())
	}

	a, err := app.NewApp(appConfig)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer a.Close()

	opts := pipeline.Options{
		Workspace:     workspace,
		ToolsDir:      toolsDir,
		ConnectorsDir: connectorsDir,
		ConfigPath:    configPath,
		Env:           envName,
		GeneratorName: appConfig.Name,
		GeneratorVer:  version,
	}

	switch {
	case buildCmd.Used:
		err = runBuild(a, opts)
	case validateCmd.Used:
		err = runValidate(a, opts)
	case listCmd.Used:
		err = runListTools(a, opts)
	case runCmd.Used:
		err = runRun(a, opts)
	default:
		flaggy.ShowHelpAndExit("")
		return
	}

	if err != nil {
		if errMessage, known := a.KnownError(err); known {
			fmt.Fprintln(os.Stderr, errMessage)
			os.Exit(1)
		}
		a.Log.Error(err.Error())
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runValidate(a *app.App, opts pipeline.Options) error {
	print := func(disc pipeline.DiscoverResult) {
		for _, w := range disc.Warnings {
			if !quiet {
				fmt.Fprintf(os.Stderr, "warning: %s: %s\n", w.Path, w.Message)
			}
		}
		for _, issue := range disc.Validation.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s: %s: %s\n", issue.ModulePath, issue.Field, issue.Message)
		}
		for _, issue := range disc.Validation.Errors {
			fmt.Fprintf(os.Stderr, "error: %s: %s: %s\n", issue.ModulePath, issue.Field, issue.Message)
		}
		if !quiet && disc.Validation.Valid() {
			fmt.Printf("%d module(s) valid, %d credential(s) discovered\n", len(disc.Modules), len(disc.Credentials))
		}
	}

	if validateWatch {
		env := environAsMap()
		stop, err := pipeline.WatchValidate(a.Log, opts, env, os.Args[1:], func(res pipeline.WatchResult, err error) {
			if err != nil {
				a.Log.WithError(err).Error("re-validation failed")
				return
			}
			print(res.Discover)
		})
		if err != nil {
			return err
		}
		defer stop()
		select {} // run until the process is killed
	}

	disc, err := pipeline.Validate(a.Log, opts)
	if err != nil {
		return err
	}
	print(disc)
	if !disc.Validation.Valid() {
		os.Exit(2)
	}
	return nil
}

func environAsMap() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			env[parts[0]] = parts[1]
		}
	}
	return env
}

func runListTools(a *app.App, opts pipeline.Options) error {
	disc, err := pipeline.ListTools(a.Log, opts)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(disc.Modules)+1)
	header := make([]string, 0, 4)
	for _, h := range []string{"NAME", "KIND", "LANGUAGE", "PATH"} {
		header = append(header, utils.MultiColoredString(h, color.FgCyan, color.Bold))
	}
	rows = append(rows, header)
	for _, m := range disc.Modules {
		rows = append(rows, []string{m.Name, string(m.Kind), string(m.Language), m.Path})
	}
	table, err := utils.RenderTable(rows)
	if err != nil {
		return err
	}
	fmt.Println(table)
	return nil
}

func runBuild(a *app.App, opts pipeline.Options) error {
	ctx := context.Background()

	onProgress := func(evt builder.ProgressEvent) {
		if quiet {
			return
		}
		switch evt.Type {
		case builder.EventStep:
			fmt.Printf("%s\n", utils.ColoredString(fmt.Sprintf("[%d/%d] %s", evt.Step, evt.TotalSteps, evt.Instruction), color.FgCyan))
		case builder.EventError:
			fmt.Fprintf(os.Stderr, "%s\n", utils.ColoredString(evt.Message, color.FgRed))
		case builder.EventDownload:
			if verbose {
				fmt.Printf("%s\n", evt.Message)
			}
		}
	}

	res, err := pipeline.Build(ctx, a.Log, opts, pipeline.BuildOptions{
		Tags:       buildTags,
		NoCache:    buildNoCache,
		Push:       buildPush,
		PushDryRun: buildDryRun,
		OnProgress: onProgress,
	})
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("built %s (%s, %.1fs)\n", res.Artifact.ImageID, humanize.Bytes(res.Artifact.ImageSize), res.Artifact.BuildTime)
		for _, tag := range res.Pushed {
			fmt.Printf("pushed %s\n", tag)
		}
		for _, perr := range res.PushErrs {
			fmt.Fprintf(os.Stderr, "push failed: %s\n", perr)
		}
		if verbose {
			if manifestYaml, yerr := utils.MarshalIntoYaml(res.Manifest); yerr == nil {
				fmt.Println(utils.ColoredYamlString(string(manifestYaml)))
			}
		}
	}
	return nil
}

func runRun(a *app.App, opts pipeline.Options) error {
	res, err := pipeline.RunContainer(context.Background(), pipeline.RunOptions{
		Image:   runImage,
		Ports:   runPorts,
		Host:    runHost,
		Detach:  runDetach,
		Name:    runName,
		EnvFile: runEnvFile,
		Rm:      runRm,
	}, os.Stdout)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("started %s\n", res.ContainerID)
	}
	return nil
}

func updateBuildInfo() {
	if version == defaultVersion {
		if buildInfo, ok := debug.ReadBuildInfo(); ok {
			revision, ok := lo.Find(buildInfo.Settings, func(setting debug.BuildSetting) bool {
				return setting.Key == "vcs.revision"
			})
			if ok {
				commit = revision.Value
				version = utils.SafeTruncate(revision.Value, 7)
			}

			t, ok := lo.Find(buildInfo.Settings, func(setting debug.BuildSetting) bool {
				return setting.Key == "vcs.time"
			})
			if ok {
				date = t.Value
			}
		}
	}
}
