// Package builder implements C7: turning a synthesized manifest and
// Dockerfile into a built, tagged image via the local Docker daemon.
package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"manifestctl/pkg/apperrors"
	"manifestctl/pkg/dockerfile"
	"manifestctl/pkg/manifest"
)

var stepRE = regexp.MustCompile(`^Step (\d+)/(\d+) : (.*)$`)

// jsonMessage is one line of the daemon's line-delimited build response,
// covering the fields spread across plain stream lines, pull-progress
// lines, and the final aux/error lines.
type jsonMessage struct {
	Stream         string `json:"stream"`
	Status         string `json:"status"`
	ID             string `json:"id"`
	Error          string `json:"error"`
	ErrorDetail    *struct {
		Message string `json:"message"`
	} `json:"errorDetail"`
	ProgressDetail *struct {
		Current int64 `json:"current"`
		Total   int64 `json:"total"`
	} `json:"progressDetail"`
	Aux *struct {
		ID string `json:"ID"`
	} `json:"aux"`
}

// Build writes the Dockerfile/.dockerignore/manifest.json into
// opts.WorkDir, tars it as the build context, and streams the result
// of a daemon ImageBuild call through opts.OnProgress. On failure it
// returns an *apperrors.BuildError carrying the failing step and
// suggestions; on success it returns a populated Artifact.
func Build(ctx context.Context, cli *client.Client, m manifest.Manifest, dfOut dockerfile.Output, opts Options) (Artifact, error) {
	start := time.Now()
	buildID := uuid.New().String()
	log := logrus.WithFields(logrus.Fields{"component": "builder", "buildID": buildID})

	if opts.WorkDir == "" {
		return Artifact{}, &apperrors.ConfigurationError{Path: "", Message: "build work directory not set"}
	}
	if err := writeBuildContext(opts.WorkDir, m, dfOut); err != nil {
		return Artifact{}, &apperrors.ConfigurationError{Path: opts.WorkDir, Message: err.Error()}
	}

	// The Dockerfile and .dockerignore appear in the ignore list but are
	// still sent: the daemon reads the Dockerfile from the context.
	var ignore []string
	for _, p := range strings.Split(strings.TrimSpace(dfOut.Dockerignore), "\n") {
		if p != "Dockerfile" && p != ".dockerignore" {
			ignore = append(ignore, p)
		}
	}
	tarCtx, err := buildContextTar(opts.WorkDir, ignore)
	if err != nil {
		return Artifact{}, &apperrors.BuildError{Message: "failed to assemble build context: " + err.Error()}
	}

	buildArgs := make(map[string]*string, len(opts.BuildArgs))
	for k, v := range opts.BuildArgs {
		val := v
		buildArgs[k] = &val
	}

	resp, err := cli.ImageBuild(ctx, tarCtx, types.ImageBuildOptions{
		Tags:       opts.Tags,
		Dockerfile: "Dockerfile",
		BuildArgs:  buildArgs,
		NoCache:    opts.NoCache,
		Remove:     true,
	})
	if err != nil {
		return Artifact{}, apperrors.NewDaemonError(err)
	}
	defer resp.Body.Close()

	var logFile *os.File
	var logPath string
	if opts.LogDir != "" {
		logPath = filepath.Join(opts.LogDir, "build.log")
		logFile, err = os.Create(logPath)
		if err != nil {
			log.WithError(err).Warn("could not open build log file")
			logFile = nil
			logPath = ""
		} else {
			defer logFile.Close()
		}
	}

	imageID, totalSteps, failedStep, failErr := streamBuildResponse(resp.Body, logFile, opts.OnProgress)
	if failErr != nil {
		return Artifact{}, &apperrors.BuildError{
			Message:           failErr.Error(),
			FailedStep:        failedStep,
			TotalSteps:        totalSteps,
			FailedInstruction: failErr.instruction,
			Suggestions:       suggestFor(failErr.Error()),
			LogFile:           logPath,
		}
	}
	if imageID == "" {
		return Artifact{}, &apperrors.BuildError{
			Message:     "daemon reported success but no image ID was emitted",
			TotalSteps:  totalSteps,
			Suggestions: []string{"retry the build", "check the daemon's own logs for anomalies"},
			LogFile:     logPath,
		}
	}

	size := inspectImageSize(ctx, cli, imageID)

	return Artifact{
		BuildID:   buildID,
		ImageID:   imageID,
		Tags:      opts.Tags,
		BuildTime: time.Since(start).Seconds(),
		ImageSize: size,
		LogFile:   logPath,
	}, nil
}

type buildFailure struct {
	message     string
	instruction string
}

func (f *buildFailure) Error() string { return f.message }

// streamBuildResponse decodes the daemon's line-delimited JSON stream,
// classifying and forwarding each message via onProgress and appending
// the text of every stream, status and error line (ANSI-stripped) to
// logFile in the order received.
func streamBuildResponse(body io.Reader, logFile *os.File, onProgress func(ProgressEvent)) (imageID string, totalSteps, failedStep int, fail *buildFailure) {
	dec := json.NewDecoder(body)
	lastInstruction := ""

	for {
		var msg jsonMessage
		if err := dec.Decode(&msg); err != nil {
			if err == io.EOF {
				break
			}
			break
		}

		if logFile != nil {
			raw := msg.Stream
			if raw == "" {
				raw = msg.Status
			}
			if raw == "" {
				raw = msg.Error
			}
			if raw != "" {
				fmt.Fprint(logFile, stripansi.Strip(raw))
				if !strings.HasSuffix(raw, "\n") {
					fmt.Fprintln(logFile)
				}
			}
		}

		switch {
		case msg.Error != "":
			message := msg.Error
			if msg.ErrorDetail != nil && msg.ErrorDetail.Message != "" {
				message = msg.ErrorDetail.Message
			}
			if onProgress != nil {
				onProgress(ProgressEvent{Type: EventError, Message: message, Step: failedStep, TotalSteps: totalSteps, Instruction: lastInstruction})
			}
			fail = &buildFailure{message: message, instruction: lastInstruction}
			return "", totalSteps, failedStep, fail

		case msg.Aux != nil && msg.Aux.ID != "":
			imageID = msg.Aux.ID

		case stepRE.MatchString(strings.TrimSpace(msg.Stream)):
			groups := stepRE.FindStringSubmatch(strings.TrimSpace(msg.Stream))
			step, _ := strconv.Atoi(groups[1])
			total, _ := strconv.Atoi(groups[2])
			totalSteps = total
			failedStep = step
			lastInstruction = groups[3]
			if onProgress != nil {
				onProgress(ProgressEvent{Type: EventStep, Message: msg.Stream, Step: step, TotalSteps: total, Instruction: lastInstruction})
			}

		case strings.Contains(msg.Stream, "Successfully built "):
			parts := strings.Fields(msg.Stream)
			if len(parts) > 0 {
				imageID = parts[len(parts)-1]
			}

		case msg.Status != "":
			evt := ProgressEvent{Type: EventDownload, Message: msg.Status, Instruction: msg.ID}
			if msg.ProgressDetail != nil {
				evt.Current = msg.ProgressDetail.Current
				evt.Total = msg.ProgressDetail.Total
			}
			if onProgress != nil {
				onProgress(evt)
			}

		case msg.Stream != "":
			if onProgress != nil {
				onProgress(ProgressEvent{Type: EventLog, Message: msg.Stream})
			}
		}
	}

	if onProgress != nil {
		onProgress(ProgressEvent{Type: EventComplete, Message: imageID, Step: totalSteps, TotalSteps: totalSteps})
	}
	return imageID, totalSteps, failedStep, nil
}

func writeBuildContext(workDir string, m manifest.Manifest, dfOut dockerfile.Output) error {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(workDir, "Dockerfile"), []byte(dfOut.Dockerfile), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(workDir, ".dockerignore"), []byte(dfOut.Dockerignore), 0o644); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(workDir, "manifest.json"), buf.Bytes(), 0o644)
}

func inspectImageSize(ctx context.Context, cli *client.Client, imageID string) int64 {
	info, _, err := cli.ImageInspectWithRaw(ctx, imageID)
	if err != nil {
		return 0
	}
	return info.Size
}
