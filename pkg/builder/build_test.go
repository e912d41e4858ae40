package builder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStreamBuildResponseTracksSteps(t *testing.T) {
	lines := []string{
		`{"stream":"Step 1/3 : FROM node:20\n"}`,
		`{"stream":"Step 2/3 : COPY . /app\n"}`,
		`{"stream":"Step 3/3 : CMD [\"node\", \"index.js\"]\n"}`,
		`{"aux":{"ID":"sha256:deadbeef"}}`,
	}
	body := strings.NewReader(strings.Join(lines, "\n"))

	var events []ProgressEvent
	imageID, total, failedStep, fail := streamBuildResponse(body, nil, func(e ProgressEvent) {
		events = append(events, e)
	})

	if fail != nil {
		t.Fatalf("unexpected failure: %v", fail)
	}
	if imageID != "sha256:deadbeef" {
		t.Fatalf("expected image id from aux message, got %q", imageID)
	}
	if total != 3 {
		t.Fatalf("expected total steps 3, got %d", total)
	}
	if failedStep != 3 {
		t.Fatalf("expected last-seen step 3, got %d", failedStep)
	}

	var sawComplete bool
	for _, e := range events {
		if e.Type == EventComplete {
			sawComplete = true
		}
	}
	if !sawComplete {
		t.Fatalf("expected a final EventComplete event, got %v", events)
	}
}

func TestStreamBuildResponseDetectsErrors(t *testing.T) {
	lines := []string{
		`{"stream":"Step 1/2 : FROM node:20\n"}`,
		`{"stream":"Step 2/2 : RUN false\n"}`,
		`{"errorDetail":{"message":"executor failed running [/bin/sh -c false]: exit code: 1"},"error":"executor failed running [/bin/sh -c false]: exit code: 1"}`,
	}
	body := strings.NewReader(strings.Join(lines, "\n"))

	imageID, _, failedStep, fail := streamBuildResponse(body, nil, nil)
	if fail == nil {
		t.Fatalf("expected a failure to be reported")
	}
	if imageID != "" {
		t.Fatalf("expected no image id on failure, got %q", imageID)
	}
	if failedStep != 2 {
		t.Fatalf("expected failure attributed to step 2, got %d", failedStep)
	}
	if fail.instruction != "RUN false" {
		t.Fatalf("expected failing instruction to be recorded, got %q", fail.instruction)
	}
}

func TestStreamBuildResponseWritesLogFile(t *testing.T) {
	lines := []string{
		`{"stream":"hello\n"}`,
		`{"status":"Pulling fs layer","id":"abc123"}`,
	}
	body := strings.NewReader(strings.Join(lines, "\n"))

	logPath := filepath.Join(t.TempDir(), "build.log")
	logFile, err := os.Create(logPath)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer logFile.Close()

	streamBuildResponse(body, logFile, nil)
	logFile.Sync()

	contents, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !strings.Contains(string(contents), "hello") {
		t.Fatalf("expected log file to contain streamed output, got %q", string(contents))
	}
}
