package commands

import (
	"os/exec"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestOSCommand() *OSCommand {
	return NewOSCommand(logrus.NewEntry(logrus.New()))
}

func TestFileExists(t *testing.T) {
	c := newTestOSCommand()

	dir := t.TempDir()
	exists, err := c.FileExists(dir + "/nope")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if exists {
		t.Fatalf("expected missing file to report false")
	}

	path, err := c.CreateTempFile("manifestctl-test", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer c.Remove(path)

	exists, err = c.FileExists(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !exists {
		t.Fatalf("expected created temp file to exist")
	}
}

func TestFileType(t *testing.T) {
	c := newTestOSCommand()
	dir := t.TempDir()

	if c.FileType(dir) != "directory" {
		t.Fatalf("expected directory")
	}

	path, err := c.CreateTempFile("manifestctl-test", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer c.Remove(path)

	if c.FileType(path) != "file" {
		t.Fatalf("expected file")
	}

	if c.FileType(dir+"/does-not-exist") != "other" {
		t.Fatalf("expected other for missing path")
	}
}

func TestRunCommandWithOutput(t *testing.T) {
	c := newTestOSCommand()
	c.SetCommand(func(name string, args ...string) *exec.Cmd {
		return exec.Command(name, args...)
	})

	out, err := c.RunCommandWithOutput("echo hello")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if out != "hello\n" {
		t.Fatalf("expected 'hello\\n', got %q", out)
	}
}
