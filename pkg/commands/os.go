// Package commands holds thin OS-process helpers shared across the
// tool. Docker-specific command construction lives in pkg/builder and
// pkg/registry instead.
package commands

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/go-errors/errors"
	"github.com/mgutz/str"
	"github.com/sirupsen/logrus"
)

// OSCommand holds all the OS commands this tool shells out for, namely
// launching the user's editor.
type OSCommand struct {
	Log     *logrus.Entry
	command func(string, ...string) *exec.Cmd
	getenv  func(string) string
}

// NewOSCommand builds an OS command runner.
func NewOSCommand(log *logrus.Entry) *OSCommand {
	return &OSCommand{
		Log:     log,
		command: exec.Command,
		getenv:  os.Getenv,
	}
}

// SetCommand overrides the command function used by the struct, for
// testing only.
func (c *OSCommand) SetCommand(cmd func(string, ...string) *exec.Cmd) {
	c.command = cmd
}

// RunCommandWithOutput runs a shell command string and returns its
// sanitised output.
func (c *OSCommand) RunCommandWithOutput(command string) (string, error) {
	cmd := c.ExecutableFromString(command)
	before := time.Now()
	output, err := sanitisedCommandOutput(cmd.Output())
	c.Log.Debug(fmt.Sprintf("'%s': %s", command, time.Since(before)))
	return output, err
}

// RunCommand runs a shell command string and returns just the error.
func (c *OSCommand) RunCommand(command string) error {
	_, err := c.RunCommandWithOutput(command)
	return err
}

// ExecutableFromString takes a string like `vi config.yml` and returns
// an executable command for it.
func (c *OSCommand) ExecutableFromString(commandStr string) *exec.Cmd {
	splitCmd := str.ToArgv(commandStr)
	return c.NewCmd(splitCmd[0], splitCmd[1:]...)
}

func (c *OSCommand) NewCmd(cmdName string, commandArgs ...string) *exec.Cmd {
	cmd := c.command(cmdName, commandArgs...)
	cmd.Env = os.Environ()
	return cmd
}

func sanitisedCommandOutput(output []byte, err error) (string, error) {
	outputString := string(output)
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return outputString, errors.New(string(exitError.Stderr))
		}
		return "", WrapError(err)
	}
	return outputString, nil
}

// FileType tells us if the file is a file, directory, or neither.
func (c *OSCommand) FileType(path string) string {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return "other"
	}
	if fileInfo.IsDir() {
		return "directory"
	}
	return "file"
}

// FileExists checks whether a file exists at the specified path.
func (c *OSCommand) FileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateTempFile writes a string to a new temp file and returns its name.
func (c *OSCommand) CreateTempFile(filename, content string) (string, error) {
	tmpfile, err := os.CreateTemp("", filename)
	if err != nil {
		return "", WrapError(err)
	}
	if _, err := tmpfile.WriteString(content); err != nil {
		return "", WrapError(err)
	}
	if err := tmpfile.Close(); err != nil {
		return "", WrapError(err)
	}
	return tmpfile.Name(), nil
}

// Remove removes a file or directory at the specified path.
func (c *OSCommand) Remove(filename string) error {
	return WrapError(os.RemoveAll(filename))
}

// EditFile opens a file in a subprocess using whatever editor is
// available, falling back to $VISUAL, $EDITOR, then vi.
func (c *OSCommand) EditFile(filename string) (*exec.Cmd, error) {
	editor := c.getenv("VISUAL")
	if editor == "" {
		editor = c.getenv("EDITOR")
	}
	if editor == "" {
		if err := c.RunCommand("which vi"); err == nil {
			editor = "vi"
		}
	}
	if editor == "" {
		return nil, errors.New("no editor defined in $VISUAL or $EDITOR")
	}
	return c.NewCmd(editor, filename), nil
}
