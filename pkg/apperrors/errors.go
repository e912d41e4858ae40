// Package apperrors holds structured, code-carrying error types: a
// struct implementing error for each failure category, rather than a
// sentinel string.
package apperrors

import (
	"fmt"

	"golang.org/x/xerrors"
)

// ConfigurationError marks an unparseable file or fundamentally
// conflicting config sources; fatal to the current command.
type ConfigurationError struct {
	Path    string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Path, e.Message)
}

// TagValidationError reports a malformed tag reference string.
type TagValidationError struct {
	Tag     string
	Message string
}

func (e *TagValidationError) Error() string {
	return fmt.Sprintf("invalid tag %q: %s", e.Tag, e.Message)
}

// TagError wraps a daemon-reported failure to apply a single tag.
type TagError struct {
	Tag string
	Err error
}

func (e *TagError) Error() string { return fmt.Sprintf("tagging %q: %v", e.Tag, e.Err) }
func (e *TagError) Unwrap() error { return e.Err }

// PushError wraps a daemon-reported push failure.
type PushError struct {
	Tag string
	Err error
}

func (e *PushError) Error() string { return fmt.Sprintf("pushing %q: %v", e.Tag, e.Err) }
func (e *PushError) Unwrap() error { return e.Err }

// AuthenticationError reports a registry auth failure.
type AuthenticationError struct {
	Registry string
	Message  string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for %s: %s", e.Registry, e.Message)
}

// RegistryError is a catch-all for registry-operation failures not
// covered by a more specific type.
type RegistryError struct {
	Op      string
	Message string
}

func (e *RegistryError) Error() string { return fmt.Sprintf("registry %s: %s", e.Op, e.Message) }

// BuildError is the structured failure record for a failed image build.
type BuildError struct {
	Message           string
	FailedStep        int
	TotalSteps        int
	FailedInstruction string
	Suggestions       []string
	LogFile           string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed at step %d/%d (%s): %s", e.FailedStep, e.TotalSteps, e.FailedInstruction, e.Message)
}

// DaemonError wraps a transport or daemon-internal failure. It carries
// an xerrors.Frame captured by NewDaemonError, so a debug-verbosity %+v
// print still shows where the daemon call was made from.
type DaemonError struct {
	Err   error
	frame xerrors.Frame
}

// NewDaemonError wraps err and captures the caller's frame.
func NewDaemonError(err error) *DaemonError {
	return &DaemonError{Err: err, frame: xerrors.Caller(1)}
}

func (e *DaemonError) Error() string { return fmt.Sprint(e) }
func (e *DaemonError) Unwrap() error { return e.Err }

func (e *DaemonError) FormatError(p xerrors.Printer) error {
	p.Printf("daemon error: %v", e.Err)
	e.frame.Format(p)
	return nil
}

func (e *DaemonError) Format(f fmt.State, c rune) { xerrors.FormatError(e, f, c) }

// NotFoundError reports a resource lookup failure in a downstream
// collaborator (e.g. an image ID that no longer exists).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found: %s", e.Resource, e.ID) }
