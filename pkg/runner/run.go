// Package runner implements the `run` command: starting a previously
// built image as a container against the local Docker daemon. It is
// deliberately narrow — one container per invocation, no lifecycle
// management beyond create/start/attach.
package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"manifestctl/pkg/apperrors"
)

// Options configures a single `run` invocation.
type Options struct {
	Image   string
	Ports   []string // "hostPort:containerPort" pairs
	Host    string   // bind address for published ports, default 0.0.0.0
	Detach  bool
	Name    string
	EnvFile string
	Rm      bool
}

// Result reports the container that was started.
type Result struct {
	ContainerID string
}

// Start creates and starts a container from a previously built image,
// applying port publishing, environment, naming, and auto-remove per
// opts. When opts.Detach is false it streams the container's combined
// log output to stdout until the container exits.
func Start(ctx context.Context, cli *client.Client, opts Options, stdout io.Writer) (Result, error) {
	if opts.Image == "" {
		return Result{}, &apperrors.ConfigurationError{Path: "image", Message: "an image reference is required"}
	}

	env, err := loadEnvFile(opts.EnvFile)
	if err != nil {
		return Result{}, &apperrors.ConfigurationError{Path: opts.EnvFile, Message: err.Error()}
	}

	exposedPorts, portBindings, err := parsePorts(opts.Ports, opts.Host)
	if err != nil {
		return Result{}, &apperrors.ConfigurationError{Path: "--port", Message: err.Error()}
	}

	containerCfg := &container.Config{
		Image:        opts.Image,
		Env:          env,
		ExposedPorts: exposedPorts,
	}
	hostCfg := &container.HostConfig{
		PortBindings: portBindings,
		AutoRemove:   opts.Rm,
	}

	created, err := cli.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, opts.Name)
	if err != nil {
		return Result{}, apperrors.NewDaemonError(err)
	}

	if err := cli.ContainerStart(ctx, created.ID, types.ContainerStartOptions{}); err != nil {
		return Result{}, apperrors.NewDaemonError(err)
	}

	if !opts.Detach {
		streamLogs(ctx, cli, created.ID, stdout)
	}

	return Result{ContainerID: created.ID}, nil
}

// parsePorts turns "hostPort:containerPort" pairs into the exposed-port
// set and port-binding map ContainerCreate expects, bound to host (or
// 0.0.0.0 when unset).
func parsePorts(ports []string, host string) (nat.PortSet, nat.PortMap, error) {
	if len(ports) == 0 {
		return nil, nil, nil
	}
	if host == "" {
		host = "0.0.0.0"
	}
	specs := make([]string, 0, len(ports))
	for _, p := range ports {
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("invalid --port %q, expected hostPort:containerPort", p)
		}
		specs = append(specs, fmt.Sprintf("%s:%s:%s", host, parts[0], parts[1]))
	}
	return nat.ParsePortSpecs(specs)
}

// loadEnvFile reads KEY=VALUE lines from path, skipping blanks and '#'
// comments. An empty path means no env file was given.
func loadEnvFile(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var env []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		env = append(env, line)
	}
	return env, scanner.Err()
}

func streamLogs(ctx context.Context, cli *client.Client, containerID string, stdout io.Writer) {
	rc, err := cli.ContainerLogs(ctx, containerID, types.ContainerLogsOptions{ShowStdout: true, ShowStderr: true, Follow: true})
	if err != nil {
		return
	}
	defer rc.Close()
	io.Copy(stdout, rc)
}
