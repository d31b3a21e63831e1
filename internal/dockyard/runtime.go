// Package dockyard drives a container runtime CLI (docker, podman) through
// structured argv invocations. It never interpolates values into a shell
// line.
package dockyard

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Runtime manages the build container's lifecycle.
type Runtime interface {
	Build(ctx context.Context, spec BuildSpec) error
	Pull(ctx context.Context, image string) error
	ImageExists(ctx context.Context, image string) (bool, error)
	IsRunning(ctx context.Context, name string) (bool, error)
	Stop(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
	Run(ctx context.Context, spec ContainerSpec) error
	Exec(ctx context.Context, spec ExecSpec) (int, error)
}

// BuildSpec describes a local image build.
type BuildSpec struct {
	Tag        string
	Dockerfile string
	ContextDir string
}

// ContainerSpec describes a detached container to run.
type ContainerSpec struct {
	Name       string
	Image      string
	WorkingDir string
	Mounts     []string
	Env        []string
	Ports      []string
	Network    string
	Command    []string
}

// ExecSpec describes a command execution inside a running container.
type ExecSpec struct {
	Container string
	Command   []string
	TTY       bool
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
}

// ExitError reports a runtime CLI invocation that exited non-zero.
type ExitError struct {
	Args []string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", strings.Join(e.Args, " "), e.Code)
}
