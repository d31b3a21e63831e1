package dockyard

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"pkt.systems/pslog"
)

// CLI implements Runtime by invoking a docker-compatible binary.
type CLI struct {
	binary string
	stdout io.Writer
	stderr io.Writer
	runCmd func(cmd *exec.Cmd) error
}

// NewCLI constructs a runtime around the given binary ("docker", "podman").
func NewCLI(binary string) *CLI {
	if strings.TrimSpace(binary) == "" {
		binary = "docker"
	}
	return &CLI{
		binary: binary,
		stdout: os.Stdout,
		stderr: os.Stderr,
		runCmd: (*exec.Cmd).Run,
	}
}

// Build builds an image from a Dockerfile, streaming build output.
func (c *CLI) Build(ctx context.Context, spec BuildSpec) error {
	args := []string{"build", "-t", spec.Tag, "-f", spec.Dockerfile, spec.ContextDir}
	pslog.Ctx(ctx).Debug("image build", "binary", c.binary, "tag", spec.Tag, "dockerfile", spec.Dockerfile)
	return c.stream(ctx, args)
}

// Pull fetches an image from its remote repository, streaming progress.
func (c *CLI) Pull(ctx context.Context, image string) error {
	pslog.Ctx(ctx).Debug("image pull", "binary", c.binary, "image", image)
	return c.stream(ctx, []string{"pull", image})
}

// ImageExists reports whether a matching image is present locally.
func (c *CLI) ImageExists(ctx context.Context, image string) (bool, error) {
	out, err := c.capture(ctx, []string{"images", "-q", image})
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// IsRunning reports whether a container with the exact name is running.
func (c *CLI) IsRunning(ctx context.Context, name string) (bool, error) {
	out, err := c.capture(ctx, []string{"ps", "--filter", "name=" + name, "--format", "{{.Names}}"})
	if err != nil {
		return false, err
	}
	for line := range strings.Lines(out) {
		if strings.TrimSpace(line) == name {
			return true, nil
		}
	}
	return false, nil
}

// Stop stops the named container, discarding output.
func (c *CLI) Stop(ctx context.Context, name string) error {
	return c.quiet(ctx, []string{"stop", name})
}

// Remove removes the named container, discarding output.
func (c *CLI) Remove(ctx context.Context, name string) error {
	return c.quiet(ctx, []string{"rm", name})
}

// Run starts a detached interactive container from the spec.
func (c *CLI) Run(ctx context.Context, spec ContainerSpec) error {
	args := []string{"run", "-id", "--name", spec.Name, "-w", spec.WorkingDir}
	for _, mount := range spec.Mounts {
		args = append(args, "-v", mount)
	}
	for _, env := range spec.Env {
		args = append(args, "-e", env)
	}
	for _, port := range spec.Ports {
		args = append(args, "-p", port)
	}
	if spec.Network != "" {
		args = append(args, "--network", spec.Network)
	}
	args = append(args, spec.Image)
	args = append(args, spec.Command...)
	pslog.Ctx(ctx).Debug("container run", "binary", c.binary, "name", spec.Name, "image", spec.Image)
	return c.stream(ctx, args)
}

// Exec runs a command inside the container with the spec's stdio attached
// and returns its exit code. The error is non-nil only when the runtime
// binary itself could not be invoked.
func (c *CLI) Exec(ctx context.Context, spec ExecSpec) (int, error) {
	args := []string{"exec", "-i"}
	if spec.TTY {
		args = append(args, "-t")
	}
	args = append(args, spec.Container)
	args = append(args, spec.Command...)

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdin = spec.Stdin
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	if err := c.runCmd(cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	}
	return 0, nil
}

// stream runs an invocation with output wired to the launcher's terminal.
func (c *CLI) stream(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	return c.wrap(c.runCmd(cmd), args)
}

// quiet runs an invocation with output discarded.
func (c *CLI) quiet(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return c.wrap(c.runCmd(cmd), args)
}

// capture runs an invocation and returns its stdout.
func (c *CLI) capture(ctx context.Context, args []string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = &out
	cmd.Stderr = io.Discard
	if err := c.wrap(c.runCmd(cmd), args); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (c *CLI) wrap(err error, args []string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Args: append([]string{c.binary}, args...), Code: exitErr.ExitCode()}
	}
	return err
}
