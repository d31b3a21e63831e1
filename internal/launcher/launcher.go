// Package launcher provisions the dazel build container and forwards Bazel
// invocations into it.
package launcher

import (
	"context"
	"errors"
	"os"
	"strings"

	"golang.org/x/term"
	"pkt.systems/dazel/internal/appconfig"
	"pkt.systems/dazel/internal/dockyard"
	"pkt.systems/pslog"
)

// containerShell keeps the detached container alive between invocations.
var containerShell = []string{"/bin/bash"}

// Launcher decides whether the build container is stale, (re)provisions it,
// and execs the configured Bazel binary inside it.
type Launcher struct {
	cfg appconfig.Config
	rt  dockyard.Runtime
}

// New validates the configuration and constructs a Launcher.
func New(cfg appconfig.Config, rt dockyard.Runtime) (*Launcher, error) {
	if rt == nil {
		return nil, errors.New("container runtime is required")
	}
	if strings.TrimSpace(cfg.InstanceName) == "" {
		return nil, errors.New("instance name is required")
	}
	if strings.TrimSpace(cfg.ImageName) == "" {
		return nil, errors.New("image name is required")
	}
	if strings.TrimSpace(cfg.Directory) == "" {
		return nil, errors.New("working directory is required")
	}
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("in-container command is required")
	}
	return &Launcher{cfg: cfg, rt: rt}, nil
}

// Run ensures a fresh container and forwards args to the in-container
// command, returning the exit code the process should exit with.
func (l *Launcher) Run(ctx context.Context, args []string) (int, error) {
	log := pslog.Ctx(ctx).With("instance", l.cfg.InstanceName)

	mounts, outputRoot, err := ResolveMounts(l.cfg.Volumes, l.cfg.Directory, l.cfg.BazelUserOutputRoot)
	if err != nil {
		return 1, err
	}

	state := l.evaluate(ctx)
	log.Debug("staleness evaluated", "state", state)
	if state != StateFresh {
		if err := l.provision(ctx, mounts); err != nil {
			return ExitCode(err), err
		}
	}

	code, err := l.forward(ctx, outputRoot, args)
	if err != nil && code < 0 {
		return 1, err
	}
	return code, err
}

// evaluate gathers the staleness inputs from the filesystem and the runtime.
// A failing container query counts as "not running", matching the behavior
// of re-provisioning whenever the runtime cannot confirm the instance.
func (l *Launcher) evaluate(ctx context.Context) State {
	var cond Condition
	if info, err := os.Stat(l.cfg.RunFile); err == nil {
		cond.MarkerExists = true
		cond.MarkerModTime = info.ModTime()
	}
	if cond.MarkerExists {
		running, err := l.rt.IsRunning(ctx, l.cfg.InstanceName)
		if err != nil {
			pslog.Ctx(ctx).Warn("container state query failed", "instance", l.cfg.InstanceName, "err", err)
		}
		cond.ContainerRunning = running && err == nil
	}
	if info, err := os.Stat(l.cfg.Dockerfile); err == nil {
		cond.DockerfileExists = true
		cond.DockerfileModTime = info.ModTime()
	}
	return Evaluate(cond)
}

// provision builds or pulls the image, replaces any previous container
// instance, and records the marker file.
func (l *Launcher) provision(ctx context.Context, mounts []string) error {
	log := pslog.Ctx(ctx).With("instance", l.cfg.InstanceName)
	image := l.cfg.ImageRef()

	if _, err := os.Stat(l.cfg.Dockerfile); err == nil {
		log.Info("building image", "image", image, "dockerfile", l.cfg.Dockerfile)
		if err := l.buildImage(ctx, image); err != nil {
			return err
		}
	} else {
		if err := l.pullImage(ctx, image); err != nil {
			return err
		}
	}

	log.Info("starting container", "image", image)
	// Cleanup of a previous instance is best effort; a genuine conflict
	// resurfaces on the run below.
	if err := l.rt.Stop(ctx, l.cfg.InstanceName); err != nil {
		log.Debug("stop skipped", "err", err)
	}
	if err := l.rt.Remove(ctx, l.cfg.InstanceName); err != nil {
		log.Debug("remove skipped", "err", err)
	}
	if err := l.rt.Run(ctx, dockyard.ContainerSpec{
		Name:       l.cfg.InstanceName,
		Image:      image,
		WorkingDir: realpath(l.cfg.Directory),
		Mounts:     mounts,
		Env:        l.cfg.EnvVars,
		Ports:      l.cfg.Ports,
		Network:    l.cfg.Network,
		Command:    containerShell,
	}); err != nil {
		return err
	}

	if err := l.writeMarker(); err != nil {
		return err
	}
	log.Info("container ready")
	return nil
}

func (l *Launcher) buildImage(ctx context.Context, image string) error {
	if _, err := os.Stat(l.cfg.Dockerfile); err != nil {
		return ErrNoDockerfile
	}
	return l.rt.Build(ctx, dockyard.BuildSpec{
		Tag:        image,
		Dockerfile: l.cfg.Dockerfile,
		ContextDir: l.cfg.Directory,
	})
}

// pullImage pulls from the configured repository. A failed pull degrades to
// success when a matching image is already present locally.
func (l *Launcher) pullImage(ctx context.Context, image string) error {
	if l.cfg.Repository == "" {
		return ErrNoRepository
	}
	log := pslog.Ctx(ctx)
	log.Info("pulling image", "image", image)
	if err := l.rt.Pull(ctx, image); err != nil {
		exists, existsErr := l.rt.ImageExists(ctx, image)
		if existsErr != nil || !exists {
			return err
		}
		log.Warn("pull failed, using local image", "image", image, "err", err)
	}
	return nil
}

// writeMarker records the staleness checkpoint for future invocations.
func (l *Launcher) writeMarker() error {
	return os.WriteFile(l.cfg.RunFile, []byte(l.cfg.InstanceName+"\n"), 0o644)
}

// forward execs the in-container command with the user's arguments and the
// output root override, stdio attached to the invoking terminal.
func (l *Launcher) forward(ctx context.Context, outputRoot string, args []string) (int, error) {
	command := make([]string, 0, len(args)+2)
	command = append(command, l.cfg.Command, "--output_user_root="+outputRoot)
	command = append(command, args...)
	return l.rt.Exec(ctx, dockyard.ExecSpec{
		Container: l.cfg.InstanceName,
		Command:   command,
		TTY:       term.IsTerminal(int(os.Stdin.Fd())),
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
	})
}

// ExitCode maps a provisioning error to the launcher's process exit code.
// External command failures propagate their own code; everything else is a
// plain failure.
func ExitCode(err error) int {
	var exitErr *dockyard.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
