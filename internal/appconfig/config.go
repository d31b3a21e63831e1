package appconfig

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// RCFileName is the per-workspace config file looked up in DAZEL_DIRECTORY.
	RCFileName = ".dazelrc"
	// RunFileName is the default marker file recording the last provisioning.
	RunFileName = ".dazel_run"

	defaultInstanceName = "dazel"
	defaultImageName    = "dazel"
	defaultDockerfile   = "Dockerfile.dazel"
	defaultRepository   = "dazel"
	defaultCommand      = "/bazel/output/bazel"
	defaultDockerBinary = "docker"
)

// ErrInvalidListValue indicates a list-valued key holds something that is
// neither a string nor a sequence of strings.
var ErrInvalidListValue = errors.New("must be a comma-separated string or a list of strings")

// Config is the resolved launcher configuration. Field names mirror the
// DAZEL_* environment variables that override them.
type Config struct {
	InstanceName        string   `mapstructure:"dazel_instance_name" yaml:"dazel_instance_name"`
	ImageName           string   `mapstructure:"dazel_image_name" yaml:"dazel_image_name"`
	Dockerfile          string   `mapstructure:"dazel_dockerfile" yaml:"dazel_dockerfile"`
	Repository          string   `mapstructure:"dazel_repository" yaml:"dazel_repository"`
	Directory           string   `mapstructure:"dazel_directory" yaml:"dazel_directory"`
	Command             string   `mapstructure:"dazel_command" yaml:"dazel_command"`
	Volumes             []string `mapstructure:"-" yaml:"dazel_volumes"`
	BazelUserOutputRoot string   `mapstructure:"dazel_bazel_user_output_root" yaml:"dazel_bazel_user_output_root"`
	RunFile             string   `mapstructure:"dazel_run_file" yaml:"dazel_run_file"`
	DockerBinary        string   `mapstructure:"dazel_docker_binary" yaml:"dazel_docker_binary"`
	EnvVars             []string `mapstructure:"-" yaml:"dazel_env_vars"`
	Ports               []string `mapstructure:"-" yaml:"dazel_ports"`
	Network             string   `mapstructure:"dazel_network" yaml:"dazel_network"`
}

// DefaultConfig returns the built-in defaults before file and environment
// overlays are applied.
func DefaultConfig() (Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}
	return Config{
		InstanceName:        defaultInstanceName,
		ImageName:           defaultImageName,
		Dockerfile:          defaultDockerfile,
		Repository:          defaultRepository,
		Directory:           dir,
		Command:             defaultCommand,
		BazelUserOutputRoot: filepath.Join(xdg.CacheHome, "bazel"),
		RunFile:             RunFileName,
		DockerBinary:        defaultDockerBinary,
	}, nil
}

// DefaultConfigPath returns the .dazelrc path for the current invocation.
// DAZEL_RC_FILE overrides the location entirely; otherwise the file is
// looked up in DAZEL_DIRECTORY (or the working directory).
func DefaultConfigPath() (string, error) {
	if rc := os.Getenv("DAZEL_RC_FILE"); rc != "" {
		return rc, nil
	}
	dir := os.Getenv("DAZEL_DIRECTORY")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	return filepath.Join(dir, RCFileName), nil
}

// ImageRef returns the repository-qualified image reference.
func (c Config) ImageRef() string {
	if c.Repository == "" {
		return c.ImageName
	}
	return c.Repository + "/" + c.ImageName
}
