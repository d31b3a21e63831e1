package launcher

import "errors"

var (
	// ErrNoRepository indicates a pull is required but no repository is configured.
	ErrNoRepository = errors.New("no repository to pull the dazel image from")
	// ErrNoDockerfile indicates a build was requested without a Dockerfile.
	ErrNoDockerfile = errors.New("no Dockerfile to build the dazel image from")
	// ErrNoOutputRoot indicates the bazel output user root could not be determined.
	ErrNoOutputRoot = errors.New("bazel user output root is empty and could not be derived")
)
