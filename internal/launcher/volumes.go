package launcher

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// bazelOutputMarker is the path segment bazel puts in its per-user output
// tree (e.g. ~/.cache/bazel/_bazel_alice/<hash>/...).
const bazelOutputMarker = "/_bazel"

// ResolveMounts appends the two implicit self-mounts (workspace directory
// and the parent of the real bazel-out target) to the configured volumes and
// resolves the bazel user output root. When outputRoot is empty it is
// derived from the resolved output path; the final root directory is created
// if missing.
func ResolveMounts(volumes []string, directory, outputRoot string) ([]string, string, error) {
	realDir := realpath(directory)
	realOut := filepath.Dir(realpath(filepath.Join(directory, "bazel-out")))

	mounts := slices.Clone(volumes)
	mounts = append(mounts,
		realDir+":"+realDir,
		realOut+":"+realOut,
	)

	if outputRoot == "" {
		outputRoot = deriveOutputRoot(realOut)
	}
	if outputRoot == "" {
		return nil, "", ErrNoOutputRoot
	}
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return nil, "", err
	}
	return mounts, outputRoot, nil
}

// realpath resolves path to its symlink-free absolute form, degrading to the
// absolute path when the target does not exist yet.
func realpath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	// Target missing: resolve the parent so the joined path still reflects
	// the real directory tree.
	if resolved, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(resolved, filepath.Base(abs))
	}
	return abs
}

// deriveOutputRoot reconstructs the per-user output root from the first
// "/_bazel" segment of the resolved output path, so build results land on
// the host even without explicit configuration.
func deriveOutputRoot(realOut string) string {
	i := strings.Index(realOut, bazelOutputMarker)
	if i < 0 {
		return ""
	}
	rest := realOut[i+len(bazelOutputMarker):]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		rest = rest[:j]
	}
	return realOut[:i] + bazelOutputMarker + rest
}
