package appconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided .dazelrc path. If path is empty,
// uses DefaultConfigPath. A missing file is not an error; DAZEL_* environment
// variables override file values, which override the built-in defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType(path))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	v.SetDefault("dazel_instance_name", cfg.InstanceName)
	v.SetDefault("dazel_image_name", cfg.ImageName)
	v.SetDefault("dazel_dockerfile", cfg.Dockerfile)
	v.SetDefault("dazel_repository", cfg.Repository)
	v.SetDefault("dazel_directory", cfg.Directory)
	v.SetDefault("dazel_command", cfg.Command)
	v.SetDefault("dazel_bazel_user_output_root", cfg.BazelUserOutputRoot)
	v.SetDefault("dazel_run_file", cfg.RunFile)
	v.SetDefault("dazel_docker_binary", cfg.DockerBinary)
	v.SetDefault("dazel_network", cfg.Network)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.Volumes, err = normalizeList("DAZEL_VOLUMES", v.Get("dazel_volumes")); err != nil {
		return Config{}, err
	}
	if cfg.EnvVars, err = normalizeList("DAZEL_ENV_VARS", v.Get("dazel_env_vars")); err != nil {
		return Config{}, err
	}
	if cfg.Ports, err = normalizeList("DAZEL_PORTS", v.Get("dazel_ports")); err != nil {
		return Config{}, err
	}

	if err := resolvePaths(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// configType selects the viper format for the rc file: YAML when the
// extension says so, dotenv KEY=value lines otherwise.
func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "env"
	}
}

// normalizeList coerces a raw config value into a []string. Accepts a
// comma-separated string or a native sequence of strings; anything else is a
// configuration error.
func normalizeList(key string, value any) ([]string, error) {
	switch raw := value.(type) {
	case nil:
		return nil, nil
	case string:
		return splitTrimmed(raw), nil
	case []string:
		return trimAll(raw), nil
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s %w (got element of type %T)", key, ErrInvalidListValue, item)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s %w (got %T)", key, ErrInvalidListValue, value)
	}
}

func splitTrimmed(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func trimAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// resolvePaths makes every path field absolute. Relative Dockerfile and run
// file paths are anchored at the working directory.
func resolvePaths(cfg *Config) error {
	dir, err := filepath.Abs(cfg.Directory)
	if err != nil {
		return err
	}
	cfg.Directory = dir
	cfg.Dockerfile = anchor(dir, cfg.Dockerfile)
	cfg.RunFile = anchor(dir, cfg.RunFile)
	if cfg.BazelUserOutputRoot != "" {
		root, err := filepath.Abs(cfg.BazelUserOutputRoot)
		if err != nil {
			return err
		}
		cfg.BazelUserOutputRoot = root
	}
	return nil
}

func anchor(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// WriteDefault writes the default config to the target path in YAML form.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
