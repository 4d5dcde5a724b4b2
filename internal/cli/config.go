package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/alnah/go-cuesplit/internal/config"
	"github.com/alnah/go-cuesplit/internal/cuesheet"
)

// ConfigCmd creates the config command with subcommands.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-cuesplit/config. Every key can
also be provided through an environment variable; a value set in the
file wins.

Supported settings:
  output-dir    Default parent directory for split tracks (env: CUESPLIT_OUTPUT_DIR)
  format        Default output extension, e.g. flac (env: CUESPLIT_FORMAT)
  ffmpeg-path   ffmpeg binary or directory holding it (env: CUESPLIT_FFMPEG_PATH)
  charset       Default sheet encoding, e.g. cp1252 (env: CUESPLIT_CHARSET)`,
		Example: `  cuesplit config set output-dir ~/Music/split
  cuesplit config set charset cp1252
  cuesplit config get format
  cuesplit config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value after checking it.

output-dir is created when missing and must be writable, ffmpeg-path
must exist, charset must name a known encoding and format must be a
short alphanumeric extension.`,
		Example: `  cuesplit config set output-dir ~/Music/split
  cuesplit config set ffmpeg-path /opt/ffmpeg/bin`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  cuesplit config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable overrides.`,
		Example: `  cuesplit config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

func runConfigSet(env *Env, key, value string) error {
	if !config.IsKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, config.Keys())
	}

	value, err := checkConfigValue(key, value)
	if err != nil {
		return err
	}
	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// checkConfigValue validates value for key and returns the form to store.
func checkConfigValue(key, value string) (string, error) {
	switch key {
	case config.KeyOutputDir:
		expanded := config.ExpandPath(value)
		if err := config.EnsureOutputDir(expanded); err != nil {
			return "", fmt.Errorf("%w: output-dir: %v", ErrInvalidConfigValue, err)
		}
		return expanded, nil
	case config.KeyFormat:
		value = strings.TrimPrefix(strings.ToLower(value), ".")
		if err := validator.New().Var(value, "required,alphanum,max=10"); err != nil {
			return "", fmt.Errorf("%w: format %q is not a file extension", ErrInvalidConfigValue, value)
		}
		return value, nil
	case config.KeyFFmpegPath:
		expanded := config.ExpandPath(value)
		if _, err := os.Stat(expanded); err != nil {
			return "", fmt.Errorf("%w: ffmpeg-path %q does not exist", ErrInvalidConfigValue, value)
		}
		return expanded, nil
	case config.KeyCharset:
		if !cuesheet.ValidCharset(value) {
			return "", fmt.Errorf("%w: unknown charset %q", ErrInvalidConfigValue, value)
		}
		return value, nil
	}
	return value, nil
}

func runConfigGet(env *Env, key string) error {
	if !config.IsKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %v)", key, config.Keys())
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value, _ = env.LookupEnv(config.EnvName(key))
	}
	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	for _, key := range config.Keys() {
		if _, ok := data[key]; ok {
			continue
		}
		if v, ok := env.LookupEnv(config.EnvName(key)); ok && v != "" {
			data[key] = v + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys() {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, data[key])
	}
	return nil
}
