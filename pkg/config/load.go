// pkg/config/load.go

package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/nyx_err"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/nyx/pkg/verify"
	cerr "github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed schema.cue
var schemaSource string

// LoadOptions selects the explicit config and env files, if any.
type LoadOptions struct {
	ConfigFile string // --config; empty searches the standard locations
	EnvFile    string // defaults to ./.env
}

// OptionsFromFlags reads --config and --env-file when the command carries them.
func OptionsFromFlags(cmd *cobra.Command) LoadOptions {
	var opts LoadOptions
	if cmd == nil {
		return opts
	}
	if f := cmd.Flags().Lookup("config"); f != nil {
		opts.ConfigFile = f.Value.String()
	}
	if f := cmd.Flags().Lookup("env-file"); f != nil {
		opts.EnvFile = f.Value.String()
	}
	return opts
}

// Load resolves the configuration. Precedence: flags > NYX_* env > config file > defaults.
func Load(cmd *cobra.Command, opts LoadOptions) (*Config, string, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, "", err
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(shared.NyxConfigName)
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, "", nyx_err.NewValidationError(
				"failed to read config file: "+err.Error(),
				"Check that the file exists and is valid YAML",
			)
		}
	}

	used := v.ConfigFileUsed()
	if used != "" {
		if err := ValidateFile(used); err != nil {
			return nil, used, err
		}
	}

	cli.SetViperEnvPrefix(v, shared.NyxEnvPrefix)

	if cmd != nil {
		if err := cli.BindFlagsToViper(cmd, v); err != nil {
			return nil, used, cerr.Wrap(err, "bind flags")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, used, nyx_err.NewValidationError("failed to decode configuration: " + err.Error())
	}

	if err := Validate(&c); err != nil {
		return nil, used, err
	}
	return &c, used, nil
}

// ValidateFile checks a YAML config file against the embedded CUE schema.
func ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nyx_err.NewFilesystemError("failed to read config file "+path, err)
	}
	if err := verify.ValidateYAMLWithCUE(schemaSource, "#Config", filepath.Base(path), data); err != nil {
		return nyx_err.NewValidationError(
			"config file "+path+" does not match the schema: "+err.Error(),
			"Remove unknown keys and check value types",
		)
	}
	return nil
}

// Validate checks struct-level constraints on a resolved config.
func Validate(c *Config) error {
	if err := verify.Struct(c); err != nil {
		return nyx_err.NewValidationError("invalid configuration: " + err.Error())
	}
	return nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nyx_err.NewFilesystemError("env file not found: "+path, err)
		}
		return nil
	}
	// godotenv.Load never overrides variables already present in the environment.
	if err := godotenv.Load(path); err != nil {
		return nyx_err.NewValidationError("failed to parse env file " + path + ": " + err.Error())
	}
	return nil
}

func searchPaths() []string {
	paths := []string{shared.NyxConfigDir}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, shared.NyxID))
	}
	return append(paths, ".")
}
