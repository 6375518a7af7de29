// pkg/cli/cli.go
//
// Flag helpers shared by nyx commands. Flags carry the config key they feed
// as a pflag annotation, so one BindFlagsToViper call wires every flag of a
// command into the viper key tree that pkg/config unmarshals.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigKeyAnnotation names the viper key a flag is bound to.
const ConfigKeyAnnotation = "nyx_config_key"

// UnboundKey is the annotation value of flags BindFlagsToViper skips.
const UnboundKey = "-"

// AddStringFlag adds a string flag bound to key.
func AddStringFlag(cmd *cobra.Command, name, shorthand, def, help, key string) {
	cmd.Flags().StringP(name, shorthand, def, help)
	annotate(cmd, name, key)
}

// AddBoolFlag adds a boolean flag bound to key.
func AddBoolFlag(cmd *cobra.Command, name, shorthand string, def bool, help, key string) {
	cmd.Flags().BoolP(name, shorthand, def, help)
	annotate(cmd, name, key)
}

// AddIntFlag adds an int flag bound to key.
func AddIntFlag(cmd *cobra.Command, name, shorthand string, def int, help, key string) {
	cmd.Flags().IntP(name, shorthand, def, help)
	annotate(cmd, name, key)
}

// AddStringSliceFlag adds a string slice flag bound to key.
func AddStringSliceFlag(cmd *cobra.Command, name, shorthand string, def []string, help, key string) {
	cmd.Flags().StringSliceP(name, shorthand, def, help)
	annotate(cmd, name, key)
}

// AddDurationFlag adds a duration flag bound to key.
func AddDurationFlag(cmd *cobra.Command, name, shorthand string, def time.Duration, help, key string) {
	cmd.Flags().DurationP(name, shorthand, def, help)
	annotate(cmd, name, key)
}

// Unbound marks a flag that must never feed a config key.
func Unbound(flags *pflag.FlagSet, name string) {
	_ = flags.SetAnnotation(name, ConfigKeyAnnotation, []string{UnboundKey})
}

func annotate(cmd *cobra.Command, name, key string) {
	if key == "" {
		return
	}
	if err := cmd.Flags().SetAnnotation(name, ConfigKeyAnnotation, []string{key}); err != nil {
		// Only fails when the flag does not exist, which is a programming error.
		fmt.Fprintf(os.Stderr, "warning: failed to annotate flag %s: %v\n", name, err)
	}
}

// KeyFor returns the viper key a flag feeds: its annotation, or the flag
// name with dashes replaced by underscores.
func KeyFor(f *pflag.Flag) string {
	if keys, ok := f.Annotations[ConfigKeyAnnotation]; ok && len(keys) > 0 {
		return keys[0]
	}
	return strings.ReplaceAll(f.Name, "-", "_")
}

// BindFlagsToViper binds all flags on a command to a Viper instance.
// Only flags set on the command line override lower-precedence sources.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || KeyFor(f) == UnboundKey {
			return
		}
		if err := v.BindPFlag(KeyFor(f), f); err != nil {
			result = multierror.Append(result, fmt.Errorf("bind --%s: %w", f.Name, err))
		}
	})
	return result
}

// SetViperEnvPrefix lets Viper read env with prefix, mapping "a.b-c" to PREFIX_A_B_C.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}
