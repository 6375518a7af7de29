// pkg/config/defaults.go

package config

import (
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
	"github.com/spf13/viper"
)

// Defaults holds every key so viper's AutomaticEnv can resolve NYX_* overrides for it.
var Defaults = map[string]interface{}{
	"license.path":            "",
	"license.url":             "",
	"license.sha256":          "",
	"alias.ip":                "",
	"alias.prefix":            24,
	"installer.enabled":       false,
	"installer.url":           "",
	"installer.sha256":        "",
	"installer.args":          []string{},
	"installer.timeout":       30 * time.Minute,
	"installer.preview_lines": shared.DefaultPreviewLines,
	"installer_config_dir":    shared.DefaultInstallerConfigDir,
	"config_patch.file":       shared.DefaultInstallerConfig,
	"config_patch.key":        shared.DefaultPatchKey,
	"config_patch.value":      "",
	"service":                 shared.DefaultService,
	"firewall.ports":          shared.DefaultFirewallPorts,
	"skip_firewall":           false,
	"non_interactive":         false,
	"dry_run":                 false,
	"packages":                shared.DefaultPackages,
	"selinux_mode":            shared.DefaultSELinuxMode,
	"min_os_version":          shared.DefaultMinOSVersion,
	"strict_os":               false,
	"allow_insecure_download": false,
	"require_checksum":        false,
	"policy_file":             "",
	"state_dir":               shared.NyxStateDir,
}

func setDefaults(v *viper.Viper) {
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
}
