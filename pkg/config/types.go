// pkg/config/types.go

package config

import (
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/nyx/pkg/shared"
)

// Config is the whole configuration surface of a provisioning run.
type Config struct {
	License            LicenseConfig   `mapstructure:"license" yaml:"license"`
	Alias              AliasConfig     `mapstructure:"alias" yaml:"alias"`
	Installer          InstallerConfig `mapstructure:"installer" yaml:"installer"`
	InstallerConfigDir string          `mapstructure:"installer_config_dir" yaml:"installer_config_dir" validate:"required"`
	ConfigPatch        PatchConfig     `mapstructure:"config_patch" yaml:"config_patch"`
	Service            string          `mapstructure:"service" yaml:"service"`
	Firewall           FirewallConfig  `mapstructure:"firewall" yaml:"firewall"`

	SkipFirewall   bool `mapstructure:"skip_firewall" yaml:"skip_firewall"`
	NonInteractive bool `mapstructure:"non_interactive" yaml:"non_interactive"`
	DryRun         bool `mapstructure:"dry_run" yaml:"dry_run"`

	Packages     []string `mapstructure:"packages" yaml:"packages" validate:"dive,required"`
	SELinuxMode  string   `mapstructure:"selinux_mode" yaml:"selinux_mode" validate:"oneof=enforcing permissive disabled unchanged"`
	MinOSVersion string   `mapstructure:"min_os_version" yaml:"min_os_version"`
	StrictOS     bool     `mapstructure:"strict_os" yaml:"strict_os"`

	AllowInsecureDownload bool   `mapstructure:"allow_insecure_download" yaml:"allow_insecure_download"`
	RequireChecksum       bool   `mapstructure:"require_checksum" yaml:"require_checksum"`
	PolicyFile            string `mapstructure:"policy_file" yaml:"policy_file"`
	StateDir              string `mapstructure:"state_dir" yaml:"state_dir" validate:"required"`
}

type LicenseConfig struct {
	Path   string `mapstructure:"path" yaml:"path"`
	URL    string `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	SHA256 string `mapstructure:"sha256" yaml:"sha256" validate:"omitempty,len=64,hexadecimal"`
}

type AliasConfig struct {
	IP     string `mapstructure:"ip" yaml:"ip" validate:"omitempty,ip"`
	Prefix int    `mapstructure:"prefix" yaml:"prefix" validate:"min=0,max=128"`
}

type InstallerConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	URL          string        `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
	SHA256       string        `mapstructure:"sha256" yaml:"sha256" validate:"omitempty,len=64,hexadecimal"`
	Args         []string      `mapstructure:"args" yaml:"args"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
	PreviewLines int           `mapstructure:"preview_lines" yaml:"preview_lines" validate:"min=0"`
}

type PatchConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Key   string `mapstructure:"key" yaml:"key"`
	Value string `mapstructure:"value" yaml:"value"`
}

type FirewallConfig struct {
	Ports []string `mapstructure:"ports" yaml:"ports" validate:"dive,portspec"`
}

// LicenseDest is where the license file is installed.
func (c *Config) LicenseDest() string {
	return filepath.Join(c.InstallerConfigDir, shared.DefaultLicenseFileName)
}

// PatchFilePath resolves the installer config file; relative names live in InstallerConfigDir.
func (c *Config) PatchFilePath() string {
	if c.ConfigPatch.File == "" {
		return ""
	}
	if filepath.IsAbs(c.ConfigPatch.File) {
		return c.ConfigPatch.File
	}
	return filepath.Join(c.InstallerConfigDir, c.ConfigPatch.File)
}

// PatchValue is the configured value, defaulting to the installed license path.
func (c *Config) PatchValue() string {
	if c.ConfigPatch.Value != "" {
		return c.ConfigPatch.Value
	}
	return c.LicenseDest()
}

// AliasEnabled reports whether an alias IP was requested.
func (c *Config) AliasEnabled() bool {
	return c.Alias.IP != ""
}

// PolicyInput flattens the config into the document the provisioning policy evaluates.
func (c *Config) PolicyInput() map[string]interface{} {
	ports := make([]interface{}, 0, len(c.Firewall.Ports))
	for _, p := range c.Firewall.Ports {
		ports = append(ports, p)
	}
	return map[string]interface{}{
		"license_path":            c.License.Path,
		"license_url":             c.License.URL,
		"license_sha256":          c.License.SHA256,
		"alias_ip":                c.Alias.IP,
		"alias_prefix":            c.Alias.Prefix,
		"installer_enabled":       c.Installer.Enabled,
		"installer_url":           c.Installer.URL,
		"installer_sha256":        c.Installer.SHA256,
		"firewall_ports":          ports,
		"skip_firewall":           c.SkipFirewall,
		"non_interactive":         c.NonInteractive,
		"selinux_mode":            c.SELinuxMode,
		"allow_insecure_download": c.AllowInsecureDownload,
		"require_checksum":        c.RequireChecksum,
		"service":                 c.Service,
	}
}
