// pkg/shared/constants.go

package shared

const (
	NyxID         = "nyx"
	NyxLogDir     = "/var/log/nyx/"
	NyxLogs       = NyxLogDir + "nyx.log"
	NyxLogsPWD    = "./nyx.log"
	NyxTelemetry  = NyxLogDir + "telemetry.jsonl"
	NyxConfigDir  = "/etc/nyx"
	NyxConfigName = "nyx"
	NyxStateDir   = "/var/lib/nyx/actions"
	NyxEnvPrefix  = "NYX"
)

const (
	// Permission modes (in octal)
	DirPermStandard        = 0755
	FilePermOwnerRWX       = 0700
	FilePermStandard       = 0644
	FilePermOwnerReadWrite = 0600
)

// Defaults for the installer being bootstrapped.
const (
	DefaultInstallerConfigDir = "/etc/opt/agent"
	DefaultInstallerConfig    = "agent.conf"
	DefaultLicenseFileName    = "license.key"
	DefaultService            = "agent"
	DefaultPatchKey           = "license_file"
	DefaultSELinuxMode        = "permissive"
	DefaultMinOSVersion       = "8"
	DefaultPreviewLines       = 40
	SELinuxConfigPath         = "/etc/selinux/config"
	OSReleasePath             = "/etc/os-release"
)

var DefaultPackages = []string{"curl", "firewalld", "NetworkManager"}

var DefaultFirewallPorts = []string{"443/tcp", "8443/tcp"}
