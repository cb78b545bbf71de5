package cli

import (
	"time"

	"github.com/temirov/gitid/internal/router"
	"github.com/temirov/gitid/internal/shellrc"
	"github.com/temirov/gitid/internal/utils"
)

const (
	commonConfigurationKeyConstant   = "common"
	commonLogLevelConfigKeyConstant  = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant = commonConfigurationKeyConstant + ".log_format"
	defaultStorePathConstant         = "~/.git-id/profiles.json"
	defaultLockTimeoutConstant       = 5 * time.Second
	defaultSSHDirectoryConstant      = "~/.ssh"
	defaultSSHConfigPathConstant     = "~/.ssh/config"
	defaultKeyPrefixConstant         = "id_ed25519_"
	defaultKeyTypeConstant           = "ed25519"
	defaultRemoteHostConstant        = "github.com"
	defaultAliasPrefixConstant       = "github-"
	defaultMarkerPrefixConstant      = "# Git-ID"
	defaultTestTimeoutConstant       = 30 * time.Second
)

// ApplicationConfiguration describes the persisted configuration for the git-id entrypoints.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common" yaml:"common"`
	Profiles ProfilesConfiguration          `mapstructure:"profiles" yaml:"profiles"`
	SSH      SSHConfiguration               `mapstructure:"ssh" yaml:"ssh"`
	GitHub   GitHubConfiguration            `mapstructure:"github" yaml:"github"`
	Shell    ShellConfiguration             `mapstructure:"shell" yaml:"shell"`
	Router   RouterConfiguration            `mapstructure:"router" yaml:"router"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// ProfilesConfiguration locates the profile store.
type ProfilesConfiguration struct {
	StorePath   string        `mapstructure:"store_path" yaml:"store_path"`
	LockTimeout time.Duration `mapstructure:"lock_timeout" yaml:"lock_timeout"`
}

// SSHConfiguration controls key generation and host alias management.
type SSHConfiguration struct {
	Directory    string        `mapstructure:"directory" yaml:"directory"`
	ConfigPath   string        `mapstructure:"config_path" yaml:"config_path"`
	KeyPrefix    string        `mapstructure:"key_prefix" yaml:"key_prefix"`
	KeyType      string        `mapstructure:"key_type" yaml:"key_type"`
	Host         string        `mapstructure:"host" yaml:"host"`
	AliasPrefix  string        `mapstructure:"alias_prefix" yaml:"alias_prefix"`
	MarkerPrefix string        `mapstructure:"marker_prefix" yaml:"marker_prefix"`
	TestTimeout  time.Duration `mapstructure:"test_timeout" yaml:"test_timeout"`
}

// GitHubConfiguration controls the device flow and API access.
type GitHubConfiguration struct {
	ClientID    string   `mapstructure:"client_id" yaml:"client_id"`
	Scopes      []string `mapstructure:"scopes" yaml:"scopes"`
	OpenBrowser bool     `mapstructure:"open_browser" yaml:"open_browser"`
	APIBaseURL  string   `mapstructure:"api_base_url" yaml:"api_base_url"`
}

// ShellConfiguration lists the rc files considered by shell install.
type ShellConfiguration struct {
	RCFiles []string `mapstructure:"rc_files" yaml:"rc_files"`
}

// RouterConfiguration classifies git subcommands for the profile router.
type RouterConfiguration struct {
	NetworkCommands []string `mapstructure:"network_commands" yaml:"network_commands"`
	CloneCommands   []string `mapstructure:"clone_commands" yaml:"clone_commands"`
}

// MarshalYAML renders durations in their human-readable form.
func (configuration ProfilesConfiguration) MarshalYAML() (any, error) {
	return struct {
		StorePath   string `yaml:"store_path"`
		LockTimeout string `yaml:"lock_timeout"`
	}{
		StorePath:   configuration.StorePath,
		LockTimeout: configuration.LockTimeout.String(),
	}, nil
}

// MarshalYAML renders durations in their human-readable form.
func (configuration SSHConfiguration) MarshalYAML() (any, error) {
	return struct {
		Directory    string `yaml:"directory"`
		ConfigPath   string `yaml:"config_path"`
		KeyPrefix    string `yaml:"key_prefix"`
		KeyType      string `yaml:"key_type"`
		Host         string `yaml:"host"`
		AliasPrefix  string `yaml:"alias_prefix"`
		MarkerPrefix string `yaml:"marker_prefix"`
		TestTimeout  string `yaml:"test_timeout"`
	}{
		Directory:    configuration.Directory,
		ConfigPath:   configuration.ConfigPath,
		KeyPrefix:    configuration.KeyPrefix,
		KeyType:      configuration.KeyType,
		Host:         configuration.Host,
		AliasPrefix:  configuration.AliasPrefix,
		MarkerPrefix: configuration.MarkerPrefix,
		TestTimeout:  configuration.TestTimeout.String(),
	}, nil
}

// DefaultConfigurationValues returns the viper defaults applied beneath the embedded configuration.
func DefaultConfigurationValues() map[string]any {
	return map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatConsole),
		"profiles.store_path":            defaultStorePathConstant,
		"profiles.lock_timeout":          defaultLockTimeoutConstant,
		"ssh.directory":                  defaultSSHDirectoryConstant,
		"ssh.config_path":                defaultSSHConfigPathConstant,
		"ssh.key_prefix":                 defaultKeyPrefixConstant,
		"ssh.key_type":                   defaultKeyTypeConstant,
		"ssh.host":                       defaultRemoteHostConstant,
		"ssh.alias_prefix":               defaultAliasPrefixConstant,
		"ssh.marker_prefix":              defaultMarkerPrefixConstant,
		"ssh.test_timeout":               defaultTestTimeoutConstant,
		"github.open_browser":            true,
		"shell.rc_files":                 shellrc.DefaultRCFiles,
		"router.network_commands":        router.DefaultNetworkCommands,
		"router.clone_commands":          router.DefaultCloneCommands,
	}
}
