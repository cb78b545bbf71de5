package sshkeys

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	publicKeySuffixConstant       = ".pub"
	unsafeKeyNameCharactersRegexp = `[^A-Za-z0-9_-]`
	keyNameReplacementConstant    = "_"
	defaultKeyPrefixConstant      = "id_ed25519_"
	defaultHostConstant           = "github.com"
	defaultAliasPrefixConstant    = "github-"
	displayPathSeparatorConstant  = "/"
	shellSafeCharactersConstant   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./~=:@%+,"
	shellSingleQuoteConstant      = "'"
	shellEscapedQuoteConstant     = `'\''`
	sshExecutableConstant         = "ssh"
	sshIdentityFlagConstant       = "-i"
	sshOptionFlagConstant         = "-o"
	sshConfigFlagConstant         = "-F"
	identitiesOnlyOptionConstant  = "IdentitiesOnly=yes"
	commandSeparatorConstant      = " "
)

var unsafeKeyNameCharacters = regexp.MustCompile(unsafeKeyNameCharactersRegexp)

// Layout locates per-profile key files and names per-profile host aliases.
// Directory and ConfigPath are filesystem paths; the Display variants are written into
// configuration files and shell commands and may keep a leading ~.
type Layout struct {
	Directory         string
	ConfigPath        string
	DisplayDirectory  string
	DisplayConfigPath string
	KeyPrefix         string
	Host              string
	AliasPrefix       string
}

func (layout Layout) keyPrefix() string {
	if len(layout.KeyPrefix) == 0 {
		return defaultKeyPrefixConstant
	}
	return layout.KeyPrefix
}

func (layout Layout) displayDirectory() string {
	if len(layout.DisplayDirectory) == 0 {
		return layout.Directory
	}
	return layout.DisplayDirectory
}

func (layout Layout) displayConfigPath() string {
	if len(layout.DisplayConfigPath) == 0 {
		return layout.ConfigPath
	}
	return layout.DisplayConfigPath
}

// RemoteHost returns the real Git host aliases point to.
func (layout Layout) RemoteHost() string {
	if len(layout.Host) == 0 {
		return defaultHostConstant
	}
	return layout.Host
}

// KeyFileName returns the private key file name, replacing characters outside [A-Za-z0-9_-] with underscores.
func (layout Layout) KeyFileName(profileName string) string {
	return layout.keyPrefix() + unsafeKeyNameCharacters.ReplaceAllString(profileName, keyNameReplacementConstant)
}

// PrivateKeyPath returns the filesystem path of the profile's private key.
func (layout Layout) PrivateKeyPath(profileName string) string {
	return filepath.Join(layout.Directory, layout.KeyFileName(profileName))
}

// PublicKeyPath returns the filesystem path of the profile's public key.
func (layout Layout) PublicKeyPath(profileName string) string {
	return layout.PrivateKeyPath(profileName) + publicKeySuffixConstant
}

// IdentityFile returns the key path as written into SSH configuration.
func (layout Layout) IdentityFile(profileName string) string {
	return strings.TrimRight(layout.displayDirectory(), displayPathSeparatorConstant) + displayPathSeparatorConstant + layout.KeyFileName(profileName)
}

// HostAlias returns the SSH host alias dedicated to the profile.
func (layout Layout) HostAlias(profileName string) string {
	aliasPrefix := layout.AliasPrefix
	if len(aliasPrefix) == 0 {
		aliasPrefix = defaultAliasPrefixConstant
	}
	return aliasPrefix + profileName
}

// SSHCommand returns the core.sshCommand value pinning the profile's key and the SSH config file.
func (layout Layout) SSHCommand(profileName string) string {
	return strings.Join([]string{
		sshExecutableConstant,
		sshIdentityFlagConstant, shellQuote(layout.IdentityFile(profileName)),
		sshOptionFlagConstant, identitiesOnlyOptionConstant,
		sshConfigFlagConstant, shellQuote(layout.displayConfigPath()),
	}, commandSeparatorConstant)
}

// ConnectionCommand returns the GIT_SSH_COMMAND value for one-shot network operations.
func (layout Layout) ConnectionCommand(profileName string) string {
	return strings.Join([]string{
		sshExecutableConstant,
		sshIdentityFlagConstant, shellQuote(layout.IdentityFile(profileName)),
		sshOptionFlagConstant, identitiesOnlyOptionConstant,
	}, commandSeparatorConstant)
}

// shellQuote single-quotes value unless every character is shell-safe, so ~ keeps expanding for plain paths.
func shellQuote(value string) string {
	if len(value) > 0 && len(strings.Trim(value, shellSafeCharactersConstant)) == 0 {
		return value
	}
	return shellSingleQuoteConstant + strings.ReplaceAll(value, shellSingleQuoteConstant, shellEscapedQuoteConstant) + shellSingleQuoteConstant
}
