package sshkeys

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/temirov/gitid/internal/execshell"
)

const (
	keyTypeFlagConstant                = "-t"
	keyCommentFlagConstant             = "-C"
	keyOutputFlagConstant              = "-f"
	keyPassphraseFlagConstant          = "-N"
	emptyPassphraseConstant            = ""
	defaultKeyTypeConstant             = "ed25519"
	sshTestFlagConstant                = "-T"
	sshOptionFlagValueConstant         = "-o"
	strictHostKeyCheckingConstant      = "StrictHostKeyChecking=accept-new"
	sshDestinationTemplateConstant     = "git@%s"
	defaultTestTimeoutConstant         = 30 * time.Second
	greetingPatternConstant            = `Hi ([^!]+)!`
	authenticatedMarkerConstant        = "successfully authenticated"
	connectionFailedMessageConstant    = "connection failed"
	privateKeyPermissionsConstant      = fs.FileMode(0o600)
	sshDirectoryPermissionsConstant    = fs.FileMode(0o700)
	hostAliasBlockTemplateConstant     = "Host %s\n    HostName %s\n    User git\n    IdentityFile %s\n    IdentitiesOnly yes"
	keyGenerationFailedMessageConstant = "failed to generate SSH key"
	connectivityFailedMessageConstant  = "SSH connection test failed"
	executorMissingMessageConstant     = "ssh executor not configured"
	aliasFileMissingMessageConstant    = "ssh config block file not configured"
	keyGenerationErrorTemplateConstant = "%s for profile %s: %v"
	connectivityErrorTemplateConstant  = "%s for profile %s: %s"
	removeKeyFileErrorTemplateConstant = "unable to remove %s: %w"
	readPublicKeyErrorTemplateConstant = "unable to read public key %s: %w"
	keyGeneratedMessageConstant        = "Generated SSH key"
	aliasConfiguredMessageConstant     = "Configured SSH host alias"
	logFieldProfileConstant            = "profile"
	logFieldKeyPathConstant            = "key_path"
	logFieldHostAliasConstant          = "host_alias"
	logFieldFingerprintConstant        = "fingerprint"
)

var (
	// ErrKeyGenerationFailed matches every KeyGenerationError.
	ErrKeyGenerationFailed = errors.New(keyGenerationFailedMessageConstant)
	// ErrConnectivityTestFailed matches every ConnectivityTestError.
	ErrConnectivityTestFailed = errors.New(connectivityFailedMessageConstant)
	// ErrExecutorNotConfigured indicates NewManager received no executor.
	ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)
	// ErrAliasFileNotConfigured indicates NewManager received no SSH config block file.
	ErrAliasFileNotConfigured = errors.New(aliasFileMissingMessageConstant)
)

var greetingPattern = regexp.MustCompile(greetingPatternConstant)

// KeyGenerationError reports a failed key generation step.
type KeyGenerationError struct {
	ProfileName string
	Cause       error
}

// Error describes the failure.
func (generationError KeyGenerationError) Error() string {
	return fmt.Sprintf(keyGenerationErrorTemplateConstant, keyGenerationFailedMessageConstant, generationError.ProfileName, generationError.Cause)
}

// Is matches ErrKeyGenerationFailed.
func (generationError KeyGenerationError) Is(target error) bool {
	return target == ErrKeyGenerationFailed
}

// Unwrap exposes the underlying failure.
func (generationError KeyGenerationError) Unwrap() error {
	return generationError.Cause
}

// ConnectivityTestError reports a failed connection test.
type ConnectivityTestError struct {
	ProfileName string
	Detail      string
}

// Error describes the failure.
func (connectivityError ConnectivityTestError) Error() string {
	return fmt.Sprintf(connectivityErrorTemplateConstant, connectivityFailedMessageConstant, connectivityError.ProfileName, connectivityError.Detail)
}

// Is matches ErrConnectivityTestFailed.
func (connectivityError ConnectivityTestError) Is(target error) bool {
	return target == ErrConnectivityTestFailed
}

// KeyPair describes a generated or existing key pair on disk.
type KeyPair struct {
	PrivateKeyPath string
	PublicKeyPath  string
	PublicKey      string
	Fingerprint    string
}

// ConnectionResult is the outcome of an SSH connectivity test.
type ConnectionResult struct {
	Success  bool
	Username string
	Error    string
}

// Err converts an unsuccessful result into a ConnectivityTestError.
func (result ConnectionResult) Err(profileName string) error {
	if result.Success {
		return nil
	}
	return ConnectivityTestError{ProfileName: profileName, Detail: result.Error}
}

// Executor runs ssh-keygen and ssh.
type Executor interface {
	ExecuteSSHKeygen(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
	ExecuteSSH(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// AliasFile edits keyed blocks in the SSH client configuration.
type AliasFile interface {
	Upsert(executionContext context.Context, key string, body string) (bool, error)
	Remove(executionContext context.Context, key string) (bool, error)
}

// ManagerDependencies wires collaborators for Manager.
type ManagerDependencies struct {
	Layout      Layout
	KeyType     string
	TestTimeout time.Duration
	Executor    Executor
	AliasFile   AliasFile
	Agent       AgentConnector
	Logger      *zap.Logger
}

// Manager provisions per-profile SSH keys and host aliases.
type Manager struct {
	layout      Layout
	keyType     string
	testTimeout time.Duration
	executor    Executor
	aliasFile   AliasFile
	agent       AgentConnector
	logger      *zap.Logger
}

// NewManager constructs a Manager.
func NewManager(dependencies ManagerDependencies) (*Manager, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	if dependencies.AliasFile == nil {
		return nil, ErrAliasFileNotConfigured
	}

	manager := &Manager{
		layout:      dependencies.Layout,
		keyType:     dependencies.KeyType,
		testTimeout: dependencies.TestTimeout,
		executor:    dependencies.Executor,
		aliasFile:   dependencies.AliasFile,
		agent:       dependencies.Agent,
		logger:      dependencies.Logger,
	}
	if len(manager.keyType) == 0 {
		manager.keyType = defaultKeyTypeConstant
	}
	if manager.testTimeout <= 0 {
		manager.testTimeout = defaultTestTimeoutConstant
	}
	if manager.agent == nil {
		manager.agent = NewSocketAgentConnector(os.LookupEnv)
	}
	if manager.logger == nil {
		manager.logger = zap.NewNop()
	}
	return manager, nil
}

// Layout exposes the key and alias naming used by the manager.
func (manager *Manager) Layout() Layout {
	return manager.layout
}

// SSHCommand implements the core.sshCommand provider used by git configuration.
func (manager *Manager) SSHCommand(profileName string) string {
	return manager.layout.SSHCommand(profileName)
}

// Generate replaces any existing key pair for the profile with a fresh passphrase-less key.
func (manager *Manager) Generate(executionContext context.Context, comment string, profileName string) (KeyPair, error) {
	if directoryError := os.MkdirAll(manager.layout.Directory, sshDirectoryPermissionsConstant); directoryError != nil {
		return KeyPair{}, KeyGenerationError{ProfileName: profileName, Cause: directoryError}
	}
	if removeError := manager.DeleteKeyFiles(profileName); removeError != nil {
		return KeyPair{}, KeyGenerationError{ProfileName: profileName, Cause: removeError}
	}

	privateKeyPath := manager.layout.PrivateKeyPath(profileName)
	_, executionError := manager.executor.ExecuteSSHKeygen(executionContext, execshell.CommandDetails{
		Arguments: []string{
			keyTypeFlagConstant, manager.keyType,
			keyCommentFlagConstant, comment,
			keyOutputFlagConstant, privateKeyPath,
			keyPassphraseFlagConstant, emptyPassphraseConstant,
		},
	})
	if executionError != nil {
		return KeyPair{}, KeyGenerationError{ProfileName: profileName, Cause: executionError}
	}

	if chmodError := os.Chmod(privateKeyPath, privateKeyPermissionsConstant); chmodError != nil {
		return KeyPair{}, KeyGenerationError{ProfileName: profileName, Cause: chmodError}
	}

	keyPair, readError := manager.ReadKeyPair(profileName)
	if readError != nil {
		return KeyPair{}, KeyGenerationError{ProfileName: profileName, Cause: readError}
	}

	manager.logger.Info(keyGeneratedMessageConstant,
		zap.String(logFieldProfileConstant, profileName),
		zap.String(logFieldKeyPathConstant, privateKeyPath),
		zap.String(logFieldFingerprintConstant, keyPair.Fingerprint),
	)
	return keyPair, nil
}

// ReadKeyPair loads the public half of the profile's key pair and computes its fingerprint.
func (manager *Manager) ReadKeyPair(profileName string) (KeyPair, error) {
	publicKeyPath := manager.layout.PublicKeyPath(profileName)
	publicKeyContents, readError := os.ReadFile(publicKeyPath)
	if readError != nil {
		return KeyPair{}, fmt.Errorf(readPublicKeyErrorTemplateConstant, publicKeyPath, readError)
	}

	parsedKey, _, _, _, parseError := ssh.ParseAuthorizedKey(publicKeyContents)
	if parseError != nil {
		return KeyPair{}, fmt.Errorf(readPublicKeyErrorTemplateConstant, publicKeyPath, parseError)
	}

	return KeyPair{
		PrivateKeyPath: manager.layout.PrivateKeyPath(profileName),
		PublicKeyPath:  publicKeyPath,
		PublicKey:      strings.TrimSpace(string(publicKeyContents)),
		Fingerprint:    ssh.FingerprintSHA256(parsedKey),
	}, nil
}

// HasKeyPair reports whether both key files exist.
func (manager *Manager) HasKeyPair(profileName string) bool {
	for _, keyPath := range []string{manager.layout.PrivateKeyPath(profileName), manager.layout.PublicKeyPath(profileName)} {
		if _, statError := os.Stat(keyPath); statError != nil {
			return false
		}
	}
	return true
}

// DeleteKeyFiles removes both key files. Missing files are ignored.
func (manager *Manager) DeleteKeyFiles(profileName string) error {
	for _, keyPath := range []string{manager.layout.PrivateKeyPath(profileName), manager.layout.PublicKeyPath(profileName)} {
		if removeError := os.Remove(keyPath); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
			return fmt.Errorf(removeKeyFileErrorTemplateConstant, keyPath, removeError)
		}
	}
	return nil
}

// HostAliasBlock renders the SSH config entry for the profile's alias.
func (manager *Manager) HostAliasBlock(profileName string) string {
	return fmt.Sprintf(hostAliasBlockTemplateConstant, manager.layout.HostAlias(profileName), manager.layout.RemoteHost(), manager.layout.IdentityFile(profileName))
}

// ConfigureAlias writes or replaces the profile's host alias block.
func (manager *Manager) ConfigureAlias(executionContext context.Context, profileName string) error {
	if _, upsertError := manager.aliasFile.Upsert(executionContext, profileName, manager.HostAliasBlock(profileName)); upsertError != nil {
		return upsertError
	}
	manager.logger.Info(aliasConfiguredMessageConstant,
		zap.String(logFieldProfileConstant, profileName),
		zap.String(logFieldHostAliasConstant, manager.layout.HostAlias(profileName)),
	)
	return nil
}

// RemoveAlias deletes the profile's host alias block if present.
func (manager *Manager) RemoveAlias(executionContext context.Context, profileName string) error {
	_, removeError := manager.aliasFile.Remove(executionContext, profileName)
	return removeError
}

// TestConnection runs ssh -T against the profile's alias. The greeting is inspected even when ssh exits non-zero,
// because the Git host closes test sessions with a failure status.
func (manager *Manager) TestConnection(executionContext context.Context, profileName string) ConnectionResult {
	testContext, cancel := context.WithTimeout(executionContext, manager.testTimeout)
	defer cancel()

	executionResult, executionError := manager.executor.ExecuteSSH(testContext, execshell.CommandDetails{
		Arguments: []string{
			sshTestFlagConstant,
			fmt.Sprintf(sshDestinationTemplateConstant, manager.layout.HostAlias(profileName)),
			sshOptionFlagValueConstant, strictHostKeyCheckingConstant,
		},
	})

	combinedOutput := executionResult.CombinedOutput()
	var commandFailure execshell.CommandFailedError
	if errors.As(executionError, &commandFailure) {
		combinedOutput = commandFailure.Result.CombinedOutput()
	}

	result := InterpretGreeting(combinedOutput)
	if !result.Success && len(result.Error) == 0 {
		result.Error = connectionFailedMessageConstant
		var executionFailure execshell.CommandExecutionError
		if errors.As(executionError, &executionFailure) {
			result.Error = executionFailure.Error()
		}
	}
	return result
}

// InterpretGreeting classifies the output of ssh -T against the Git host.
func InterpretGreeting(output string) ConnectionResult {
	if match := greetingPattern.FindStringSubmatch(output); match != nil {
		return ConnectionResult{Success: true, Username: match[1]}
	}
	if strings.Contains(output, authenticatedMarkerConstant) {
		return ConnectionResult{Success: true}
	}
	return ConnectionResult{Success: false, Error: strings.TrimSpace(output)}
}

// AddToAgent registers the profile's private key with the running SSH agent.
// It returns false without error when no agent is available.
func (manager *Manager) AddToAgent(profileName string) (bool, error) {
	return manager.agent.AddKey(manager.layout.PrivateKeyPath(profileName), manager.layout.KeyFileName(profileName))
}
