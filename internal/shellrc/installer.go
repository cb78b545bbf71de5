package shellrc

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gitid/internal/blockedit"
)

const (
	blockKeyConstant             = "shell"
	markerStartPrefixConstant    = "# Git Identity Manager"
	markerEndPrefixConstant      = "# End Git Identity Manager"
	defaultRCFileConstant        = ".bashrc"
	homeDirectoryMissingMessage  = "shell integration requires a home directory"
	rcFileUpdatedMessageConstant = "Installed shell integration"
	rcFileRemovedMessageConstant = "Removed shell integration"
	logFieldRCFileConstant       = "rc_file"
	shellFunctionConstant        = `git() {
    local argument
    for argument in "$@"; do
        case "$argument" in
            --profile|--profile=*|-p)
                gitp "$@"
                return $?
                ;;
        esac
    done
    command git "$@"
}`
)

// ErrHomeDirectoryRequired indicates no home directory was supplied for resolving rc files.
var ErrHomeDirectoryRequired = errors.New(homeDirectoryMissingMessage)

// DefaultRCFiles lists the rc files considered when none are configured.
var DefaultRCFiles = []string{".bashrc", ".bash_profile", ".zshrc", ".profile"}

// MarkerSet returns the markers delimiting the managed shell block.
func MarkerSet() blockedit.MarkerSet {
	return blockedit.MarkerSet{StartPrefix: markerStartPrefixConstant, EndPrefix: markerEndPrefixConstant}
}

// FunctionBody returns the git() wrapper written into rc files.
func FunctionBody() string {
	return shellFunctionConstant
}

// InstallerOptions configures an Installer.
type InstallerOptions struct {
	HomeDirectory string
	RCFiles       []string
	LockTimeout   time.Duration
	Logger        *zap.Logger
}

// Installer edits shell rc files.
type Installer struct {
	homeDirectory string
	rcFiles       []string
	lockTimeout   time.Duration
	logger        *zap.Logger
}

// FileResult reports the outcome for one rc file.
type FileResult struct {
	Path    string
	Changed bool
}

// NewInstaller constructs an Installer.
func NewInstaller(options InstallerOptions) (*Installer, error) {
	if len(options.HomeDirectory) == 0 {
		return nil, ErrHomeDirectoryRequired
	}
	rcFiles := options.RCFiles
	if len(rcFiles) == 0 {
		rcFiles = DefaultRCFiles
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Installer{
		homeDirectory: options.HomeDirectory,
		rcFiles:       append([]string{}, rcFiles...),
		lockTimeout:   options.LockTimeout,
		logger:        logger,
	}, nil
}

// TargetFiles resolves the rc files to edit: explicit paths when given, otherwise the configured
// rc files that exist in the home directory, falling back to .bashrc.
func (installer *Installer) TargetFiles(explicitFiles []string) []string {
	if len(explicitFiles) > 0 {
		resolved := make([]string, 0, len(explicitFiles))
		for _, explicitFile := range explicitFiles {
			resolved = append(resolved, installer.resolve(explicitFile))
		}
		return resolved
	}

	existing := make([]string, 0, len(installer.rcFiles))
	for _, rcFile := range installer.rcFiles {
		candidate := installer.resolve(rcFile)
		if _, statError := os.Stat(candidate); statError == nil {
			existing = append(existing, candidate)
		}
	}
	if len(existing) == 0 {
		return []string{installer.resolve(defaultRCFileConstant)}
	}
	return existing
}

// Install upserts the git() block into every target file.
func (installer *Installer) Install(executionContext context.Context, explicitFiles []string) ([]FileResult, error) {
	return installer.apply(executionContext, installer.TargetFiles(explicitFiles), rcFileUpdatedMessageConstant, func(fileEditor *blockedit.FileEditor) (bool, error) {
		return fileEditor.Upsert(executionContext, blockKeyConstant, shellFunctionConstant)
	})
}

// Uninstall removes the git() block from every target file.
func (installer *Installer) Uninstall(executionContext context.Context, explicitFiles []string) ([]FileResult, error) {
	return installer.apply(executionContext, installer.TargetFiles(explicitFiles), rcFileRemovedMessageConstant, func(fileEditor *blockedit.FileEditor) (bool, error) {
		return fileEditor.Remove(executionContext, blockKeyConstant)
	})
}

func (installer *Installer) apply(executionContext context.Context, targetFiles []string, logMessage string, operation func(*blockedit.FileEditor) (bool, error)) ([]FileResult, error) {
	results := make([]FileResult, 0, len(targetFiles))
	for _, targetFile := range targetFiles {
		if contextError := executionContext.Err(); contextError != nil {
			return results, contextError
		}

		fileEditor, editorError := blockedit.NewFileEditor(blockedit.FileEditorOptions{
			Path:        targetFile,
			MarkerSet:   MarkerSet(),
			LockTimeout: installer.lockTimeout,
			Logger:      installer.logger,
		})
		if editorError != nil {
			return results, editorError
		}

		changed, operationError := operation(fileEditor)
		if operationError != nil {
			return results, operationError
		}
		if changed {
			installer.logger.Info(logMessage, zap.String(logFieldRCFileConstant, targetFile))
		}
		results = append(results, FileResult{Path: targetFile, Changed: changed})
	}
	return results, nil
}

func (installer *Installer) resolve(rcFile string) string {
	if filepath.IsAbs(rcFile) {
		return rcFile
	}
	return filepath.Join(installer.homeDirectory, rcFile)
}
