package blockedit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const (
	fileEditorPathRequiredMessageConstant = "block file path must be provided"
	lockFileSuffixConstant                = ".lock"
	defaultFileModeConstant               = fs.FileMode(0o644)
	defaultDirectoryModeConstant          = fs.FileMode(0o700)
	defaultLockTimeoutConstant            = 5 * time.Second
	lockRetryDelayConstant                = 50 * time.Millisecond
	readFileErrorTemplateConstant         = "unable to read %s: %w"
	writeFileErrorTemplateConstant        = "unable to write %s: %w"
	lockFileErrorTemplateConstant         = "unable to lock %s: %w"
	lockTimeoutErrorTemplateConstant      = "timed out waiting for lock %s"
	blockUpdatedMessageConstant           = "Updated managed block"
	blockRemovedMessageConstant           = "Removed managed block"
	unlockFailedMessageConstant           = "Failed to release block file lock"
	logFieldFilePathConstant              = "file_path"
	logFieldBlockKeyConstant              = "block_key"
)

// ErrFilePathRequired indicates a FileEditor was built without a target path.
var ErrFilePathRequired = errors.New(fileEditorPathRequiredMessageConstant)

// FileEditorOptions configures a FileEditor.
type FileEditorOptions struct {
	Path          string
	MarkerSet     MarkerSet
	FileMode      fs.FileMode
	DirectoryMode fs.FileMode
	LockTimeout   time.Duration
	Logger        *zap.Logger
}

// FileEditor performs locked read-modify-write cycles of keyed blocks in a single file.
type FileEditor struct {
	path          string
	editor        Editor
	fileMode      fs.FileMode
	directoryMode fs.FileMode
	lockTimeout   time.Duration
	logger        *zap.Logger
}

// NewFileEditor constructs a FileEditor.
func NewFileEditor(options FileEditorOptions) (*FileEditor, error) {
	if len(options.Path) == 0 {
		return nil, ErrFilePathRequired
	}

	fileEditor := &FileEditor{
		path:          options.Path,
		editor:        NewEditor(options.MarkerSet),
		fileMode:      options.FileMode,
		directoryMode: options.DirectoryMode,
		lockTimeout:   options.LockTimeout,
		logger:        options.Logger,
	}
	if fileEditor.fileMode == 0 {
		fileEditor.fileMode = defaultFileModeConstant
	}
	if fileEditor.directoryMode == 0 {
		fileEditor.directoryMode = defaultDirectoryModeConstant
	}
	if fileEditor.lockTimeout <= 0 {
		fileEditor.lockTimeout = defaultLockTimeoutConstant
	}
	if fileEditor.logger == nil {
		fileEditor.logger = zap.NewNop()
	}
	return fileEditor, nil
}

// Path returns the edited file location.
func (fileEditor *FileEditor) Path() string {
	return fileEditor.path
}

// Upsert writes the block for key, creating the file when missing. It reports whether the file changed.
func (fileEditor *FileEditor) Upsert(executionContext context.Context, key string, body string) (bool, error) {
	changed, editError := fileEditor.edit(executionContext, true, func(contents string) string {
		return fileEditor.editor.UpsertBlock(contents, key, body)
	})
	if changed {
		fileEditor.logger.Debug(blockUpdatedMessageConstant, zap.String(logFieldFilePathConstant, fileEditor.path), zap.String(logFieldBlockKeyConstant, key))
	}
	return changed, editError
}

// Remove deletes the block for key. A missing file or block is not an error.
func (fileEditor *FileEditor) Remove(executionContext context.Context, key string) (bool, error) {
	changed, editError := fileEditor.edit(executionContext, false, func(contents string) string {
		if !fileEditor.editor.HasBlock(contents, key) {
			return contents
		}
		return fileEditor.editor.RemoveBlock(contents, key)
	})
	if changed {
		fileEditor.logger.Debug(blockRemovedMessageConstant, zap.String(logFieldFilePathConstant, fileEditor.path), zap.String(logFieldBlockKeyConstant, key))
	}
	return changed, editError
}

// Contains reports whether the file currently holds a complete block for key.
func (fileEditor *FileEditor) Contains(key string) (bool, error) {
	contents, exists, readError := fileEditor.read()
	if readError != nil || !exists {
		return false, readError
	}
	return fileEditor.editor.HasBlock(contents, key), nil
}

func (fileEditor *FileEditor) edit(executionContext context.Context, createWhenMissing bool, transform func(string) string) (bool, error) {
	if !createWhenMissing {
		if _, statError := os.Stat(fileEditor.path); errors.Is(statError, fs.ErrNotExist) {
			return false, nil
		}
	}

	if directoryError := os.MkdirAll(filepath.Dir(fileEditor.path), fileEditor.directoryMode); directoryError != nil {
		return false, fmt.Errorf(writeFileErrorTemplateConstant, fileEditor.path, directoryError)
	}

	unlock, lockError := fileEditor.lock(executionContext)
	if lockError != nil {
		return false, lockError
	}
	defer unlock()

	contents, _, readError := fileEditor.read()
	if readError != nil {
		return false, readError
	}

	updatedContents := transform(contents)
	if updatedContents == contents {
		return false, nil
	}

	if writeError := os.WriteFile(fileEditor.path, []byte(updatedContents), fileEditor.fileMode); writeError != nil {
		return false, fmt.Errorf(writeFileErrorTemplateConstant, fileEditor.path, writeError)
	}
	return true, nil
}

func (fileEditor *FileEditor) read() (string, bool, error) {
	contents, readError := os.ReadFile(fileEditor.path)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf(readFileErrorTemplateConstant, fileEditor.path, readError)
	}
	return string(contents), true, nil
}

func (fileEditor *FileEditor) lock(executionContext context.Context) (func(), error) {
	lockPath := fileEditor.path + lockFileSuffixConstant
	fileLock := flock.New(lockPath)

	lockContext, cancel := context.WithTimeout(executionContext, fileEditor.lockTimeout)
	defer cancel()

	locked, lockError := fileLock.TryLockContext(lockContext, lockRetryDelayConstant)
	if lockError != nil && !errors.Is(lockError, context.DeadlineExceeded) {
		return nil, fmt.Errorf(lockFileErrorTemplateConstant, lockPath, lockError)
	}
	if !locked {
		return nil, fmt.Errorf(lockTimeoutErrorTemplateConstant, lockPath)
	}

	return func() {
		if unlockError := fileLock.Unlock(); unlockError != nil {
			fileEditor.logger.Warn(unlockFailedMessageConstant, zap.String(logFieldFilePathConstant, lockPath), zap.Error(unlockError))
		}
	}, nil
}
