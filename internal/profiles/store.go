package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	storePathRequiredMessageConstant      = "profile store path must be provided"
	storeLockSuffixConstant               = ".lock"
	storeTemporaryFileTemplateConstant    = "%s.%s.tmp"
	storeDirectoryPermissionsConstant     = 0o700
	storeFilePermissionsConstant          = 0o600
	storeJSONIndentConstant               = "  "
	storeJSONPrefixConstant               = ""
	defaultLockTimeoutConstant            = 5 * time.Second
	lockRetryDelayConstant                = 50 * time.Millisecond
	storeLockErrorTemplateConstant        = "unable to lock profile store %s: %w"
	storeLockTimeoutErrorTemplateConstant = "timed out waiting for profile store lock %s"
	storeReadErrorTemplateConstant        = "unable to read profile store %s: %w"
	storeWriteErrorTemplateConstant       = "unable to write profile store %s: %w"
	storeEncodeErrorTemplateConstant      = "unable to encode profiles: %w"
	storeCorruptMessageConstant           = "Profile store is unreadable; starting with no profiles"
	storeUnlockFailedMessageConstant      = "Failed to release profile store lock"
	logFieldStorePathConstant             = "store_path"
)

// ErrStorePathRequired indicates NewStore received an empty path.
var ErrStorePathRequired = errors.New(storePathRequiredMessageConstant)

// StoreOptions configures a Store.
type StoreOptions struct {
	Path        string
	LockTimeout time.Duration
	Logger      *zap.Logger
	Clock       func() time.Time
}

// Store keeps the ordered profile collection in memory and mirrors every mutation to disk.
type Store struct {
	mutex       sync.Mutex
	path        string
	lockTimeout time.Duration
	logger      *zap.Logger
	clock       func() time.Time
	profiles    []Profile
}

// NewStore loads the profile file at options.Path. A missing or corrupt file yields an empty store.
func NewStore(options StoreOptions) (*Store, error) {
	if len(options.Path) == 0 {
		return nil, ErrStorePathRequired
	}

	store := &Store{
		path:        options.Path,
		lockTimeout: options.LockTimeout,
		logger:      options.Logger,
		clock:       options.Clock,
	}
	if store.lockTimeout <= 0 {
		store.lockTimeout = defaultLockTimeoutConstant
	}
	if store.logger == nil {
		store.logger = zap.NewNop()
	}
	if store.clock == nil {
		store.clock = time.Now
	}

	store.profiles = store.readProfiles()
	return store, nil
}

// Path returns the backing file location.
func (store *Store) Path() string {
	return store.path
}

// List returns a copy of all profiles in insertion order.
func (store *Store) List() []Profile {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	return append([]Profile{}, store.profiles...)
}

// Names returns the profile names in insertion order.
func (store *Store) Names() []string {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	names := make([]string, 0, len(store.profiles))
	for _, profile := range store.profiles {
		names = append(names, profile.Name)
	}
	return names
}

// Find returns the profile whose name matches case-insensitively.
func (store *Store) Find(name string) (Profile, error) {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	profileIndex := indexOf(store.profiles, name)
	if profileIndex < 0 {
		return Profile{}, fmt.Errorf(profileErrorTemplateConstant, ErrNotFound, name)
	}
	return store.profiles[profileIndex], nil
}

// Add appends a new profile. CreatedAt is stamped when zero.
func (store *Store) Add(executionContext context.Context, profile Profile) (Profile, error) {
	if validationError := profile.Validate(); validationError != nil {
		return Profile{}, validationError
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = store.clock().UTC()
	}

	mutationError := store.mutate(executionContext, func(current []Profile) ([]Profile, error) {
		if indexOf(current, profile.Name) >= 0 {
			return nil, fmt.Errorf(profileErrorTemplateConstant, ErrDuplicateName, profile.Name)
		}
		return append(current, profile), nil
	})
	if mutationError != nil {
		return Profile{}, mutationError
	}
	return profile, nil
}

// Update merges the non-nil fields of update into the named profile.
func (store *Store) Update(executionContext context.Context, name string, update ProfileUpdate) (Profile, error) {
	var updatedProfile Profile
	mutationError := store.mutate(executionContext, func(current []Profile) ([]Profile, error) {
		profileIndex := indexOf(current, name)
		if profileIndex < 0 {
			return nil, fmt.Errorf(profileErrorTemplateConstant, ErrNotFound, name)
		}
		candidate := update.applyTo(current[profileIndex])
		if validationError := candidate.Validate(); validationError != nil {
			return nil, validationError
		}
		current[profileIndex] = candidate
		updatedProfile = candidate
		return current, nil
	})
	if mutationError != nil {
		return Profile{}, mutationError
	}
	return updatedProfile, nil
}

// Delete removes the named profile.
func (store *Store) Delete(executionContext context.Context, name string) error {
	return store.mutate(executionContext, func(current []Profile) ([]Profile, error) {
		profileIndex := indexOf(current, name)
		if profileIndex < 0 {
			return nil, fmt.Errorf(profileErrorTemplateConstant, ErrNotFound, name)
		}
		return append(current[:profileIndex], current[profileIndex+1:]...), nil
	})
}

// DeleteAll removes every profile.
func (store *Store) DeleteAll(executionContext context.Context) error {
	return store.mutate(executionContext, func([]Profile) ([]Profile, error) {
		return []Profile{}, nil
	})
}

// mutate reloads the file under the advisory lock, applies change, and persists the result.
func (store *Store) mutate(executionContext context.Context, change func([]Profile) ([]Profile, error)) error {
	store.mutex.Lock()
	defer store.mutex.Unlock()

	unlock, lockError := store.acquireFileLock(executionContext)
	if lockError != nil {
		return lockError
	}
	defer unlock()

	changedProfiles, changeError := change(store.readProfiles())
	if changeError != nil {
		return changeError
	}
	if writeError := store.writeProfiles(changedProfiles); writeError != nil {
		return writeError
	}
	store.profiles = changedProfiles
	return nil
}

func (store *Store) acquireFileLock(executionContext context.Context) (func(), error) {
	if directoryError := os.MkdirAll(filepath.Dir(store.path), storeDirectoryPermissionsConstant); directoryError != nil {
		return nil, fmt.Errorf(storeWriteErrorTemplateConstant, store.path, directoryError)
	}

	lockPath := store.path + storeLockSuffixConstant
	fileLock := flock.New(lockPath)

	lockContext, cancel := context.WithTimeout(executionContext, store.lockTimeout)
	defer cancel()

	locked, lockError := fileLock.TryLockContext(lockContext, lockRetryDelayConstant)
	if lockError != nil {
		if errors.Is(lockError, context.DeadlineExceeded) {
			return nil, fmt.Errorf(storeLockTimeoutErrorTemplateConstant, lockPath)
		}
		return nil, fmt.Errorf(storeLockErrorTemplateConstant, lockPath, lockError)
	}
	if !locked {
		return nil, fmt.Errorf(storeLockTimeoutErrorTemplateConstant, lockPath)
	}

	return func() {
		if unlockError := fileLock.Unlock(); unlockError != nil {
			store.logger.Warn(storeUnlockFailedMessageConstant, zap.String(logFieldStorePathConstant, lockPath), zap.Error(unlockError))
		}
	}, nil
}

func (store *Store) readProfiles() []Profile {
	contents, readError := os.ReadFile(store.path)
	if readError != nil {
		if !errors.Is(readError, os.ErrNotExist) {
			store.logger.Warn(storeCorruptMessageConstant, zap.String(logFieldStorePathConstant, store.path), zap.Error(fmt.Errorf(storeReadErrorTemplateConstant, store.path, readError)))
		}
		return []Profile{}
	}

	var loadedProfiles []Profile
	if decodeError := json.Unmarshal(contents, &loadedProfiles); decodeError != nil {
		store.logger.Warn(storeCorruptMessageConstant, zap.String(logFieldStorePathConstant, store.path), zap.Error(decodeError))
		return []Profile{}
	}
	if loadedProfiles == nil {
		return []Profile{}
	}
	return loadedProfiles
}

// writeProfiles replaces the backing file through a uniquely named temporary file and a rename.
func (store *Store) writeProfiles(profiles []Profile) error {
	encoded, encodeError := json.MarshalIndent(profiles, storeJSONPrefixConstant, storeJSONIndentConstant)
	if encodeError != nil {
		return fmt.Errorf(storeEncodeErrorTemplateConstant, encodeError)
	}

	temporaryPath := fmt.Sprintf(storeTemporaryFileTemplateConstant, store.path, uuid.NewString())
	if writeError := os.WriteFile(temporaryPath, encoded, storeFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(storeWriteErrorTemplateConstant, store.path, writeError)
	}
	if renameError := os.Rename(temporaryPath, store.path); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(storeWriteErrorTemplateConstant, store.path, renameError)
	}
	return nil
}

func indexOf(profiles []Profile, name string) int {
	for profileIndex, profile := range profiles {
		if SameName(profile.Name, name) {
			return profileIndex
		}
	}
	return -1
}
