package profiles_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitid/internal/profiles"
)

const (
	testStoreFileNameConstant    = "profiles.json"
	testWorkProfileNameConstant  = "work"
	testWorkUserNameConstant     = "Work User"
	testWorkEmailConstant        = "w@x.com"
	testPersonalProfileConstant  = "personal"
	testPersonalEmailConstant    = "p@x.com"
	testPersonalUserNameConstant = "Personal User"
)

var testFixedTime = time.Date(2025, time.March, 4, 5, 6, 7, 0, time.UTC)

func newTestStore(testInstance *testing.T, storePath string) *profiles.Store {
	testInstance.Helper()
	store, creationError := profiles.NewStore(profiles.StoreOptions{
		Path:  storePath,
		Clock: func() time.Time { return testFixedTime },
	})
	require.NoError(testInstance, creationError)
	return store
}

func workProfile() profiles.Profile {
	return profiles.Profile{Name: testWorkProfileNameConstant, UserName: testWorkUserNameConstant, Email: testWorkEmailConstant}
}

func personalProfile() profiles.Profile {
	return profiles.Profile{Name: testPersonalProfileConstant, UserName: testPersonalUserNameConstant, Email: testPersonalEmailConstant, SSHKeyConfigured: true}
}

func TestStoreAddAndFind(testInstance *testing.T) {
	storePath := filepath.Join(testInstance.TempDir(), testStoreFileNameConstant)
	store := newTestStore(testInstance, storePath)

	addedProfile, addError := store.Add(context.Background(), workProfile())
	require.NoError(testInstance, addError)
	require.Equal(testInstance, testFixedTime, addedProfile.CreatedAt)

	for _, lookupName := range []string{"work", "WORK", "Work"} {
		foundProfile, findError := store.Find(lookupName)
		require.NoError(testInstance, findError)
		require.Equal(testInstance, addedProfile, foundProfile)
	}

	reloadedStore := newTestStore(testInstance, storePath)
	reloadedProfile, findError := reloadedStore.Find(testWorkProfileNameConstant)
	require.NoError(testInstance, findError)
	require.True(testInstance, addedProfile.CreatedAt.Equal(reloadedProfile.CreatedAt))
	require.Equal(testInstance, addedProfile.Email, reloadedProfile.Email)
}

func TestStoreAddValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		profile       profiles.Profile
		expectedError error
	}{
		{
			name:          "duplicate_name_differing_in_case",
			profile:       profiles.Profile{Name: "WoRk", UserName: "Other", Email: "o@x.com"},
			expectedError: profiles.ErrDuplicateName,
		},
		{
			name:          "invalid_characters",
			profile:       profiles.Profile{Name: "my work", UserName: "User", Email: "u@x.com"},
			expectedError: profiles.ErrInvalidName,
		},
		{
			name:          "empty_name",
			profile:       profiles.Profile{UserName: "User", Email: "u@x.com"},
			expectedError: profiles.ErrInvalidName,
		},
		{
			name:          "missing_email",
			profile:       profiles.Profile{Name: "side", UserName: "User"},
			expectedError: profiles.ErrInvalidProfile,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			store := newTestStore(testInstance, filepath.Join(testInstance.TempDir(), testStoreFileNameConstant))
			_, addError := store.Add(context.Background(), workProfile())
			require.NoError(testInstance, addError)

			_, addError = store.Add(context.Background(), testCase.profile)
			require.ErrorIs(testInstance, addError, testCase.expectedError)
			require.Len(testInstance, store.List(), 1)
		})
	}
}

func TestStoreListPreservesOrderAndReturnsCopy(testInstance *testing.T) {
	store := newTestStore(testInstance, filepath.Join(testInstance.TempDir(), testStoreFileNameConstant))
	_, addError := store.Add(context.Background(), workProfile())
	require.NoError(testInstance, addError)
	_, addError = store.Add(context.Background(), personalProfile())
	require.NoError(testInstance, addError)

	listedProfiles := store.List()
	require.Equal(testInstance, []string{testWorkProfileNameConstant, testPersonalProfileConstant}, store.Names())

	listedProfiles[0].Email = "changed@x.com"
	foundProfile, findError := store.Find(testWorkProfileNameConstant)
	require.NoError(testInstance, findError)
	require.Equal(testInstance, testWorkEmailConstant, foundProfile.Email)
}

func TestStoreUpdate(testInstance *testing.T) {
	storePath := filepath.Join(testInstance.TempDir(), testStoreFileNameConstant)
	store := newTestStore(testInstance, storePath)
	_, addError := store.Add(context.Background(), workProfile())
	require.NoError(testInstance, addError)

	updatedEmail := "new@x.com"
	sshConfigured := true
	updatedProfile, updateError := store.Update(context.Background(), "WORK", profiles.ProfileUpdate{Email: &updatedEmail, SSHKeyConfigured: &sshConfigured})
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, updatedEmail, updatedProfile.Email)
	require.Equal(testInstance, testWorkUserNameConstant, updatedProfile.UserName)
	require.True(testInstance, updatedProfile.SSHKeyConfigured)

	reloadedProfile, findError := newTestStore(testInstance, storePath).Find(testWorkProfileNameConstant)
	require.NoError(testInstance, findError)
	require.Equal(testInstance, updatedEmail, reloadedProfile.Email)

	_, updateError = store.Update(context.Background(), "missing", profiles.ProfileUpdate{Email: &updatedEmail})
	require.ErrorIs(testInstance, updateError, profiles.ErrNotFound)

	emptyEmail := ""
	_, updateError = store.Update(context.Background(), testWorkProfileNameConstant, profiles.ProfileUpdate{Email: &emptyEmail})
	require.ErrorIs(testInstance, updateError, profiles.ErrInvalidProfile)
}

func TestStoreDelete(testInstance *testing.T) {
	store := newTestStore(testInstance, filepath.Join(testInstance.TempDir(), testStoreFileNameConstant))
	_, addError := store.Add(context.Background(), workProfile())
	require.NoError(testInstance, addError)
	_, addError = store.Add(context.Background(), personalProfile())
	require.NoError(testInstance, addError)

	require.NoError(testInstance, store.Delete(context.Background(), "Work"))
	_, findError := store.Find(testWorkProfileNameConstant)
	require.ErrorIs(testInstance, findError, profiles.ErrNotFound)
	require.ErrorIs(testInstance, store.Delete(context.Background(), testWorkProfileNameConstant), profiles.ErrNotFound)

	require.NoError(testInstance, store.DeleteAll(context.Background()))
	require.Empty(testInstance, store.List())
	require.NoError(testInstance, store.DeleteAll(context.Background()))
	require.Empty(testInstance, store.List())
}

func TestStoreTreatsCorruptFileAsEmpty(testInstance *testing.T) {
	storePath := filepath.Join(testInstance.TempDir(), testStoreFileNameConstant)
	require.NoError(testInstance, os.WriteFile(storePath, []byte("{not json"), 0o600))

	observerCore, observerLogs := observer.New(zap.WarnLevel)
	store, creationError := profiles.NewStore(profiles.StoreOptions{Path: storePath, Logger: zap.New(observerCore)})
	require.NoError(testInstance, creationError)
	require.Empty(testInstance, store.List())
	require.Equal(testInstance, 1, observerLogs.Len())

	_, addError := store.Add(context.Background(), workProfile())
	require.NoError(testInstance, addError)
	require.Len(testInstance, newTestStore(testInstance, storePath).List(), 1)
}

func TestStoreMissingFileIsEmpty(testInstance *testing.T) {
	storePath := filepath.Join(testInstance.TempDir(), "nested", "dir", testStoreFileNameConstant)
	store := newTestStore(testInstance, storePath)
	require.Empty(testInstance, store.List())

	_, addError := store.Add(context.Background(), workProfile())
	require.NoError(testInstance, addError)

	fileInfo, statError := os.Stat(storePath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o600), fileInfo.Mode().Perm())
}

func TestStoreSerializesConcurrentWriters(testInstance *testing.T) {
	storePath := filepath.Join(testInstance.TempDir(), testStoreFileNameConstant)
	firstStore := newTestStore(testInstance, storePath)
	secondStore := newTestStore(testInstance, storePath)

	addErrors := make([]error, 10)
	var waitGroup sync.WaitGroup
	for profileIndex := 0; profileIndex < 10; profileIndex++ {
		waitGroup.Add(1)
		go func(profileIndex int) {
			defer waitGroup.Done()
			targetStore := firstStore
			if profileIndex%2 == 1 {
				targetStore = secondStore
			}
			profile := profiles.Profile{Name: "p" + string(rune('a'+profileIndex)), UserName: "User", Email: "u@x.com"}
			_, addErrors[profileIndex] = targetStore.Add(context.Background(), profile)
		}(profileIndex)
	}
	waitGroup.Wait()

	for _, addError := range addErrors {
		require.NoError(testInstance, addError)
	}

	require.Len(testInstance, newTestStore(testInstance, storePath).List(), 10)
}

func TestNewStoreRequiresPath(testInstance *testing.T) {
	_, creationError := profiles.NewStore(profiles.StoreOptions{})
	require.ErrorIs(testInstance, creationError, profiles.ErrStorePathRequired)
}
