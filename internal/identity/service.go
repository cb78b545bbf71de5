package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/gitid/internal/gitconfig"
	"github.com/temirov/gitid/internal/profiles"
	"github.com/temirov/gitid/internal/prompt"
	"github.com/temirov/gitid/internal/router"
	"github.com/temirov/gitid/internal/ui"
)

const (
	storeMissingMessageConstant     = "identity service profile store not configured"
	applierMissingMessageConstant   = "identity service identity applier not configured"
	keysMissingMessageConstant      = "identity service key manager not configured"
	promptMissingMessageConstant    = "identity service prompter not configured"
	selectorMissingMessageConstant  = "identity service selector not configured"
	routerMissingMessageConstant    = "identity service git router not configured"
	noProfilesHintConstant          = "No profiles configured. Run `git-id add` to create one."
	noProfilesToDeleteHintConstant  = "No profiles to delete."
	noSSHProfilesHintConstant       = "No profiles with SSH keys configured."
	noIdentityHintConstant          = "No Git identity configured for this repository."
	cancelledHintConstant           = "Cancelled."
	notSetValueConstant             = "(not set)"
	unknownUsernameConstant         = "(unknown)"
	selectProfileTitleConstant      = "Select a profile:"
	selectDeleteTitleConstant       = "Select profile to delete:"
	selectTestTitleConstant         = "Select profile to test:"
	selectCloneTitleConstant        = "Select profile for cloning:"
	profileOptionTemplateConstant   = "%s - %s <%s>%s"
	sshTagConstant                  = " [SSH]"
	currentMarkerConstant           = " ← current"
	profileHeadingConstant          = "Configured Git Profiles:"
	currentIdentityHeadingConstant  = "Current Git Identity:"
	userDetailTemplateConstant      = "User:   %s"
	emailDetailTemplateConstant     = "Email:  %s"
	accountDetailTemplateConstant   = "GitHub: %s"
	matchingProfileTemplateConstant = "Profile: %s"
	appliedTemplateConstant         = "Applied profile %q (%s)"
	aliasUsageHintTemplateConstant  = "SSH: use git@%s:%s/repo.git for cloning"
	aliasAccountPlaceholderConstant = "<owner>"
	deleteOneQuestionTemplate       = "Delete profile %q?"
	deleteAllQuestionTemplate       = "Delete ALL %d profiles?"
	deletedTemplateConstant         = "Profile %q deleted."
	deletedAllConstant              = "Deleted all profiles."
	aliasRemovalWarningTemplate     = "could not remove SSH host alias for %q: %v"
	keyRemovalWarningTemplate       = "could not remove SSH key files for %q: %v"
	testingTemplateConstant         = "Testing SSH connection for %q..."
	authenticatedTemplateConstant   = "Successfully authenticated as: %s"
	sshProfileMissingTemplate       = "profile %q not found or has no SSH key"
	cloneCommandConstant            = "clone"
	profileFlagConstant             = "--profile"
	artifactRemovalFailedMessage    = "failed to remove profile artifact"
	logFieldProfileConstant         = "profile"
	logFieldArtifactConstant        = "artifact"
	artifactAliasConstant           = "ssh_alias"
	artifactKeyFilesConstant        = "ssh_key_files"
)

var (
	// ErrProfileStoreNotConfigured indicates a missing ProfileStore.
	ErrProfileStoreNotConfigured = errors.New(storeMissingMessageConstant)
	// ErrIdentityApplierNotConfigured indicates a missing IdentityApplier.
	ErrIdentityApplierNotConfigured = errors.New(applierMissingMessageConstant)
	// ErrKeyManagerNotConfigured indicates a missing KeyManager.
	ErrKeyManagerNotConfigured = errors.New(keysMissingMessageConstant)
	// ErrPrompterNotConfigured indicates a missing Prompter.
	ErrPrompterNotConfigured = errors.New(promptMissingMessageConstant)
	// ErrSelectorNotConfigured indicates a missing OptionSelector.
	ErrSelectorNotConfigured = errors.New(selectorMissingMessageConstant)
	// ErrGitRouterNotConfigured indicates a missing GitRouter.
	ErrGitRouterNotConfigured = errors.New(routerMissingMessageConstant)
)

// Dependencies wires collaborators for Service.
type Dependencies struct {
	Store    ProfileStore
	Applier  IdentityApplier
	Keys     KeyManager
	Provider ProviderConnector
	Router   GitRouter
	Prompter Prompter
	Selector OptionSelector
	Remotes  RemoteBinder
	Reporter *ui.Reporter
	Logger   *zap.Logger
	Clock    func() time.Time
}

// Service implements the profile workflows.
type Service struct {
	store    ProfileStore
	applier  IdentityApplier
	keys     KeyManager
	provider ProviderConnector
	router   GitRouter
	prompter Prompter
	selector OptionSelector
	remotes  RemoteBinder
	reporter *ui.Reporter
	logger   *zap.Logger
	clock    func() time.Time
}

// NewService constructs a Service. The provider connector and remote binder are optional; only the GitHub
// add flow and Remote need them.
func NewService(dependencies Dependencies) (*Service, error) {
	switch {
	case dependencies.Store == nil:
		return nil, ErrProfileStoreNotConfigured
	case dependencies.Applier == nil:
		return nil, ErrIdentityApplierNotConfigured
	case dependencies.Keys == nil:
		return nil, ErrKeyManagerNotConfigured
	case dependencies.Router == nil:
		return nil, ErrGitRouterNotConfigured
	case dependencies.Prompter == nil:
		return nil, ErrPrompterNotConfigured
	case dependencies.Selector == nil:
		return nil, ErrSelectorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = ui.NewReporter(nil, nil)
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		store:    dependencies.Store,
		applier:  dependencies.Applier,
		keys:     dependencies.Keys,
		provider: dependencies.Provider,
		router:   dependencies.Router,
		prompter: dependencies.Prompter,
		selector: dependencies.Selector,
		remotes:  dependencies.Remotes,
		reporter: reporter,
		logger:   logger,
		clock:    clock,
	}, nil
}

// List prints every profile, marking the one matching the effective identity in workingDirectory.
func (service *Service) List(executionContext context.Context, workingDirectory string) error {
	storedProfiles := service.store.List()
	if len(storedProfiles) == 0 {
		service.reporter.Hint(noProfilesHintConstant)
		return nil
	}

	identity := service.applier.EffectiveIdentity(executionContext, workingDirectory)

	service.reporter.Line("%s", ui.BoldStyle.Render(profileHeadingConstant))
	for _, profile := range storedProfiles {
		marker := ""
		if profile.Email == identity.Email && profile.UserName == identity.UserName {
			marker = ui.SuccessStyle.Render(currentMarkerConstant)
		}
		sshTag := ""
		if profile.SSHKeyConfigured {
			sshTag = ui.InfoStyle.Render(sshTagConstant)
		}

		service.reporter.Line("")
		service.reporter.Line("%s%s%s", ui.BoldStyle.Render(profile.Name), marker, sshTag)
		service.reportProfileDetails(profile)
	}
	return nil
}

// UseOptions configure Use.
type UseOptions struct {
	Name             string
	Global           bool
	WorkingDirectory string
}

// Use applies a profile's identity at local or global scope.
func (service *Service) Use(executionContext context.Context, options UseOptions) error {
	storedProfiles := service.store.List()
	if len(storedProfiles) == 0 {
		service.reporter.Hint(noProfilesHintConstant)
		return nil
	}

	profile, resolveError := service.resolveProfile(options.Name, storedProfiles, selectProfileTitleConstant)
	if resolveError != nil {
		return resolveError
	}

	scope := gitconfig.ScopeLocal
	if options.Global {
		scope = gitconfig.ScopeGlobal
	}
	applyError := service.applier.Apply(executionContext, gitconfig.ApplyOptions{
		Profile:          profile,
		Scope:            scope,
		WorkingDirectory: options.WorkingDirectory,
	})
	if applyError != nil {
		return applyError
	}

	service.reporter.Success(appliedTemplateConstant, profile.Name, scope)
	service.reporter.Detail(userDetailTemplateConstant, profile.UserName)
	service.reporter.Detail(emailDetailTemplateConstant, profile.Email)
	if profile.SSHKeyConfigured {
		service.reporter.Hint(aliasUsageHintTemplateConstant, service.keys.Layout().HostAlias(profile.Name), aliasOwner(profile))
	}
	return nil
}

// Current prints the effective identity and the profile it belongs to.
func (service *Service) Current(executionContext context.Context, workingDirectory string) error {
	identity := service.applier.EffectiveIdentity(executionContext, workingDirectory)
	if len(identity.UserName) == 0 && len(identity.Email) == 0 {
		service.reporter.Hint(noIdentityHintConstant)
		return nil
	}

	service.reporter.Line("%s", ui.BoldStyle.Render(currentIdentityHeadingConstant))
	service.reporter.Detail(userDetailTemplateConstant, valueOrNotSet(identity.UserName))
	service.reporter.Detail(emailDetailTemplateConstant, valueOrNotSet(identity.Email))

	for _, profile := range service.store.List() {
		if len(identity.Email) > 0 && profile.Email == identity.Email {
			service.reporter.Success(matchingProfileTemplateConstant, profile.Name)
			break
		}
	}
	return nil
}

// DeleteOptions configure Delete.
type DeleteOptions struct {
	Name      string
	All       bool
	AssumeYes bool
}

// Delete removes one or all profiles together with their SSH aliases and key files.
// Alias and key removal are best effort; a failure there is reported and the profile is still removed.
func (service *Service) Delete(executionContext context.Context, options DeleteOptions) error {
	storedProfiles := service.store.List()
	if len(storedProfiles) == 0 {
		service.reporter.Hint(noProfilesToDeleteHintConstant)
		return nil
	}

	if options.All {
		confirmed, confirmError := service.confirm(fmt.Sprintf(deleteAllQuestionTemplate, len(storedProfiles)), options.AssumeYes)
		if confirmError != nil || !confirmed {
			return confirmError
		}
		for _, profile := range storedProfiles {
			service.removeArtifacts(executionContext, profile.Name)
		}
		if deleteError := service.store.DeleteAll(executionContext); deleteError != nil {
			return deleteError
		}
		service.reporter.Success(deletedAllConstant)
		return nil
	}

	profile, resolveError := service.resolveProfile(options.Name, storedProfiles, selectDeleteTitleConstant)
	if resolveError != nil {
		return resolveError
	}

	confirmed, confirmError := service.confirm(fmt.Sprintf(deleteOneQuestionTemplate, profile.Name), options.AssumeYes)
	if confirmError != nil || !confirmed {
		return confirmError
	}

	service.removeArtifacts(executionContext, profile.Name)
	if deleteError := service.store.Delete(executionContext, profile.Name); deleteError != nil {
		return deleteError
	}
	service.reporter.Success(deletedTemplateConstant, profile.Name)
	return nil
}

// Test checks SSH authentication for an SSH-enabled profile.
func (service *Service) Test(executionContext context.Context, name string) error {
	profile, found, resolveError := service.resolveSSHProfile(name, selectTestTitleConstant)
	if resolveError != nil || !found {
		return resolveError
	}

	service.reporter.Hint(testingTemplateConstant, profile.Name)
	result := service.keys.TestConnection(executionContext, profile.Name)
	if !result.Success {
		return result.Err(profile.Name)
	}

	username := result.Username
	if len(username) == 0 {
		username = unknownUsernameConstant
	}
	service.reporter.Success(authenticatedTemplateConstant, username)
	return nil
}

// CloneOptions configure Clone.
type CloneOptions struct {
	URL       string
	Directory string
	Profile   string
}

// Clone clones URL under a profile, selecting one interactively when none is given.
func (service *Service) Clone(executionContext context.Context, options CloneOptions) error {
	storedProfiles := service.store.List()
	if len(storedProfiles) == 0 {
		service.reporter.Hint(noProfilesHintConstant)
		return nil
	}

	profile, resolveError := service.resolveProfile(options.Profile, storedProfiles, selectCloneTitleConstant)
	if resolveError != nil {
		return resolveError
	}

	arguments := []string{cloneCommandConstant, options.URL}
	if len(options.Directory) > 0 {
		arguments = append(arguments, options.Directory)
	}
	arguments = append(arguments, profileFlagConstant, profile.Name)
	return service.router.Route(executionContext, arguments)
}

// Git runs an arbitrary git invocation through the profile router.
func (service *Service) Git(executionContext context.Context, arguments []string) error {
	return service.router.Route(executionContext, arguments)
}

func (service *Service) reportProfileDetails(profile profiles.Profile) {
	service.reporter.Detail(userDetailTemplateConstant, profile.UserName)
	service.reporter.Detail(emailDetailTemplateConstant, profile.Email)
	if len(profile.LinkedAccount) > 0 {
		service.reporter.Detail(accountDetailTemplateConstant, profile.LinkedAccount)
	}
}

func (service *Service) resolveProfile(name string, candidates []profiles.Profile, selectionTitle string) (profiles.Profile, error) {
	if len(strings.TrimSpace(name)) == 0 {
		return service.selectProfile(candidates, selectionTitle)
	}
	profile, found := findProfile(candidates, name)
	if !found {
		return profiles.Profile{}, router.ProfileNotFoundError{Name: name, Known: profileNames(candidates)}
	}
	return profile, nil
}

// resolveSSHProfile returns false without an error when no profile has an SSH key.
func (service *Service) resolveSSHProfile(name string, selectionTitle string) (profiles.Profile, bool, error) {
	sshProfiles := make([]profiles.Profile, 0)
	for _, profile := range service.store.List() {
		if profile.SSHKeyConfigured {
			sshProfiles = append(sshProfiles, profile)
		}
	}
	if len(sshProfiles) == 0 {
		service.reporter.Hint(noSSHProfilesHintConstant)
		return profiles.Profile{}, false, nil
	}

	if len(strings.TrimSpace(name)) == 0 {
		selectedProfile, selectError := service.selectProfile(sshProfiles, selectionTitle)
		if selectError != nil {
			return profiles.Profile{}, false, selectError
		}
		return selectedProfile, true, nil
	}
	foundProfile, found := findProfile(sshProfiles, name)
	if !found {
		return profiles.Profile{}, false, fmt.Errorf(sshProfileMissingTemplate, name)
	}
	return foundProfile, true, nil
}

func (service *Service) selectProfile(candidates []profiles.Profile, title string) (profiles.Profile, error) {
	options := make([]prompt.SelectOption, 0, len(candidates))
	for _, candidate := range candidates {
		sshTag := ""
		if candidate.SSHKeyConfigured {
			sshTag = sshTagConstant
		}
		options = append(options, prompt.SelectOption{
			Label: fmt.Sprintf(profileOptionTemplateConstant, candidate.Name, candidate.UserName, candidate.Email, sshTag),
			Value: candidate.Name,
		})
	}

	selected, selectError := service.selector.Select(title, options)
	if selectError != nil {
		return profiles.Profile{}, selectError
	}
	profile, _ := findProfile(candidates, selected.Value)
	return profile, nil
}

func (service *Service) confirm(question string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	confirmed, confirmError := service.prompter.Confirm(question, false)
	if confirmError != nil {
		return false, confirmError
	}
	if !confirmed {
		service.reporter.Hint(cancelledHintConstant)
	}
	return confirmed, nil
}

func (service *Service) removeArtifacts(executionContext context.Context, profileName string) {
	if aliasError := service.keys.RemoveAlias(executionContext, profileName); aliasError != nil {
		service.warnArtifactFailure(profileName, artifactAliasConstant, aliasError)
		service.reporter.Warning(aliasRemovalWarningTemplate, profileName, aliasError)
	}
	if keyError := service.keys.DeleteKeyFiles(profileName); keyError != nil {
		service.warnArtifactFailure(profileName, artifactKeyFilesConstant, keyError)
		service.reporter.Warning(keyRemovalWarningTemplate, profileName, keyError)
	}
}

func (service *Service) warnArtifactFailure(profileName string, artifact string, failure error) {
	service.logger.Warn(artifactRemovalFailedMessage,
		zap.String(logFieldProfileConstant, profileName),
		zap.String(logFieldArtifactConstant, artifact),
		zap.Error(failure),
	)
}

func findProfile(candidates []profiles.Profile, name string) (profiles.Profile, bool) {
	for _, candidate := range candidates {
		if profiles.SameName(candidate.Name, name) {
			return candidate, true
		}
	}
	return profiles.Profile{}, false
}

func profileNames(candidates []profiles.Profile) []string {
	names := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		names = append(names, candidate.Name)
	}
	return names
}

func aliasOwner(profile profiles.Profile) string {
	if len(profile.LinkedAccount) > 0 {
		return profile.LinkedAccount
	}
	return aliasAccountPlaceholderConstant
}

func valueOrNotSet(value string) string {
	if len(value) == 0 {
		return notSetValueConstant
	}
	return value
}
