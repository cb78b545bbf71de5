package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitid/internal/githubapi"
	"github.com/temirov/gitid/internal/profiles"
	"github.com/temirov/gitid/internal/prompt"
)

// AddMode selects how a new profile is populated.
type AddMode string

// Supported add modes.
const (
	AddModeUnspecified AddMode = ""
	AddModeGitHub      AddMode = "github"
	AddModeManual      AddMode = "manual"
)

const (
	providerMissingMessageConstant   = "identity provider connector not configured"
	nameLabelConstant                = "Profile name (e.g. work, personal):"
	nameFieldConstant                = "profile name"
	userLabelConstant                = "Git user name:"
	userFieldConstant                = "user name"
	emailLabelConstant               = "Git email:"
	emailFieldConstant               = "email"
	accountLabelConstant             = "GitHub username (optional, for the SSH alias):"
	generateKeyLabelConstant         = "Generate an SSH key for this profile?"
	modeTitleConstant                = "How do you want to set up this profile?"
	modeGitHubLabelConstant          = "Sign in with GitHub (recommended)"
	modeManualLabelConstant          = "Manual setup"
	invalidEmailMessageConstant      = "email must contain @"
	duplicateNameTemplateConstant    = "%w: %s"
	authenticatedHintTemplate        = "Authenticated as %s"
	keyGeneratedTemplateConstant     = "Generated SSH key %s"
	keyUploadedConstant              = "SSH key uploaded to GitHub."
	keyAlreadyUploadedConstant       = "SSH key already present on GitHub."
	keyUploadWarningTemplate         = "could not upload SSH key: %v"
	keyUploadManualHintTemplate      = "Add %s to your GitHub account manually."
	agentAddedConstant               = "SSH key added to the agent."
	agentWarningTemplateConstant     = "could not add SSH key to the agent: %v"
	manualKeyWarningTemplateConstant = "could not set up SSH key: %v"
	manualKeyUploadHintTemplate      = "Upload %s to GitHub to use this key."
	profileCreatedTemplateConstant   = "Profile %q created."
	keyTitleTemplateConstant         = "git-id: %s (%s)"
	keyTitleDateLayoutConstant       = "2006-01-02"
	keyUploadFailedMessage           = "public key upload failed"
	agentAddFailedMessage            = "adding key to agent failed"
	manualKeySetupFailedMessage      = "manual key setup failed"
	logFieldLoginConstant            = "login"
)

// ErrProviderNotConfigured indicates the GitHub flow was requested without a connector.
var ErrProviderNotConfigured = errors.New(providerMissingMessageConstant)

// AddOptions carry values supplied on the command line; empty fields are prompted for.
type AddOptions struct {
	Name        string
	Mode        AddMode
	UserName    string
	Email       string
	Account     string
	GenerateKey *bool
}

// Add creates a new profile through the GitHub or the manual flow.
func (service *Service) Add(executionContext context.Context, options AddOptions) (profiles.Profile, error) {
	name, nameError := service.resolveNewName(options.Name)
	if nameError != nil {
		return profiles.Profile{}, nameError
	}

	mode, modeError := service.resolveMode(options.Mode)
	if modeError != nil {
		return profiles.Profile{}, modeError
	}

	var profile profiles.Profile
	var flowError error
	switch mode {
	case AddModeGitHub:
		profile, flowError = service.addFromProvider(executionContext, name)
	default:
		profile, flowError = service.addManually(executionContext, name, options)
	}
	if flowError != nil {
		return profiles.Profile{}, flowError
	}

	service.reporter.Success(profileCreatedTemplateConstant, profile.Name)
	service.reportProfileDetails(profile)
	if profile.SSHKeyConfigured {
		service.reporter.Hint(aliasUsageHintTemplateConstant, service.keys.Layout().HostAlias(profile.Name), aliasOwner(profile))
	}
	return profile, nil
}

func (service *Service) resolveNewName(candidate string) (string, error) {
	validator := prompt.All(prompt.Required(nameFieldConstant), profiles.ValidateName, service.uniqueName)
	if len(strings.TrimSpace(candidate)) > 0 {
		trimmed := strings.TrimSpace(candidate)
		if validationError := validator(trimmed); validationError != nil {
			return "", validationError
		}
		return trimmed, nil
	}
	answer, inputError := service.prompter.Input(nameLabelConstant, "", validator)
	if inputError != nil {
		return "", inputError
	}
	return strings.TrimSpace(answer), nil
}

func (service *Service) uniqueName(name string) error {
	if _, findError := service.store.Find(name); findError == nil {
		return fmt.Errorf(duplicateNameTemplateConstant, profiles.ErrDuplicateName, name)
	}
	return nil
}

func (service *Service) resolveMode(mode AddMode) (AddMode, error) {
	if mode != AddModeUnspecified {
		return mode, nil
	}
	selected, selectError := service.selector.Select(modeTitleConstant, []prompt.SelectOption{
		{Label: modeGitHubLabelConstant, Value: string(AddModeGitHub)},
		{Label: modeManualLabelConstant, Value: string(AddModeManual)},
	})
	if selectError != nil {
		return AddModeUnspecified, selectError
	}
	return AddMode(selected.Value), nil
}

func (service *Service) addFromProvider(executionContext context.Context, name string) (profiles.Profile, error) {
	if service.provider == nil {
		return profiles.Profile{}, ErrProviderNotConfigured
	}

	account, connectError := service.provider(executionContext)
	if connectError != nil {
		return profiles.Profile{}, connectError
	}

	user, userError := account.AuthenticatedUser(executionContext)
	if userError != nil {
		return profiles.Profile{}, userError
	}
	service.reporter.Hint(authenticatedHintTemplate, user.Login)

	email, emailError := account.PrimaryEmail(executionContext, user.Login)
	if emailError != nil {
		return profiles.Profile{}, emailError
	}

	keyPair, generateError := service.keys.Generate(executionContext, email, name)
	if generateError != nil {
		return profiles.Profile{}, generateError
	}
	service.reporter.Success(keyGeneratedTemplateConstant, keyPair.PublicKeyPath)

	service.uploadKey(executionContext, account, name, user, keyPair.PublicKey, keyPair.PublicKeyPath)

	if aliasError := service.keys.ConfigureAlias(executionContext, name); aliasError != nil {
		return profiles.Profile{}, aliasError
	}
	service.addToAgent(name)

	return service.store.Add(executionContext, profiles.Profile{
		Name:             name,
		UserName:         user.DisplayName(),
		Email:            email,
		LinkedAccount:    user.Login,
		SSHKeyConfigured: true,
		CreatedAt:        service.clock(),
	})
}

func (service *Service) uploadKey(executionContext context.Context, account ProviderAccount, name string, user githubapi.User, publicKey string, publicKeyPath string) {
	title := fmt.Sprintf(keyTitleTemplateConstant, name, service.clock().Format(keyTitleDateLayoutConstant))
	result, uploadError := account.UploadPublicKey(executionContext, title, publicKey)
	if uploadError != nil {
		service.logger.Warn(keyUploadFailedMessage,
			zap.String(logFieldProfileConstant, name),
			zap.String(logFieldLoginConstant, user.Login),
			zap.Error(uploadError),
		)
		service.reporter.Warning(keyUploadWarningTemplate, uploadError)
		service.reporter.Hint(keyUploadManualHintTemplate, publicKeyPath)
		return
	}
	if result.AlreadyExists {
		service.reporter.Success(keyAlreadyUploadedConstant)
		return
	}
	service.reporter.Success(keyUploadedConstant)
}

func (service *Service) addToAgent(name string) {
	added, agentError := service.keys.AddToAgent(name)
	if agentError != nil {
		service.logger.Warn(agentAddFailedMessage, zap.String(logFieldProfileConstant, name), zap.Error(agentError))
		service.reporter.Warning(agentWarningTemplateConstant, agentError)
		return
	}
	if added {
		service.reporter.Success(agentAddedConstant)
	}
}

func (service *Service) addManually(executionContext context.Context, name string, options AddOptions) (profiles.Profile, error) {
	userName, userError := service.valueOrPrompt(options.UserName, userLabelConstant, prompt.Required(userFieldConstant))
	if userError != nil {
		return profiles.Profile{}, userError
	}
	email, emailError := service.valueOrPrompt(options.Email, emailLabelConstant, prompt.All(prompt.Required(emailFieldConstant), validateEmail))
	if emailError != nil {
		return profiles.Profile{}, emailError
	}

	interactive := len(strings.TrimSpace(options.UserName)) == 0 || len(strings.TrimSpace(options.Email)) == 0
	account := strings.TrimSpace(options.Account)
	if len(account) == 0 && interactive {
		answer, accountError := service.prompter.Input(accountLabelConstant, "", nil)
		if accountError != nil {
			return profiles.Profile{}, accountError
		}
		account = strings.TrimSpace(answer)
	}

	generateKey := true
	if options.GenerateKey != nil {
		generateKey = *options.GenerateKey
	} else {
		confirmed, confirmError := service.prompter.Confirm(generateKeyLabelConstant, true)
		if confirmError != nil {
			return profiles.Profile{}, confirmError
		}
		generateKey = confirmed
	}

	sshConfigured := false
	if generateKey {
		sshConfigured = service.provisionManualKey(executionContext, name, email, account)
	}

	return service.store.Add(executionContext, profiles.Profile{
		Name:             name,
		UserName:         userName,
		Email:            email,
		LinkedAccount:    account,
		SSHKeyConfigured: sshConfigured,
		CreatedAt:        service.clock(),
	})
}

// provisionManualKey reports whether the host alias ended up configured.
func (service *Service) provisionManualKey(executionContext context.Context, name string, email string, account string) bool {
	keyPair, generateError := service.keys.Generate(executionContext, email, name)
	if generateError != nil {
		service.logger.Warn(manualKeySetupFailedMessage, zap.String(logFieldProfileConstant, name), zap.Error(generateError))
		service.reporter.Warning(manualKeyWarningTemplateConstant, generateError)
		return false
	}
	service.reporter.Success(keyGeneratedTemplateConstant, keyPair.PublicKeyPath)
	service.reporter.Hint(manualKeyUploadHintTemplate, keyPair.PublicKeyPath)

	if len(account) == 0 {
		return false
	}
	if aliasError := service.keys.ConfigureAlias(executionContext, name); aliasError != nil {
		service.logger.Warn(manualKeySetupFailedMessage, zap.String(logFieldProfileConstant, name), zap.Error(aliasError))
		service.reporter.Warning(manualKeyWarningTemplateConstant, aliasError)
		return false
	}
	service.addToAgent(name)
	return true
}

func (service *Service) valueOrPrompt(value string, label string, validator prompt.Validator) (string, error) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) > 0 {
		if validationError := validator(trimmed); validationError != nil {
			return "", validationError
		}
		return trimmed, nil
	}
	answer, inputError := service.prompter.Input(label, "", validator)
	if inputError != nil {
		return "", inputError
	}
	return strings.TrimSpace(answer), nil
}

func validateEmail(value string) error {
	if !strings.Contains(value, "@") {
		return errors.New(invalidEmailMessageConstant)
	}
	return nil
}
