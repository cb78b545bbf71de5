package identity

import (
	"context"
	"errors"

	"github.com/temirov/gitid/internal/remotes"
)

const (
	remoteBinderMissingMessageConstant = "identity service remote binder not configured"
	selectRemoteTitleConstant          = "Select profile for this remote:"
)

// ErrRemoteBinderNotConfigured indicates Remote was called on a service without a RemoteBinder.
var ErrRemoteBinderNotConfigured = errors.New(remoteBinderMissingMessageConstant)

// RemoteOptions configure Remote.
type RemoteOptions struct {
	Name             string
	RemoteName       string
	WorkingDirectory string
	DryRun           bool
	AssumeYes        bool
}

// Remote points a remote of the repository in WorkingDirectory at the SSH host alias of an SSH profile,
// so plain git invocations there authenticate with that profile's key.
func (service *Service) Remote(executionContext context.Context, options RemoteOptions) error {
	if service.remotes == nil {
		return ErrRemoteBinderNotConfigured
	}

	profile, found, resolveError := service.resolveSSHProfile(options.Name, selectRemoteTitleConstant)
	if resolveError != nil || !found {
		return resolveError
	}

	layout := service.keys.Layout()
	_, executeError := service.remotes.Execute(executionContext, remotes.Options{
		RepositoryPath: options.WorkingDirectory,
		RemoteName:     options.RemoteName,
		Host:           layout.RemoteHost(),
		Alias:          layout.HostAlias(profile.Name),
		DryRun:         options.DryRun,
		AssumeYes:      options.AssumeYes,
	})
	return executeError
}
