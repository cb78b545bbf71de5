// Package githubcli reads credentials from an installed GitHub CLI so users who are
// already signed in to gh can skip the device flow.
package githubcli
