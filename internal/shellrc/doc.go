// Package shellrc installs and removes the git() shell function that forwards
// profile-aware invocations to gitp.
package shellrc
