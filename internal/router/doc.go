// Package router runs git under a named profile.
//
// Route removes the --profile/-p flag from a git argument list, points
// host URLs at the profile's SSH alias, applies the profile's identity to
// the repository involved, and hands the command to git with the
// terminal attached. The git exit code is propagated through ExitError.
package router
