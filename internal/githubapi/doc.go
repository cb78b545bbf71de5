// Package githubapi authenticates against GitHub with the OAuth device flow and
// reads the signed-in account's identity and uploads SSH public keys.
package githubapi
