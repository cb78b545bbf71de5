// Package cli constructs the git-id command-line interface, wiring the Cobra
// command hierarchy, configuration loader, structured logging, and the
// profile services behind each subcommand. The gitp binary reuses the same
// application through ExecuteGit.
package cli
