// Package gitrepo parses and rewrites Git remote URLs.
//
// It recognizes scp-style SSH remotes, ssh:// URLs, and HTTPS URLs, rewrites
// them onto per-profile SSH host aliases, and derives the directory a clone
// will create.
package gitrepo
