// Package gitconfig writes profile identities into Git configuration and reads
// the effective identity back with local-over-global precedence.
package gitconfig
