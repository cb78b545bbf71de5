// Package remotes points existing repository remotes at a profile's SSH host alias.
package remotes
