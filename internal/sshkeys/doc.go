// Package sshkeys provisions per-profile SSH keys: key generation through
// ssh-keygen, host-alias blocks in the SSH client configuration, connectivity
// checks against the Git host, and best-effort agent registration.
package sshkeys
