// Package identity implements the git-id profile workflows (list, add, use,
// current, delete, test, clone, git) and the Cobra commands that expose them.
package identity
