// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// captured process execution and PassthroughCommandRunner for invocations that
// share the terminal with the user, and defines the abstractions git-id uses to
// run git, ssh-keygen, and ssh without building shell strings.
package execshell
