// Package flags provides pflag helpers shared by git-id commands: yes/no
// toggles, choice usage strings, and common flag names.
package flags
