// Package prompt collects interactive input: validated line prompts, yes/no
// confirmations, and a keyboard-driven profile selector.
package prompt
