package router

import "strings"

const (
	profileLongFlagConstant         = "--profile"
	profileShortFlagConstant        = "-p"
	profileInlineFlagPrefixConstant = profileLongFlagConstant + "="
)

// Invocation is a git argument list with the profile selection removed.
type Invocation struct {
	ProfileName string
	Arguments   []string
}

// HasProfile reports whether a profile was requested.
func (invocation Invocation) HasProfile() bool {
	return len(invocation.ProfileName) > 0
}

// Parse extracts "--profile <name>", "-p <name>" and "--profile=<name>" from arguments.
// The remaining arguments keep their order. A trailing flag without a value selects no profile;
// when the flag repeats, the last occurrence wins.
func Parse(arguments []string) Invocation {
	invocation := Invocation{Arguments: make([]string, 0, len(arguments))}
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := arguments[argumentIndex]
		switch {
		case argument == profileLongFlagConstant || argument == profileShortFlagConstant:
			if argumentIndex+1 < len(arguments) {
				invocation.ProfileName = arguments[argumentIndex+1]
				argumentIndex++
			}
		case strings.HasPrefix(argument, profileInlineFlagPrefixConstant):
			invocation.ProfileName = strings.TrimPrefix(argument, profileInlineFlagPrefixConstant)
		default:
			invocation.Arguments = append(invocation.Arguments, argument)
		}
	}
	return invocation
}
