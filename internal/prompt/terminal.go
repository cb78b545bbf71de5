package prompt

import "golang.org/x/term"

type fileDescriptorProvider interface {
	Fd() uintptr
}

// IsTerminal reports whether the stream is attached to an interactive terminal.
func IsTerminal(stream any) bool {
	descriptorProvider, ok := stream.(fileDescriptorProvider)
	if !ok {
		return false
	}
	return term.IsTerminal(int(descriptorProvider.Fd()))
}
