package cli

import _ "embed"

//go:embed default_config.yaml
var defaultConfigurationContent []byte

// DefaultConfigurationContent returns a copy of the built-in config.yaml that `config init` writes out.
func DefaultConfigurationContent() []byte {
	return append([]byte(nil), defaultConfigurationContent...)
}
