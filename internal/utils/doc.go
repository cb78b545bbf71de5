// Package utils exposes helpers shared by the git-id binaries.
//
// ConfigurationLoader layers embedded defaults, configuration files, and
// GITID_* environment variables through Viper; LoggerFactory builds the zap
// loggers; CommandContextAccessor carries per-invocation values through
// command contexts.
package utils
