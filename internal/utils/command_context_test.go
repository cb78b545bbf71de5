package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitid/internal/utils"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/tmp/config.yaml")
	executionContext = accessor.WithWorkingDirectory(executionContext, "/tmp/repository")

	configurationFilePath, available := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, available)
	require.Equal(testInstance, "/tmp/config.yaml", configurationFilePath)
	require.Equal(testInstance, "/tmp/repository", accessor.WorkingDirectory(executionContext))
}

func TestCommandContextAccessorMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, available := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, available)
	require.Empty(testInstance, accessor.WorkingDirectory(context.Background()))
}
