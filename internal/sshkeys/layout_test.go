package sshkeys_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitid/internal/sshkeys"
)

func TestLayoutNaming(testInstance *testing.T) {
	layout := sshkeys.Layout{
		Directory:         "/home/me/.ssh",
		ConfigPath:        "/home/me/.ssh/config",
		DisplayDirectory:  "~/.ssh",
		DisplayConfigPath: "~/.ssh/config",
	}

	require.Equal(testInstance, "id_ed25519_work", layout.KeyFileName("work"))
	require.Equal(testInstance, "id_ed25519_my_work_", layout.KeyFileName("my work!"))
	require.Equal(testInstance, "/home/me/.ssh/id_ed25519_work", layout.PrivateKeyPath("work"))
	require.Equal(testInstance, "/home/me/.ssh/id_ed25519_work.pub", layout.PublicKeyPath("work"))
	require.Equal(testInstance, "~/.ssh/id_ed25519_work", layout.IdentityFile("work"))
	require.Equal(testInstance, "github-work", layout.HostAlias("work"))
	require.Equal(testInstance, "github.com", layout.RemoteHost())
	require.Equal(testInstance, "ssh -i ~/.ssh/id_ed25519_work -o IdentitiesOnly=yes -F ~/.ssh/config", layout.SSHCommand("work"))
	require.Equal(testInstance, "ssh -i ~/.ssh/id_ed25519_work -o IdentitiesOnly=yes", layout.ConnectionCommand("work"))
}

func TestLayoutQuotesPathsWithSpaces(testInstance *testing.T) {
	layout := sshkeys.Layout{
		Directory:  "/Users/Jane Doe/.ssh",
		ConfigPath: "/Users/Jane Doe/.ssh/config",
		KeyPrefix:  "key_",
		Host:       "github.example.com",
	}

	require.Equal(testInstance, "ssh -i '/Users/Jane Doe/.ssh/key_work' -o IdentitiesOnly=yes", layout.ConnectionCommand("work"))
	require.Equal(testInstance, "ssh -i '/Users/Jane Doe/.ssh/key_work' -o IdentitiesOnly=yes -F '/Users/Jane Doe/.ssh/config'", layout.SSHCommand("work"))
	require.Equal(testInstance, "github.example.com", layout.RemoteHost())
}
