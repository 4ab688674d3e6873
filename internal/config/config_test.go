package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/agent-protocol-go/internal/server"
)

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, (&Options{}).Validate())
	require.NoError(t, (&Options{ServerFile: "servers.json"}).Validate())
	require.NoError(t, (&Options{Store: server.NewMemoryStore()}).Validate())

	err := (&Options{Store: server.NewMemoryStore(), ServerFile: "servers.json"}).Validate()
	require.ErrorIs(t, err, ErrConflictingStores)
}

func TestPathsHonorOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(HomeEnv, dir)

	require.Equal(t, dir, Dir())
	require.Equal(t, filepath.Join(dir, "servers.json"), ServersPath())
}

func TestPathsDefault(t *testing.T) {
	t.Setenv(HomeEnv, "")

	require.NotEmpty(t, Dir())
	require.Equal(t, "servers.json", filepath.Base(ServersPath()))
}
