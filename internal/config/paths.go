package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// HomeEnv overrides the configuration directory.
const HomeEnv = "AGENTPROTO_HOME"

// Dir returns the directory holding runtime configuration.
func Dir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "agentproto")
	default:
		home, _ := os.UserHomeDir()

		return filepath.Join(home, ".agentproto")
	}
}

// ServersPath returns the default server registry file.
func ServersPath() string {
	return filepath.Join(Dir(), "servers.json")
}
