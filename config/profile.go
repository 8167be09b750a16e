package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DevBackendURL is the backend address used by --dev.
const DevBackendURL = "http://localhost:8002"

// ProfileDir returns ~/.osa-builder, or ~/.osa-builder/profiles/<name> for a
// named profile. The directory is created.
func ProfileDir(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home dir: %w", err)
	}
	dir := filepath.Join(home, ".osa-builder")
	if name != "" {
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return "", fmt.Errorf("config: invalid profile name %q", name)
		}
		dir = filepath.Join(dir, "profiles", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("config: create profile dir: %w", err)
	}
	return dir, nil
}

// ReadToken returns the token stored in <profileDir>/token, or "".
func ReadToken(profileDir string) string {
	data, err := os.ReadFile(filepath.Join(profileDir, "token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// LoadEnvFile exports <profileDir>/.env into the process environment so the
// OSA_* overrides can live next to the config. Variables already set win. A
// missing file is not an error.
func LoadEnvFile(profileDir string) error {
	path := filepath.Join(profileDir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}
