package files

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDirName is the lifelog home below the user's home directory.
	DefaultDirName = ".lifelog"

	// HomeEnv overrides the lifelog home.
	HomeEnv = "LIFELOG_HOME"
)

// ResolveBasePath returns the lifelog home: $LIFELOG_HOME when set (a leading
// ~ is expanded), otherwise ~/.lifelog. Documents, config.yaml, the index and
// the diagnostic log all live below it.
func ResolveBasePath() (string, error) {
	if override := strings.TrimSpace(os.Getenv(HomeEnv)); override != "" {
		return expandHome(override)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
