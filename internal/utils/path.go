package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

const appName = "acroserve"

// PathResolver locates the config directory and catalog data for the binaries.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver determines the executable location and the platform config dir.
func NewPathResolver() (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		homeDir:       homeDir,
		configDir:     configDirFor(homeDir),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

func configDirFor(homeDir string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, appName)
		}
		return filepath.Join(homeDir, ".config", appName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	case "darwin":
		return filepath.Join(homeDir, ".config", appName)
	default:
		return filepath.Join(homeDir, "."+appName)
	}
}

// GetConfigDir returns the config directory
func (pr *PathResolver) GetConfigDir() string {
	return pr.configDir
}

// GetConfigPath returns the full path for a config file, falling back to
// ~/.acroserve and the temp dir when the config dir is not writable.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	candidates := []string{
		pr.configDir,
		filepath.Join(pr.homeDir, "."+appName),
		filepath.Join(os.TempDir(), appName),
	}
	for i, dir := range candidates {
		if CheckDirStatus(dir).Writable {
			path := filepath.Join(dir, filename)
			if i > 0 {
				log.Warnf("Using fallback config location: %s", path)
			}
			return path, nil
		}
	}
	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath, nil
}

// ResolveDataPath resolves a user supplied catalog file or directory.
// Absolute paths win, then paths relative to the executable, then to the
// working directory, then <configDir>/data. Returns "" when nothing exists.
func (pr *PathResolver) ResolveDataPath(userPath string) string {
	var candidates []string
	if userPath != "" {
		if filepath.IsAbs(userPath) {
			candidates = append(candidates, userPath)
		} else {
			candidates = append(candidates, filepath.Join(pr.executableDir, userPath))
			if cwd, err := os.Getwd(); err == nil {
				candidates = append(candidates, filepath.Join(cwd, userPath))
			}
		}
	}
	candidates = append(candidates, filepath.Join(pr.configDir, "data"))

	for _, path := range candidates {
		if FileExists(path) {
			log.Debugf("Found catalog data: %s", path)
			return path
		}
		log.Debugf("Catalog data candidate not found: %s", path)
	}
	return ""
}
