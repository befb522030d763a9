//go:build unix

package profile

import (
	"os"
	"path/filepath"
	"runtime"
)

// getBrowserSpecsForHome returns browser specs using the given homeDir.
// This is the testable variant; getBrowserSpecs calls it with the real home.
func getBrowserSpecsForHome(homeDir string) []browserSpec {
	if runtime.GOOS == "darwin" {
		base := filepath.Join(homeDir, "Library", "Application Support")
		return []browserSpec{
			{Name: "Chrome", UserDataDirs: []string{filepath.Join(base, "Google", "Chrome")}},
			{Name: "Chromium", UserDataDirs: []string{filepath.Join(base, "Chromium")}},
			{Name: "Edge", UserDataDirs: []string{filepath.Join(base, "Microsoft Edge")}},
			{Name: "Brave", UserDataDirs: []string{filepath.Join(base, "BraveSoftware", "Brave-Browser")}},
		}
	}

	config := filepath.Join(homeDir, ".config")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		config = xdg
	}
	return []browserSpec{
		{Name: "Chrome", UserDataDirs: []string{
			filepath.Join(config, "google-chrome"),
			filepath.Join(config, "google-chrome-beta"),
		}},
		{Name: "Chromium", UserDataDirs: []string{
			filepath.Join(config, "chromium"),
			filepath.Join(homeDir, "snap", "chromium", "common", "chromium"),
		}},
		{Name: "Edge", UserDataDirs: []string{filepath.Join(config, "microsoft-edge")}},
		{Name: "Brave", UserDataDirs: []string{filepath.Join(config, "BraveSoftware", "Brave-Browser")}},
	}
}

// getBrowserSpecs returns browser specs rooted at the real user home directory.
func getBrowserSpecs() []browserSpec {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return getBrowserSpecsForHome(homeDir)
}
