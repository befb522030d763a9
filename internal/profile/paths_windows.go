//go:build windows

package profile

import (
	"os"
	"path/filepath"
)

// getBrowserSpecsForEnv returns browser specs using the given LOCALAPPDATA.
// This is the testable variant; getBrowserSpecs calls it with os.Getenv.
func getBrowserSpecsForEnv(localAppData string) []browserSpec {
	return []browserSpec{
		{Name: "Chrome", UserDataDirs: []string{filepath.Join(localAppData, "Google", "Chrome", "User Data")}},
		{Name: "Chromium", UserDataDirs: []string{filepath.Join(localAppData, "Chromium", "User Data")}},
		{Name: "Edge", UserDataDirs: []string{filepath.Join(localAppData, "Microsoft", "Edge", "User Data")}},
		{Name: "Brave", UserDataDirs: []string{filepath.Join(localAppData, "BraveSoftware", "Brave-Browser", "User Data")}},
	}
}

func getBrowserSpecs() []browserSpec {
	localAppData := os.Getenv("LOCALAPPDATA")
	if localAppData == "" {
		return nil
	}
	return getBrowserSpecsForEnv(localAppData)
}
