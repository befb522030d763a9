package profile

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// DefaultProfileDir is the directory name of a user-data dir's first profile.
const DefaultProfileDir = "Default"

// browserSpec describes a Chrome-family browser's user-data directory candidates.
type browserSpec struct {
	// Name is the human-readable browser name (e.g., "Chrome").
	Name string
	// UserDataDirs are candidate user-data directories. The first that
	// exists on disk is used.
	UserDataDirs []string
}

// Installation is a browser found on this machine.
type Installation struct {
	Browser     string
	UserDataDir string
	Profiles    []ProfileInfo
}

// ProfileInfo is one profile inside a user-data directory.
type ProfileInfo struct {
	// Dir is the profile directory name, e.g. "Default" or "Profile 1".
	Dir string
	// Name is the display name from Local State, or Dir if unknown.
	Name string
	// Path is the absolute profile directory.
	Path string
}

// ListProfiles reads the profiles of a user-data directory from its
// Local State file. When Local State is missing or unreadable, a Default
// profile directory is reported if one exists.
func ListProfiles(fs afero.Fs, userDataDir string) []ProfileInfo {
	data, err := ReadFile(fs, filepath.Join(userDataDir, LocalStateFile))
	if err != nil || !gjson.ValidBytes(data) {
		return defaultOnly(fs, userDataDir)
	}

	var profiles []ProfileInfo
	gjson.GetBytes(data, "profile.info_cache").ForEach(func(key, value gjson.Result) bool {
		dir := key.String()
		path := filepath.Join(userDataDir, dir)
		if ok, _ := afero.DirExists(fs, path); !ok {
			return true
		}
		name := value.Get("name").String()
		if name == "" {
			name = dir
		}
		profiles = append(profiles, ProfileInfo{Dir: dir, Name: name, Path: path})
		return true
	})
	if len(profiles) == 0 {
		return defaultOnly(fs, userDataDir)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].Dir == DefaultProfileDir {
			return true
		}
		if profiles[j].Dir == DefaultProfileDir {
			return false
		}
		return profiles[i].Dir < profiles[j].Dir
	})
	return profiles
}

func defaultOnly(fs afero.Fs, userDataDir string) []ProfileInfo {
	path := filepath.Join(userDataDir, DefaultProfileDir)
	if ok, _ := afero.DirExists(fs, path); !ok {
		return nil
	}
	return []ProfileInfo{{Dir: DefaultProfileDir, Name: DefaultProfileDir, Path: path}}
}

// discoverWithSpecs scans the given browser specs in order and returns every
// installation that has at least one profile.
// This function exists as a testable seam; production code calls Discover.
func discoverWithSpecs(fs afero.Fs, specs []browserSpec) []Installation {
	var found []Installation
	for _, spec := range specs {
		for _, dir := range spec.UserDataDirs {
			if ok, _ := afero.DirExists(fs, dir); !ok {
				continue
			}
			profiles := ListProfiles(fs, dir)
			if len(profiles) == 0 {
				continue
			}
			found = append(found, Installation{
				Browser:     spec.Name,
				UserDataDir: dir,
				Profiles:    profiles,
			})
			break
		}
	}
	return found
}

// Discover scans known Chrome-family user-data directories in priority order.
//
// Priority: Chrome > Chromium > Edge > Brave.
func Discover(fs afero.Fs) []Installation {
	return discoverWithSpecs(fs, getBrowserSpecs())
}

// DefaultSource returns the first profile of the first installation found,
// or an error if no Chrome-family browser is installed.
func DefaultSource(fs afero.Fs) (string, error) {
	found := Discover(fs)
	if len(found) == 0 {
		return "", os.ErrNotExist
	}
	return found[0].Profiles[0].Path, nil
}
