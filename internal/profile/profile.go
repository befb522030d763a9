package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// File names inside a Chrome profile directory.
const (
	HistoryFile     = "History"
	BookmarksFile   = "Bookmarks"
	FaviconsFile    = "Favicons"
	CookiesFile     = "Cookies"
	LoginDataFile   = "Login Data"
	PreferencesFile = "Preferences"
	// LocalStateFile lives in the user-data directory, one level above the profile.
	LocalStateFile = "Local State"
)

// SourceProfile is the profile being imported. It is immutable for a session.
type SourceProfile struct {
	// Path is the profile directory, e.g. ~/.config/google-chrome/Default.
	Path string
	// Items is the requested category mask.
	Items Item
	// Fs is the filesystem Path lives on.
	Fs afero.Fs
}

// New returns a SourceProfile on the host filesystem.
func New(path string, items Item) SourceProfile {
	return SourceProfile{
		Path:  path,
		Items: items,
		Fs:    afero.NewOsFs(),
	}
}

// File joins name onto the profile directory.
func (p SourceProfile) File(name ...string) string {
	return filepath.Join(append([]string{p.Path}, name...)...)
}

// UserDataDir is the directory holding Local State and every profile.
func (p SourceProfile) UserDataDir() string {
	return filepath.Dir(filepath.Clean(p.Path))
}

// CookiesPath returns the cookie database path. Newer Chrome keeps it under
// Network/, older releases directly in the profile. The first existing
// candidate wins; if neither exists the legacy path is returned.
func (p SourceProfile) CookiesPath() string {
	candidates := []string{
		p.File("Network", CookiesFile),
		p.File(CookiesFile),
	}
	for _, c := range candidates {
		if ok, _ := afero.Exists(p.Fs, c); ok {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

// Validate checks that the profile can be imported from.
func Validate(p SourceProfile) error {
	if p.Path == "" {
		return errors.New("error: no source profile given")
	}
	if p.Fs == nil {
		return errors.New("error: source profile has no filesystem")
	}
	if p.Items == None {
		return errors.New("error: no import items selected")
	}
	if p.Items&^All != 0 {
		return fmt.Errorf("error: unknown import items %s", p.Items)
	}
	info, err := p.Fs.Stat(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error: source profile not found: %s", p.Path)
		}
		return fmt.Errorf("error: cannot access source profile: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("error: %s is not a profile directory", p.Path)
	}
	return nil
}
