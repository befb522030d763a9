package credstore

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/afero"
	"github.com/warpdl/chromeimport/internal/profile"
	"github.com/warpdl/chromeimport/pkg/logger"
)

func TestSelectBackend(t *testing.T) {
	tests := []struct {
		store   string
		desktop Desktop
		want    Selection
	}{
		{StoreAuto, DesktopGnome, SelectGnomeAny},
		{StoreAuto, DesktopCinnamon, SelectGnomeAny},
		{StoreAuto, DesktopXFCE, SelectGnomeAny},
		{StoreAuto, DesktopKDE4, SelectKWallet},
		{StoreAuto, DesktopKDE5, SelectKWallet5},
		{StoreAuto, DesktopKDE3, SelectBasic},
		{StoreAuto, DesktopOther, SelectBasic},
		{StoreKWallet, DesktopGnome, SelectKWallet},
		{StoreKWallet5, DesktopOther, SelectKWallet5},
		{StoreGnome, DesktopKDE5, SelectGnomeAny},
		{StoreGnomeLibsecret, DesktopKDE5, SelectGnomeLibsecret},
		{StoreGnomeKeyring, DesktopOther, SelectGnomeKeyring},
		{StoreBasic, DesktopGnome, SelectBasic},
	}
	for _, tt := range tests {
		if got := SelectBackend(tt.store, tt.desktop); got != tt.want {
			t.Errorf("SelectBackend(%q, %s) = %s, want %s", tt.store, tt.desktop, got, tt.want)
		}
	}
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		sel  Selection
		want []Kind
	}{
		{SelectKWallet, []Kind{KindKWallet4}},
		{SelectKWallet5, []Kind{KindKWallet5}},
		{SelectGnomeAny, []Kind{KindLibsecret}},
		{SelectGnomeLibsecret, []Kind{KindLibsecret}},
		{SelectGnomeKeyring, nil},
		{SelectBasic, nil},
	}
	for _, tt := range tests {
		if got := Candidates(tt.sel); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Candidates(%s) = %v, want %v", tt.sel, got, tt.want)
		}
	}
}

func TestValidStore(t *testing.T) {
	for _, s := range []string{"", "auto", "basic", "kwallet", "kwallet5", "gnome", "gnome-libsecret", "logindb"} {
		if !ValidStore(s) {
			t.Errorf("ValidStore(%q) = false", s)
		}
	}
	if ValidStore("keychain") {
		t.Error("ValidStore(keychain) = true")
	}
}

type stubBackend struct{ name string }

func (s *stubBackend) Name() string                        { return s.name }
func (s *stubBackend) Autofillable() ([]Credential, error) { return nil, nil }
func (s *stubBackend) Blacklisted() ([]Credential, error)  { return nil, nil }
func (s *stubBackend) Close() error                        { return nil }

func newTestResolver(t *testing.T, goos string, env map[string]string) (*Resolver, *[]Kind) {
	t.Helper()
	var opened []Kind
	r := &Resolver{
		log:       logger.NewNopLogger(),
		goos:      goos,
		getenv:    envOf(env),
		available: func(Kind) bool { return true },
	}
	r.open = func(kind Kind, src profile.SourceProfile, profileID int) (Backend, error) {
		opened = append(opened, kind)
		return &stubBackend{name: kind.String()}, nil
	}
	return r, &opened
}

func prefsProfile(t *testing.T, prefs string) profile.SourceProfile {
	t.Helper()
	fs := afero.NewMemMapFs()
	dir := filepath.Join("/data", "Default")
	if prefs != "" {
		if err := afero.WriteFile(fs, filepath.Join(dir, profile.PreferencesFile), []byte(prefs), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return profile.SourceProfile{Path: dir, Items: profile.Passwords, Fs: fs}
}

func TestResolve_NonLinuxUsesLoginDatabase(t *testing.T) {
	r, opened := newTestResolver(t, "windows", nil)
	b, err := r.Resolve(prefsProfile(t, ""))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if b.Name() != KindLoginDatabase.String() {
		t.Errorf("backend = %s, want login-database", b.Name())
	}
	if !reflect.DeepEqual(*opened, []Kind{KindLoginDatabase}) {
		t.Errorf("opened = %v", *opened)
	}
}

func TestResolve_LoginDatabaseOverride(t *testing.T) {
	r, _ := newTestResolver(t, "linux", nil)
	r.store = StoreLoginDatabase
	b, err := r.Resolve(prefsProfile(t, ""))
	if err != nil || b.Name() != KindLoginDatabase.String() {
		t.Fatalf("Resolve = %v, %v", b, err)
	}
}

func TestResolve_LinuxKDE5(t *testing.T) {
	r, opened := newTestResolver(t, "linux", map[string]string{
		"XDG_CURRENT_DESKTOP": "KDE",
		"KDE_SESSION_VERSION": "5",
	})
	var gotID int
	inner := r.open
	r.open = func(kind Kind, src profile.SourceProfile, profileID int) (Backend, error) {
		gotID = profileID
		return inner(kind, src, profileID)
	}
	b, err := r.Resolve(prefsProfile(t, `{"profile":{"local_profile_id":42}}`))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if b.Name() != "kwallet5" {
		t.Errorf("backend = %s, want kwallet5", b.Name())
	}
	if gotID != 42 {
		t.Errorf("profile id = %d, want 42", gotID)
	}
	if !reflect.DeepEqual(*opened, []Kind{KindKWallet5}) {
		t.Errorf("opened = %v", *opened)
	}
}

func TestResolve_NoBackend(t *testing.T) {
	tests := []struct {
		name  string
		prefs string
		env   map[string]string
		avail bool
	}{
		{"missing preferences", "", map[string]string{"XDG_CURRENT_DESKTOP": "GNOME"}, true},
		{"missing profile id", `{"profile":{}}`, map[string]string{"XDG_CURRENT_DESKTOP": "GNOME"}, true},
		{"basic desktop", `{"profile":{"local_profile_id":1}}`, nil, true},
		{"service absent", `{"profile":{"local_profile_id":1}}`, map[string]string{"XDG_CURRENT_DESKTOP": "GNOME"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, opened := newTestResolver(t, "linux", tt.env)
			r.available = func(Kind) bool { return tt.avail }
			_, err := r.Resolve(prefsProfile(t, tt.prefs))
			if !errors.Is(err, ErrNoBackend) {
				t.Fatalf("err = %v, want ErrNoBackend", err)
			}
			if len(*opened) != 0 {
				t.Errorf("opened = %v, want none", *opened)
			}
		})
	}
}

func TestResolve_InitFailureFallsThrough(t *testing.T) {
	r, _ := newTestResolver(t, "linux", map[string]string{"XDG_CURRENT_DESKTOP": "GNOME"})
	mock := logger.NewMockLogger()
	r.log = mock
	r.open = func(Kind, profile.SourceProfile, int) (Backend, error) {
		return nil, errors.New("locked")
	}
	_, err := r.Resolve(prefsProfile(t, `{"profile":{"local_profile_id":3}}`))
	if !errors.Is(err, ErrNoBackend) {
		t.Fatalf("err = %v, want ErrNoBackend", err)
	}
	if len(mock.WarningCalls) != 1 {
		t.Errorf("warnings = %v, want one init failure", mock.WarningCalls)
	}
}

func TestNewResolver_Auto(t *testing.T) {
	r := NewResolver(ResolverOptions{Store: "auto"})
	if r.store != StoreAuto || r.log == nil || r.open == nil || r.available == nil {
		t.Errorf("NewResolver did not normalize options: %+v", r)
	}
}
