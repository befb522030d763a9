package credstore

import (
	"fmt"
	"os"

	"github.com/warpdl/chromeimport/internal/profile"
	"github.com/warpdl/chromeimport/pkg/logger"
)

// Selection is the outcome of the Linux backend selection policy.
type Selection int

const (
	SelectBasic Selection = iota
	SelectKWallet
	SelectKWallet5
	SelectGnomeAny
	SelectGnomeKeyring
	SelectGnomeLibsecret
)

func (s Selection) String() string {
	switch s {
	case SelectBasic:
		return "basic"
	case SelectKWallet:
		return "kwallet"
	case SelectKWallet5:
		return "kwallet5"
	case SelectGnomeAny:
		return "gnome"
	case SelectGnomeKeyring:
		return "gnome-keyring"
	case SelectGnomeLibsecret:
		return "gnome-libsecret"
	}
	return "unknown"
}

// Password store names accepted by the Resolver, matching Chrome's
// --password-store switch plus "logindb" to force the Login Data database.
const (
	StoreAuto           = ""
	StoreBasic          = "basic"
	StoreKWallet        = "kwallet"
	StoreKWallet5       = "kwallet5"
	StoreGnome          = "gnome"
	StoreGnomeKeyring   = "gnome-keyring"
	StoreGnomeLibsecret = "gnome-libsecret"
	StoreLoginDatabase  = "logindb"
)

// ValidStore reports whether name is an accepted password store.
func ValidStore(name string) bool {
	switch name {
	case StoreAuto, "auto", StoreBasic, StoreKWallet, StoreKWallet5, StoreGnome,
		StoreGnomeKeyring, StoreGnomeLibsecret, StoreLoginDatabase:
		return true
	}
	return false
}

// SelectBackend applies Chrome's selection policy: an explicit store wins,
// otherwise the desktop environment decides.
func SelectBackend(store string, desktop Desktop) Selection {
	switch store {
	case StoreKWallet:
		return SelectKWallet
	case StoreKWallet5:
		return SelectKWallet5
	case StoreGnome:
		return SelectGnomeAny
	case StoreGnomeKeyring:
		return SelectGnomeKeyring
	case StoreGnomeLibsecret:
		return SelectGnomeLibsecret
	case StoreBasic:
		return SelectBasic
	}

	switch desktop {
	case DesktopCinnamon, DesktopDeepin, DesktopGnome, DesktopPantheon,
		DesktopUKUI, DesktopUnity, DesktopXFCE:
		return SelectGnomeAny
	case DesktopKDE4:
		return SelectKWallet
	case DesktopKDE5:
		return SelectKWallet5
	}
	return SelectBasic
}

// Candidates lists the backends a selection allows, in probe order.
func Candidates(sel Selection) []Kind {
	allowed := func(k Kind) bool {
		switch k {
		case KindKWallet4:
			return sel == SelectKWallet
		case KindKWallet5:
			return sel == SelectKWallet5
		case KindLibsecret:
			return sel == SelectGnomeAny || sel == SelectGnomeLibsecret
		}
		return false
	}
	var kinds []Kind
	for _, k := range nativeKinds {
		if allowed(k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Store is a password store name; empty or "auto" detects.
	Store string
	// Decrypter decrypts Login Data password values.
	Decrypter Decrypter
	Logger    logger.Logger
}

// Resolver selects, probes and opens the credential backend for a profile.
type Resolver struct {
	store  string
	dec    Decrypter
	log    logger.Logger
	goos   string
	getenv func(string) string

	// available and open are seams for tests.
	available func(kind Kind) bool
	open      func(kind Kind, src profile.SourceProfile, profileID int) (Backend, error)
}

// NewResolver returns a Resolver for the running platform.
func NewResolver(opts ResolverOptions) *Resolver {
	r := &Resolver{
		store:  opts.Store,
		dec:    opts.Decrypter,
		log:    opts.Logger,
		goos:   currentGOOS(),
		getenv: os.Getenv,
	}
	if r.store == "auto" {
		r.store = StoreAuto
	}
	if r.log == nil {
		r.log = logger.NewNopLogger()
	}
	r.available = serviceAvailable
	r.open = r.openBackend
	return r
}

// Resolve returns an initialized backend for src, or an error wrapping
// ErrNoBackend when the policy selects nothing usable. Probes are tried once;
// a failed probe or Init moves on to the next candidate.
func (r *Resolver) Resolve(src profile.SourceProfile) (Backend, error) {
	if r.store == StoreLoginDatabase || !IsLinuxClass(r.goos) {
		return r.open(KindLoginDatabase, src, 0)
	}

	profileID, err := ReadLocalProfileID(src.Fs, src.File(profile.PreferencesFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoBackend, err)
	}

	desktop := DetectDesktop(r.getenv)
	sel := SelectBackend(r.store, desktop)
	r.log.Info("passwords: desktop %s, selected %s backend", desktop, sel)

	for _, kind := range Candidates(sel) {
		if !r.available(kind) {
			r.log.Info("passwords: %s service not available", kind)
			continue
		}
		b, err := r.open(kind, src, profileID)
		if err != nil {
			r.log.Warning("passwords: %s init failed: %v", kind, err)
			continue
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w (desktop %s, selected %s)", ErrNoBackend, desktop, sel)
}

func (r *Resolver) openBackend(kind Kind, src profile.SourceProfile, profileID int) (Backend, error) {
	switch kind {
	case KindLoginDatabase:
		return OpenLoginDatabase(src, r.dec)
	case KindKWallet4, KindKWallet5:
		conn, err := sessionBus()
		if err != nil {
			return nil, err
		}
		return OpenKWallet(conn, kind, profileID, r.log)
	case KindLibsecret:
		conn, err := sessionBus()
		if err != nil {
			return nil, err
		}
		return OpenLibsecret(conn, profileID, r.log)
	}
	return nil, fmt.Errorf("unknown backend %s", kind)
}
