package credstore

import (
	"errors"
	"runtime"
)

// ErrNoBackend means the selection policy found no usable backend.
var ErrNoBackend = errors.New("no password backend available")

// Backend lists saved credentials from one store. Each call either succeeds
// with zero or more credentials or fails as a whole.
type Backend interface {
	Name() string
	Autofillable() ([]Credential, error)
	Blacklisted() ([]Credential, error)
	Close() error
}

// Kind identifies a backend implementation.
type Kind int

const (
	KindLoginDatabase Kind = iota
	KindKWallet4
	KindKWallet5
	KindLibsecret
)

func (k Kind) String() string {
	switch k {
	case KindLoginDatabase:
		return "login-database"
	case KindKWallet4:
		return "kwallet"
	case KindKWallet5:
		return "kwallet5"
	case KindLibsecret:
		return "libsecret"
	}
	return "unknown"
}

// nativeKinds is the probe order on Linux-class systems.
var nativeKinds = []Kind{KindKWallet4, KindKWallet5, KindLibsecret}

// IsLinuxClass reports whether goos keeps Chrome passwords in a desktop
// secret service rather than in Login Data.
func IsLinuxClass(goos string) bool {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return true
	}
	return false
}

func currentGOOS() string {
	return runtime.GOOS
}
