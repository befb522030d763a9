// Package oscrypt decrypts values Chrome protected with its OS-level
// encryption: v10/v11 AES-CBC on macOS and Linux, v10 AES-GCM under a
// DPAPI-wrapped key on Windows, and bare DPAPI for older Windows values.
package oscrypt

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

var (
	// ErrUnsupportedVersion is returned for a prefixed value this platform
	// does not know how to decrypt.
	ErrUnsupportedVersion = errors.New("oscrypt: unsupported encryption version")
	// ErrKeyUnavailable is returned when the key for a version cannot be
	// obtained.
	ErrKeyUnavailable = errors.New("oscrypt: encryption key unavailable")
)

var (
	prefixV10 = []byte("v10")
	prefixV11 = []byte("v11")
)

// Options configures a Decrypter.
type Options struct {
	// Password overrides the platform safe-storage password on macOS and
	// Linux-class systems.
	Password string
	// PasswordLookup fetches Chrome's safe-storage password from the desktop
	// secret service. It is used for v11 values on Linux-class systems.
	PasswordLookup func() (string, error)
	// LocalState is the content of the user data directory's Local State
	// file. Windows needs it for v10 values.
	LocalState []byte
}

// Decrypter decrypts Chrome-protected values. Keys are fetched on first use
// and cached.
type Decrypter struct {
	opts Options
	goos string

	mu   sync.Mutex
	keys map[string][]byte
}

// New returns a Decrypter for the running platform.
func New(opts Options) *Decrypter {
	return newForOS(opts, runtime.GOOS)
}

func newForOS(opts Options, goos string) *Decrypter {
	return &Decrypter{opts: opts, goos: goos, keys: make(map[string][]byte)}
}

// Decrypt returns the plaintext of value. Unprefixed values are DPAPI blobs
// on Windows and plaintext elsewhere.
func (d *Decrypter) Decrypt(value []byte) (string, error) {
	if len(value) == 0 {
		return "", nil
	}
	var version string
	switch {
	case bytes.HasPrefix(value, prefixV10):
		version = "v10"
	case bytes.HasPrefix(value, prefixV11):
		version = "v11"
	default:
		if d.goos == "windows" {
			plain, err := dpapiUnprotect(value)
			if err != nil {
				return "", fmt.Errorf("oscrypt: dpapi: %w", err)
			}
			return string(plain), nil
		}
		return string(value), nil
	}

	key, err := d.key(version)
	if err != nil {
		return "", err
	}
	payload := value[len(version):]
	var plain []byte
	if d.goos == "windows" {
		plain, err = decryptGCM(key, payload)
	} else {
		plain, err = decryptCBC(key, payload)
	}
	if err != nil {
		return "", fmt.Errorf("oscrypt: %s: %w", version, err)
	}
	return string(plain), nil
}

func (d *Decrypter) key(version string) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if k, ok := d.keys[version]; ok {
		return k, nil
	}
	k, err := d.loadKey(version)
	if err != nil {
		return nil, err
	}
	d.keys[version] = k
	return k, nil
}

func (d *Decrypter) loadKey(version string) ([]byte, error) {
	switch {
	case d.goos == "windows":
		if version != "v10" {
			return nil, fmt.Errorf("%w: %s on windows", ErrUnsupportedVersion, version)
		}
		return windowsMasterKey(d.opts.LocalState)
	case d.goos == "darwin":
		if version != "v10" {
			return nil, fmt.Errorf("%w: %s on darwin", ErrUnsupportedVersion, version)
		}
		pw := d.opts.Password
		if pw == "" {
			var err error
			if pw, err = keychainPassword(); err != nil {
				return nil, fmt.Errorf("%w: keychain: %v", ErrKeyUnavailable, err)
			}
		}
		return deriveKey(pw, macIterations), nil
	default:
		if version == "v10" {
			return deriveKey(linuxV10Password, linuxIterations), nil
		}
		pw := d.opts.Password
		if pw == "" && d.opts.PasswordLookup != nil {
			var err error
			if pw, err = d.opts.PasswordLookup(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrKeyUnavailable, err)
			}
		}
		if pw == "" {
			return nil, fmt.Errorf("%w: no safe storage password for v11", ErrKeyUnavailable)
		}
		return deriveKey(pw, linuxIterations), nil
	}
}
