package credstore

import (
	"errors"
	"fmt"
	"sort"

	"github.com/godbus/dbus/v5"
	"github.com/warpdl/chromeimport/pkg/logger"
)

const (
	kwalletInterface = "org.kde.KWallet"
	kwalletAppID     = "Chrome"
)

// KWallet reads Chrome logins from KDE Wallet's network wallet.
type KWallet struct {
	kind   Kind
	obj    busObject
	handle int32
	folder string
	log    logger.Logger
}

var _ Backend = (*KWallet)(nil)

// OpenKWallet connects to kwalletd (KindKWallet4) or kwalletd5 (KindKWallet5)
// and opens the network wallet.
func OpenKWallet(conn *dbus.Conn, kind Kind, profileID int, log logger.Logger) (*KWallet, error) {
	var path dbus.ObjectPath
	switch kind {
	case KindKWallet4:
		path = kwallet4Path
	case KindKWallet5:
		path = kwallet5Path
	default:
		return nil, fmt.Errorf("%s is not a KWallet backend", kind)
	}
	return openKWallet(connObjects(conn, serviceName(kind))(path), kind, profileID, log)
}

func openKWallet(obj busObject, kind Kind, profileID int, log logger.Logger) (*KWallet, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	k := &KWallet{
		kind:   kind,
		obj:    obj,
		handle: -1,
		folder: fmt.Sprintf("Chrome Form Data (%d)", profileID),
		log:    log,
	}

	var enabled bool
	if err := k.call("isEnabled").Store(&enabled); err != nil {
		return nil, fmt.Errorf("%s: isEnabled: %w", kind, err)
	}
	if !enabled {
		return nil, fmt.Errorf("%s: wallet subsystem is disabled", kind)
	}
	var wallet string
	if err := k.call("networkWallet").Store(&wallet); err != nil {
		return nil, fmt.Errorf("%s: networkWallet: %w", kind, err)
	}
	if err := k.call("open", wallet, int64(0), kwalletAppID).Store(&k.handle); err != nil {
		return nil, fmt.Errorf("%s: open %q: %w", kind, wallet, err)
	}
	if k.handle < 0 {
		return nil, fmt.Errorf("%s: open %q was refused", kind, wallet)
	}
	return k, nil
}

func (k *KWallet) call(method string, args ...interface{}) *dbus.Call {
	return k.obj.Call(kwalletInterface+"."+method, 0, args...)
}

func (k *KWallet) Name() string { return k.kind.String() }

func (k *KWallet) Autofillable() ([]Credential, error) {
	creds, err := k.all()
	if err != nil {
		return nil, err
	}
	return splitBlacklisted(creds, false), nil
}

func (k *KWallet) Blacklisted() ([]Credential, error) {
	creds, err := k.all()
	if err != nil {
		return nil, err
	}
	return splitBlacklisted(creds, true), nil
}

// all decodes every entry of the profile's folder. An entry that does not
// decode is skipped with a warning.
func (k *KWallet) all() ([]Credential, error) {
	var has bool
	if err := k.call("hasFolder", k.handle, k.folder, kwalletAppID).Store(&has); err != nil {
		return nil, fmt.Errorf("%s: hasFolder: %w", k.kind, err)
	}
	if !has {
		return nil, nil
	}

	var entries map[string]dbus.Variant
	if err := k.call("readEntryList", k.handle, k.folder, "*", kwalletAppID).Store(&entries); err != nil {
		return nil, fmt.Errorf("%s: readEntryList: %w", k.kind, err)
	}
	realms := make([]string, 0, len(entries))
	for realm := range entries {
		realms = append(realms, realm)
	}
	sort.Strings(realms)

	var creds []Credential
	for _, realm := range realms {
		data, ok := entries[realm].Value().([]byte)
		if !ok {
			k.log.Warning("%s: entry %s is not a byte array", k.kind, realm)
			continue
		}
		forms, err := DecodeKWalletForms(realm, data)
		if err != nil {
			k.log.Warning("%s: %v", k.kind, err)
			continue
		}
		creds = append(creds, forms...)
	}
	return creds, nil
}

func (k *KWallet) Close() error {
	if k.handle < 0 {
		return nil
	}
	var rc int32
	err := k.call("close", k.handle, false, kwalletAppID).Store(&rc)
	k.handle = -1
	if err != nil {
		return fmt.Errorf("%s: close: %w", k.kind, err)
	}
	if rc < 0 {
		return errors.New(k.kind.String() + ": close failed")
	}
	return nil
}
