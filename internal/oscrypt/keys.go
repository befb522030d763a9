package oscrypt

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/zalando/go-keyring"
)

const (
	keychainService = "Chrome Safe Storage"
	keychainAccount = "Chrome"
	dpapiKeyPrefix  = "DPAPI"
	encryptedKeyRef = "os_crypt.encrypted_key"
)

var keyringGet = keyring.Get

func keychainPassword() (string, error) {
	return keyringGet(keychainService, keychainAccount)
}

// windowsMasterKey unwraps the AES-256 key Chrome keeps in Local State.
func windowsMasterKey(localState []byte) ([]byte, error) {
	if len(localState) == 0 {
		return nil, fmt.Errorf("%w: Local State not available", ErrKeyUnavailable)
	}
	v := gjson.GetBytes(localState, encryptedKeyRef)
	if !v.Exists() {
		return nil, fmt.Errorf("%w: Local State has no %s", ErrKeyUnavailable, encryptedKeyRef)
	}
	wrapped, err := base64.StdEncoding.DecodeString(v.String())
	if err != nil {
		return nil, fmt.Errorf("%w: bad %s: %v", ErrKeyUnavailable, encryptedKeyRef, err)
	}
	if !bytes.HasPrefix(wrapped, []byte(dpapiKeyPrefix)) {
		return nil, fmt.Errorf("%w: %s is not DPAPI protected", ErrKeyUnavailable, encryptedKeyRef)
	}
	key, err := dpapiUnprotect(wrapped[len(dpapiKeyPrefix):])
	if err != nil {
		return nil, fmt.Errorf("%w: dpapi: %v", ErrKeyUnavailable, err)
	}
	return key, nil
}
