package oscrypt

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keySalt         = "saltysalt"
	cbcKeyLen       = 16
	macIterations   = 1003
	linuxIterations = 1
	// linuxV10Password is Chrome's hardcoded password for v10 values on
	// Linux when no secret service was available.
	linuxV10Password = "peanuts"
	gcmNonceSize     = 12
)

var cbcIV = bytes.Repeat([]byte{' '}, aes.BlockSize)

func deriveKey(password string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(keySalt), iterations, cbcKeyLen, sha1.New)
}

func decryptCBC(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(ciphertext))
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, cbcIV).CryptBlocks(plaintext, ciphertext)
	return unpad(plaintext)
}

func unpad(b []byte) ([]byte, error) {
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, errors.New("bad padding")
	}
	for _, p := range b[len(b)-n:] {
		if int(p) != n {
			return nil, errors.New("bad padding")
		}
	}
	return b[:len(b)-n], nil
}

func decryptGCM(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(data) < gcmNonceSize+gcm.Overhead() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := data[:gcmNonceSize]
	return gcm.Open(nil, nonce, data[gcmNonceSize:], nil)
}
