//go:build !windows

package oscrypt

import "errors"

var dpapiUnprotect = func([]byte) ([]byte, error) {
	return nil, errors.New("dpapi is only available on windows")
}
