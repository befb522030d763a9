// Package common holds names shared between the chromeimport front end and
// its configuration sources.
package common

// Environment variable names for configuration.
const (
	// SourceEnv overrides the profile directory to import from.
	SourceEnv = "CHROMEIMPORT_SOURCE"

	// PasswordStoreEnv selects the credential backend, like Chrome's
	// --password-store switch.
	PasswordStoreEnv = "CHROMEIMPORT_PASSWORD_STORE"

	// SafeStorageKeyEnv supplies the os_crypt password directly instead of
	// looking it up in the keyring.
	SafeStorageKeyEnv = "CHROMEIMPORT_SAFE_STORAGE_KEY"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "CHROMEIMPORT_DEBUG"
)

// DefaultOutDir is where exported files go when --out is not given.
const DefaultOutDir = "chromeimport-out"
