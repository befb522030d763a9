package importer

import (
	"fmt"

	"github.com/warpdl/chromeimport/internal/profile"
)

// StoreError is a failure to open or read a category's store.
type StoreError struct {
	Item profile.Item
	Path string
	Op   string // "open", "query", "parse"
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Item, e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
