package credstore

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

type busCall struct {
	method string
	args   []interface{}
}

// fakeObject answers method calls from a table of canned replies.
type fakeObject struct {
	replies map[string][]interface{}
	errs    map[string]error
	props   map[string]dbus.Variant
	calls   []busCall
}

func newFakeObject() *fakeObject {
	return &fakeObject{
		replies: make(map[string][]interface{}),
		errs:    make(map[string]error),
		props:   make(map[string]dbus.Variant),
	}
}

func (f *fakeObject) Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	f.calls = append(f.calls, busCall{method: method, args: args})
	if err, ok := f.errs[method]; ok {
		return &dbus.Call{Method: method, Err: err}
	}
	body, ok := f.replies[method]
	if !ok {
		return &dbus.Call{Method: method, Err: fmt.Errorf("no reply for %s", method)}
	}
	return &dbus.Call{Method: method, Body: body}
}

func (f *fakeObject) GetProperty(p string) (dbus.Variant, error) {
	v, ok := f.props[p]
	if !ok {
		return dbus.Variant{}, errors.New("no such property " + p)
	}
	return v, nil
}

func (f *fakeObject) called(method string) int {
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}
