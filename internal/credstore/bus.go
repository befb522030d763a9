package credstore

import (
	"github.com/godbus/dbus/v5"
)

// busObject is the subset of dbus.BusObject the backends call.
type busObject interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
	GetProperty(p string) (dbus.Variant, error)
}

// objectFunc returns the object at path on the backend's service.
type objectFunc func(path dbus.ObjectPath) busObject

// Service names probed on the session bus.
const (
	kwallet4Service  = "org.kde.kwalletd"
	kwallet4Path     = "/modules/kwalletd"
	kwallet5Service  = "org.kde.kwalletd5"
	kwallet5Path     = "/modules/kwalletd5"
	secretService    = "org.freedesktop.secrets"
	secretPath       = "/org/freedesktop/secrets"
	dbusNameHasOwner = "org.freedesktop.DBus.NameHasOwner"
	dbusActivatable  = "org.freedesktop.DBus.ListActivatableNames"
)

var sessionBus = dbus.SessionBus

func serviceName(kind Kind) string {
	switch kind {
	case KindKWallet4:
		return kwallet4Service
	case KindKWallet5:
		return kwallet5Service
	case KindLibsecret:
		return secretService
	}
	return ""
}

// serviceAvailable reports whether kind's service is running or can be
// activated on the session bus.
func serviceAvailable(kind Kind) bool {
	name := serviceName(kind)
	if name == "" {
		return false
	}
	conn, err := sessionBus()
	if err != nil {
		return false
	}
	return nameAvailable(conn.BusObject(), name)
}

func nameAvailable(bus busObject, name string) bool {
	var owned bool
	if err := bus.Call(dbusNameHasOwner, 0, name).Store(&owned); err == nil && owned {
		return true
	}
	var activatable []string
	if err := bus.Call(dbusActivatable, 0).Store(&activatable); err != nil {
		return false
	}
	for _, n := range activatable {
		if n == name {
			return true
		}
	}
	return false
}

func connObjects(conn *dbus.Conn, service string) objectFunc {
	return func(path dbus.ObjectPath) busObject {
		return conn.Object(service, path)
	}
}
