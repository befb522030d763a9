package credstore

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/godbus/dbus/v5"
	"github.com/warpdl/chromeimport/internal/chrometime"
	"github.com/warpdl/chromeimport/pkg/logger"
)

const (
	secretServiceIface = "org.freedesktop.Secret.Service"
	secretItemAttrs    = "org.freedesktop.Secret.Item.Attributes"
	chromeSecretSchema = "chrome_libsecret_password_schema"
	noPrompt           = dbus.ObjectPath("/")
)

// secret mirrors the Secret Service (oayays) secret struct.
type secret struct {
	Session     dbus.ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}

// Libsecret reads Chrome logins from the freedesktop Secret Service.
type Libsecret struct {
	objects objectFunc
	session dbus.ObjectPath
	app     string
	log     logger.Logger
}

var _ Backend = (*Libsecret)(nil)

// OpenLibsecret opens a plain-transfer session with the Secret Service.
func OpenLibsecret(conn *dbus.Conn, profileID int, log logger.Logger) (*Libsecret, error) {
	return openLibsecret(connObjects(conn, secretService), profileID, log)
}

func openLibsecret(objects objectFunc, profileID int, log logger.Logger) (*Libsecret, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Libsecret{
		objects: objects,
		app:     fmt.Sprintf("chrome-%d", profileID),
		log:     log,
	}
	var output dbus.Variant
	if err := s.service("OpenSession", "plain", dbus.MakeVariant("")).Store(&output, &s.session); err != nil {
		return nil, fmt.Errorf("libsecret: OpenSession: %w", err)
	}
	return s, nil
}

func (s *Libsecret) service(method string, args ...interface{}) *dbus.Call {
	return s.objects(secretPath).Call(secretServiceIface+"."+method, 0, args...)
}

func (s *Libsecret) Name() string { return KindLibsecret.String() }

func (s *Libsecret) Autofillable() ([]Credential, error) { return s.search(false) }

func (s *Libsecret) Blacklisted() ([]Credential, error) { return s.search(true) }

func (s *Libsecret) search(blacklisted bool) ([]Credential, error) {
	items, secrets, err := s.find(map[string]string{
		"xdg:schema":          chromeSecretSchema,
		"application":         s.app,
		"blacklisted_by_user": boolAttr(blacklisted),
	})
	if err != nil {
		return nil, err
	}

	var creds []Credential
	for _, item := range items {
		sec := secrets[item]
		v, err := s.objects(item).GetProperty(secretItemAttrs)
		if err != nil {
			s.log.Warning("libsecret: cannot read attributes of %s: %v", item, err)
			continue
		}
		itemAttrs, ok := v.Value().(map[string]string)
		if !ok {
			s.log.Warning("libsecret: %s has malformed attributes", item)
			continue
		}
		creds = append(creds, credentialFromAttrs(itemAttrs, string(sec.Value)))
	}
	return creds, nil
}

// find returns the items matching attrs that have a retrievable secret,
// sorted by object path, along with their secrets. Items that stay locked
// behind an interactive prompt are left out.
func (s *Libsecret) find(attrs map[string]string) ([]dbus.ObjectPath, map[dbus.ObjectPath]secret, error) {
	var unlocked, locked []dbus.ObjectPath
	if err := s.service("SearchItems", attrs).Store(&unlocked, &locked); err != nil {
		return nil, nil, fmt.Errorf("libsecret: SearchItems: %w", err)
	}
	if len(locked) > 0 {
		var (
			opened []dbus.ObjectPath
			prompt dbus.ObjectPath
		)
		if err := s.service("Unlock", locked).Store(&opened, &prompt); err != nil {
			return nil, nil, fmt.Errorf("libsecret: Unlock: %w", err)
		}
		if prompt != noPrompt {
			s.log.Warning("libsecret: %d locked items need an interactive unlock, skipping them", len(locked)-len(opened))
		}
		unlocked = append(unlocked, opened...)
	}
	if len(unlocked) == 0 {
		return nil, nil, nil
	}

	var secrets map[dbus.ObjectPath]secret
	if err := s.service("GetSecrets", unlocked, s.session).Store(&secrets); err != nil {
		return nil, nil, fmt.Errorf("libsecret: GetSecrets: %w", err)
	}
	sort.Slice(unlocked, func(i, j int) bool { return unlocked[i] < unlocked[j] })
	items := unlocked[:0]
	for _, item := range unlocked {
		if _, ok := secrets[item]; ok {
			items = append(items, item)
		}
	}
	return items, secrets, nil
}

// Schemas Chrome has used for its os_crypt safe-storage password.
var safeStorageSchemas = []string{
	"chrome_libsecret_os_crypt_password_v2",
	"chrome_libsecret_os_crypt_password",
}

// SafeStoragePassword returns the password Chrome keeps in the Secret
// Service for encrypting v11 values.
func (s *Libsecret) SafeStoragePassword() (string, error) {
	for _, schema := range safeStorageSchemas {
		items, secrets, err := s.find(map[string]string{
			"xdg:schema":  schema,
			"application": "chrome",
		})
		if err != nil {
			return "", err
		}
		if len(items) > 0 {
			return string(secrets[items[0]].Value), nil
		}
	}
	return "", errors.New("libsecret: no Chrome safe storage password")
}

// LookupSafeStoragePassword connects to the session bus and fetches Chrome's
// safe-storage password.
func LookupSafeStoragePassword() (string, error) {
	conn, err := sessionBus()
	if err != nil {
		return "", err
	}
	s, err := OpenLibsecret(conn, 0, nil)
	if err != nil {
		return "", err
	}
	defer s.Close()
	return s.SafeStoragePassword()
}

// Close releases the transfer session.
func (s *Libsecret) Close() error {
	if s.session == "" || s.session == noPrompt {
		return nil
	}
	err := s.objects(s.session).Call("org.freedesktop.Secret.Session.Close", 0).Err
	s.session = ""
	return err
}

func boolAttr(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func credentialFromAttrs(attrs map[string]string, password string) Credential {
	num := func(key string) int64 {
		n, _ := strconv.ParseInt(attrs[key], 10, 64)
		return n
	}
	return Credential{
		Scheme:            Scheme(num("scheme")),
		SignonRealm:       attrs["signon_realm"],
		OriginURL:         attrs["origin_url"],
		ActionURL:         attrs["action_url"],
		UsernameElement:   attrs["username_element"],
		UsernameValue:     attrs["username_value"],
		PasswordElement:   attrs["password_element"],
		PasswordValue:     password,
		SubmitElement:     attrs["submit_element"],
		Preferred:         attrs["preferred"] == "1",
		BlacklistedByUser: attrs["blacklisted_by_user"] == "1",
		DateCreated:       chrometime.ToTime(num("date_created")),
		TimesUsed:         int(num("times_used")),
	}
}
