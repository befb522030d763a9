package credstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/warpdl/chromeimport/internal/chrometime"
	"github.com/warpdl/chromeimport/internal/profile"
)

// Decrypter turns an encrypted password_value blob into plaintext.
type Decrypter interface {
	Decrypt(ciphertext []byte) (string, error)
}

// LoginDatabase reads credentials from the profile's Login Data SQLite store.
type LoginDatabase struct {
	store *profile.Store
	dec   Decrypter
	query string
}

var _ Backend = (*LoginDatabase)(nil)

// optionalLoginColumns were added or removed across Chrome versions.
var optionalLoginColumns = []string{"preferred", "times_used"}

// OpenLoginDatabase copies and opens src's Login Data. dec may be nil when
// password values are stored unencrypted.
func OpenLoginDatabase(src profile.SourceProfile, dec Decrypter) (*LoginDatabase, error) {
	store, err := profile.OpenStore(src.Fs, src.File(profile.LoginDataFile))
	if err != nil {
		return nil, err
	}
	query, err := loginQuery(store.DB)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &LoginDatabase{store: store, dec: dec, query: query}, nil
}

func loginQuery(db *sql.DB) (string, error) {
	rows, err := db.Query("PRAGMA table_info(logins)")
	if err != nil {
		return "", fmt.Errorf("error: cannot inspect logins table: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return "", err
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(present) == 0 {
		return "", fmt.Errorf("error: Login Data has no logins table")
	}

	cols := []string{
		"origin_url", "action_url", "username_element", "username_value",
		"password_element", "password_value", "submit_element", "signon_realm",
		"date_created", "blacklisted_by_user", "scheme",
	}
	for _, c := range optionalLoginColumns {
		if present[c] {
			cols = append(cols, c)
		} else {
			cols = append(cols, "0")
		}
	}
	return "SELECT " + strings.Join(cols, ", ") +
		" FROM logins WHERE blacklisted_by_user = ? ORDER BY origin_url", nil
}

func (l *LoginDatabase) Name() string { return KindLoginDatabase.String() }

func (l *LoginDatabase) Autofillable() ([]Credential, error) { return l.list(false) }

func (l *LoginDatabase) Blacklisted() ([]Credential, error) { return l.list(true) }

func (l *LoginDatabase) Close() error { return l.store.Close() }

// list returns every login with the given blacklist flag. A row that cannot
// be decoded or decrypted fails the whole call.
func (l *LoginDatabase) list(blacklisted bool) ([]Credential, error) {
	flag := 0
	if blacklisted {
		flag = 1
	}
	rows, err := l.store.DB.Query(l.query, flag)
	if err != nil {
		return nil, fmt.Errorf("error: cannot query logins: %w", err)
	}
	defer rows.Close()

	var creds []Credential
	for rows.Next() {
		var (
			c         Credential
			password  []byte
			created   int64
			blFlag    int
			scheme    int
			preferred int
			timesUsed int
		)
		if err := rows.Scan(&c.OriginURL, &c.ActionURL, &c.UsernameElement, &c.UsernameValue,
			&c.PasswordElement, &password, &c.SubmitElement, &c.SignonRealm,
			&created, &blFlag, &scheme, &preferred, &timesUsed); err != nil {
			return nil, fmt.Errorf("error: cannot read login row: %w", err)
		}
		c.PasswordValue, err = l.decrypt(password)
		if err != nil {
			return nil, fmt.Errorf("error: cannot decrypt password for %s: %w", c.OriginURL, err)
		}
		c.DateCreated = chrometime.ToTime(created)
		c.BlacklistedByUser = blFlag != 0
		c.Scheme = Scheme(scheme)
		c.Preferred = preferred != 0
		c.TimesUsed = timesUsed
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return creds, nil
}

func (l *LoginDatabase) decrypt(value []byte) (string, error) {
	if len(value) == 0 {
		return "", nil
	}
	if l.dec == nil {
		return string(value), nil
	}
	return l.dec.Decrypt(value)
}
