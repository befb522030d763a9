package credstore

import "time"

// Scheme is the authentication scheme a credential was saved for.
type Scheme int

const (
	SchemeHTML Scheme = iota
	SchemeBasic
	SchemeDigest
	SchemeOther
)

// Credential is one saved login. The importer forwards it without
// interpreting anything but BlacklistedByUser.
// IMPORTANT: PasswordValue is SENSITIVE and must never be logged.
type Credential struct {
	Scheme            Scheme    `json:"scheme"`
	SignonRealm       string    `json:"signon_realm"`
	OriginURL         string    `json:"origin_url"`
	ActionURL         string    `json:"action_url"`
	UsernameElement   string    `json:"username_element"`
	UsernameValue     string    `json:"username_value"`
	PasswordElement   string    `json:"password_element"`
	PasswordValue     string    `json:"password_value"`
	SubmitElement     string    `json:"submit_element"`
	Preferred         bool      `json:"preferred"`
	BlacklistedByUser bool      `json:"blacklisted_by_user"`
	DateCreated       time.Time `json:"date_created"`
	TimesUsed         int       `json:"times_used"`
}

// splitBlacklisted partitions creds by BlacklistedByUser, keeping order.
func splitBlacklisted(creds []Credential, blacklisted bool) []Credential {
	var out []Credential
	for _, c := range creds {
		if c.BlacklistedByUser == blacklisted {
			out = append(out, c)
		}
	}
	return out
}
