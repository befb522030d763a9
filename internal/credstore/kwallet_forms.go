package credstore

import (
	"fmt"
	"time"

	"github.com/warpdl/chromeimport/internal/chrometime"
	"github.com/warpdl/chromeimport/internal/credstore/pickle"
)

// Oldest and newest pickle versions Chrome has written to KWallet.
const (
	minFormPickleVersion = 1
	maxFormPickleVersion = 7

	// Newest serialized FormData and FormFieldData layouts understood.
	maxFormDataVersion  = 5
	maxFormFieldVersion = 5

	maxFormsPerEntry = 0xFFFF
)

// DecodeKWalletForms decodes one KWallet entry: the pickled list of forms
// saved under signonRealm.
//
// The form count is normally 64 bits wide. Entries written by 32-bit builds
// use a 32-bit count; that layout is tried second and only accepted when it
// consumes the whole payload.
func DecodeKWalletForms(signonRealm string, data []byte) ([]Credential, error) {
	creds, err := decodeForms(signonRealm, data, false)
	if err == nil {
		return creds, nil
	}
	if creds32, err32 := decodeForms(signonRealm, data, true); err32 == nil {
		return creds32, nil
	}
	return nil, fmt.Errorf("kwallet entry %s: %w", signonRealm, err)
}

func decodeForms(signonRealm string, data []byte, count32 bool) ([]Credential, error) {
	r, err := pickle.NewReader(data)
	if err != nil {
		return nil, err
	}
	version, err := r.ReadInt()
	if err != nil {
		return nil, err
	}
	if version < minFormPickleVersion || version > maxFormPickleVersion {
		return nil, fmt.Errorf("unsupported pickle version %d", version)
	}

	var count uint64
	if count32 {
		var n uint32
		n, err = r.ReadUint32()
		count = uint64(n)
	} else {
		count, err = r.ReadUint64()
	}
	if err != nil {
		return nil, err
	}
	// Each form takes far more than 4 bytes; reject counts the payload
	// cannot possibly hold before allocating.
	if count > maxFormsPerEntry || count > uint64(r.Remaining()/4) {
		return nil, fmt.Errorf("form count %d exceeds payload", count)
	}

	creds := make([]Credential, 0, count)
	for i := uint64(0); i < count; i++ {
		c, err := readForm(r, version)
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", i, err)
		}
		c.SignonRealm = signonRealm
		creds = append(creds, c)
	}
	if count32 && r.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes", r.Remaining())
	}
	return creds, nil
}

// formReader reads fields in sequence and remembers the first error.
type formReader struct {
	r   *pickle.Reader
	err error
}

func (f *formReader) int() int32 {
	if f.err != nil {
		return 0
	}
	var v int32
	v, f.err = f.r.ReadInt()
	return v
}

func (f *formReader) int64() int64 {
	if f.err != nil {
		return 0
	}
	var v int64
	v, f.err = f.r.ReadInt64()
	return v
}

func (f *formReader) uint64() uint64 {
	if f.err != nil {
		return 0
	}
	var v uint64
	v, f.err = f.r.ReadUint64()
	return v
}

func (f *formReader) bool() bool {
	if f.err != nil {
		return false
	}
	var v bool
	v, f.err = f.r.ReadBool()
	return v
}

func (f *formReader) string() string {
	if f.err != nil {
		return ""
	}
	var v string
	v, f.err = f.r.ReadString()
	return v
}

func (f *formReader) string16() string {
	if f.err != nil {
		return ""
	}
	var v string
	v, f.err = f.r.ReadString16()
	return v
}

// count reads a vector length and checks the payload can hold it.
func (f *formReader) count(what string) int {
	n := f.int()
	if f.err != nil {
		return 0
	}
	if n < 0 || int(n) > f.r.Remaining()/4 {
		f.err = fmt.Errorf("%s count %d exceeds payload", what, n)
		return 0
	}
	return int(n)
}

func (f *formReader) string16s() {
	n := f.count("option")
	for i := 0; i < n && f.err == nil; i++ {
		f.string16()
	}
}

func readForm(r *pickle.Reader, version int32) (Credential, error) {
	f := &formReader{r: r}
	var c Credential
	c.Scheme = Scheme(f.int())
	c.OriginURL = f.string()
	c.ActionURL = f.string()
	c.UsernameElement = f.string16()
	c.UsernameValue = f.string16()
	c.PasswordElement = f.string16()
	c.PasswordValue = f.string16()
	c.SubmitElement = f.string16()
	f.bool() // ssl_valid
	c.Preferred = f.bool()
	c.BlacklistedByUser = f.bool()
	created := f.int64()
	if version > 1 {
		f.int() // type
		c.TimesUsed = int(f.int())
		f.formData()
	}
	if version > 2 {
		f.int64() // date_synced
	}
	if version > 3 {
		f.string16() // display_name
		f.string()   // icon_url
		f.string()   // federation_url
		f.bool()     // skip_zero_click
	}
	if version > 5 && f.err == nil {
		// generation_upload_status; some version 6 entries were written
		// without it.
		if _, err := r.ReadInt(); err != nil && version > 6 {
			f.err = err
		}
	}
	if f.err != nil {
		return Credential{}, f.err
	}

	// Up to version 4 the creation date is time_t seconds, later versions
	// store base::Time values.
	if version > 4 {
		c.DateCreated = chrometime.ToTime(created)
	} else {
		c.DateCreated = time.Unix(created, 0).UTC()
	}
	return c, nil
}

// formData skips the serialized autofill FormData stored with each form.
func (f *formReader) formData() {
	version := f.int()
	if f.err != nil {
		return
	}
	if version < 1 || version > maxFormDataVersion {
		f.err = fmt.Errorf("unsupported form data version %d", version)
		return
	}
	f.string16() // name
	if version == 1 {
		f.string16() // method
	}
	f.string() // origin
	f.string() // action
	f.bool()   // user_submitted
	n := f.count("field")
	for i := 0; i < n && f.err == nil; i++ {
		f.formField()
	}
	if version >= 3 {
		f.bool() // is_form_tag
	}
	if version >= 4 {
		f.bool() // is_formless_checkout
	}
	if version >= 5 {
		f.string() // main_frame_origin
	}
}

func (f *formReader) formField() {
	version := f.int()
	if f.err != nil {
		return
	}
	if version < 1 || version > maxFormFieldVersion {
		f.err = fmt.Errorf("unsupported form field version %d", version)
		return
	}
	f.string16() // label
	f.string16() // name
	f.string16() // value
	f.string()   // form_control_type
	f.string()   // autocomplete_attribute
	f.uint64()   // max_length
	f.bool()     // is_autofilled
	if version == 1 {
		f.bool() // is_checked
		f.bool() // is_checkable
	} else {
		f.int() // check_status
	}
	f.bool() // is_focusable
	f.bool() // should_autocomplete
	if version >= 3 {
		f.int() // role
	}
	f.int() // text_direction
	f.string16s()
	f.string16s()
	if version >= 4 {
		f.int() // properties_mask
	}
	if version >= 5 {
		f.string16() // id
	}
}
