package importer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// CanonicalURL parses raw and returns it with a lower-case scheme and an
// ASCII (punycode) lower-case host. URLs without a scheme are rejected.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty URL")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("URL %q has no scheme", raw)
	}
	if host := u.Hostname(); host != "" {
		canon := strings.ToLower(host)
		if !isASCII(canon) {
			canon, err = idna.Lookup.ToASCII(host)
			if err != nil {
				return "", fmt.Errorf("invalid host %q: %w", host, err)
			}
		}
		if canon != host {
			u.Host = joinHost(canon, u.Port())
		}
	}
	return u.String(), nil
}

// PageURL returns CanonicalURL(raw), or raw without surrounding spaces when
// it does not parse. Visited and bookmarked URLs are kept as Chrome stored them.
func PageURL(raw string) string {
	if u, err := CanonicalURL(raw); err == nil {
		return u
	}
	return strings.TrimSpace(raw)
}

func joinHost(host, port string) string {
	if port != "" {
		return net.JoinHostPort(host, port)
	}
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// DecodeDataURL decodes an RFC 2397 data URL and returns its media type and
// payload. The media type defaults to text/plain when omitted.
func DecodeDataURL(raw string) (mediaType string, data []byte, err error) {
	if len(raw) < 5 || !strings.EqualFold(raw[:5], "data:") {
		return "", nil, errors.New("not a data URL")
	}
	meta, payload, found := strings.Cut(raw[5:], ",")
	if !found {
		return "", nil, errors.New("data URL has no payload separator")
	}

	isBase64 := false
	if i := strings.LastIndex(meta, ";"); i >= 0 && strings.EqualFold(strings.TrimSpace(meta[i+1:]), "base64") {
		isBase64 = true
		meta = meta[:i]
	}
	mediaType = strings.TrimSpace(meta)
	if mediaType == "" || strings.HasPrefix(mediaType, ";") {
		mediaType = "text/plain" + mediaType
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data URL payload: %w", err)
	}
	if !isBase64 {
		return mediaType, []byte(text), nil
	}
	text = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, text)
	data, err = base64.StdEncoding.DecodeString(text)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(text, "="))
		if err != nil {
			return "", nil, fmt.Errorf("data URL payload: %w", err)
		}
	}
	return mediaType, data, nil
}
