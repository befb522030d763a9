package importer

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"testing"

	"github.com/warpdl/chromeimport/pkg/logger"
)

// stubCodec prefixes the input so tests can see it was re-encoded.
type stubCodec struct{ err error }

func (c stubCodec) Reencode(data []byte) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return append([]byte("png:"), data...), nil
}

func TestResolveFavicons_SharedIcon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Favicons")
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("icon"))
	createSQLite(t, path, iconMappingSchema, faviconsSchema,
		`INSERT INTO favicons VALUES (1, 'https://a.example/favicon.ico', 1)`,
		`INSERT INTO favicons VALUES (2, 'data:image/png;base64,!!!not base64', 1)`,
		`INSERT INTO favicons VALUES (3, '`+dataURL+`', 1)`,
		`INSERT INTO icon_mapping VALUES (1, 'https://a.example/', 1)`,
		`INSERT INTO icon_mapping VALUES (2, 'https://a.example/other', 1)`,
		`INSERT INTO icon_mapping VALUES (3, 'https://a.example/', 1)`,
		`INSERT INTO icon_mapping VALUES (4, 'https://b.example/', 2)`,
		`INSERT INTO icon_mapping VALUES (5, 'https://c.example/', 3)`,
		`INSERT INTO icon_mapping VALUES (6, 'https://d.example/', 99)`)

	mock := logger.NewMockLogger()
	usages, err := ResolveFavicons(context.Background(), openSQLite(t, path), stubCodec{}, mock)
	if err != nil {
		t.Fatalf("ResolveFavicons: %v", err)
	}
	if len(usages) != 2 {
		t.Fatalf("got %d usages, want 2: %+v", len(usages), usages)
	}

	shared := usages[0]
	if shared.IconURL != "https://a.example/favicon.ico" {
		t.Errorf("IconURL = %q", shared.IconURL)
	}
	if len(shared.PageURLs) != 2 || shared.PageURLs[0] != "https://a.example/" || shared.PageURLs[1] != "https://a.example/other" {
		t.Errorf("PageURLs = %v", shared.PageURLs)
	}

	inline := usages[1]
	if string(inline.PNGData) != "png:icon" || inline.IconURL != "" {
		t.Errorf("inline usage = %+v", inline)
	}
	if len(mock.WarningCalls) != 1 {
		t.Errorf("warnings = %v, want one for the bad data URL", mock.WarningCalls)
	}
}

func TestResolveIcon(t *testing.T) {
	if _, err := resolveIcon("data:image/png;base64,aWNvbg==", nil); err == nil {
		t.Error("data URL without codec resolved")
	}
	if _, err := resolveIcon("data:image/png;base64,aWNvbg==", stubCodec{err: errors.New("bad image")}); err == nil {
		t.Error("codec failure ignored")
	}
	if _, err := resolveIcon("data:image/png;base64,", stubCodec{}); err == nil {
		t.Error("empty data URL resolved")
	}
	if _, err := resolveIcon("/favicon.ico", stubCodec{}); err == nil {
		t.Error("relative icon URL resolved")
	}
	u, err := resolveIcon("HTTPS://Cdn.Example/i.png", nil)
	if err != nil || u.IconURL != "https://cdn.example/i.png" {
		t.Errorf("resolveIcon = %+v, %v", u, err)
	}
}
