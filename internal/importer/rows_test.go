package importer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/warpdl/chromeimport/pkg/logger"
)

func TestReadHistory_SkipsHidden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "History")
	createSQLite(t, path, historySchema,
		`INSERT INTO urls VALUES (1, 'HTTPS://A.Example/path', 'A', 3, 1, 12879119098092474, 0)`,
		`INSERT INTO urls VALUES (2, 'https://hidden.example/', 'H', 1, 0, 12879119098092474, 1)`,
		`INSERT INTO urls VALUES (3, 'no scheme', 'bare', 1, 0, 12879119098092474, 0)`,
		`INSERT INTO urls VALUES (4, 'https://b.example/', NULL, 0, 0, 0, 0)`,
		`INSERT INTO urls VALUES (5, 'https://a.example/%zz', 'Escape', 1, 0, 12879119098092474, 0)`)

	mock := logger.NewMockLogger()
	rows, err := ReadHistory(context.Background(), openSQLite(t, path), mock)
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4: %+v", len(rows), rows)
	}
	byTitle := make(map[string]HistoryRecord)
	for _, r := range rows {
		if r.URL == "https://hidden.example/" || r.Hidden {
			t.Errorf("hidden row imported: %+v", r)
		}
		byTitle[r.Title] = r
	}
	a := byTitle["A"]
	if a.URL != "https://a.example/path" || a.VisitCount != 3 || a.TypedCount != 1 {
		t.Errorf("row = %+v", a)
	}
	if want := time.Date(2009, 2, 14, 21, 4, 58, 0, time.UTC); !a.LastVisit.Equal(want) {
		t.Errorf("LastVisit = %v, want %v", a.LastVisit, want)
	}
	if b, ok := byTitle[""]; !ok || b.URL != "https://b.example/" {
		t.Errorf("NULL title row = %+v", b)
	}
	if got := byTitle["bare"].URL; got != "no scheme" {
		t.Errorf("schemeless URL = %q, want it as stored", got)
	}
	if got := byTitle["Escape"].URL; got != "https://a.example/%zz" {
		t.Errorf("bad escape URL = %q, want it as stored", got)
	}
	if len(mock.WarningCalls) != 0 {
		t.Errorf("warnings = %v, want none", mock.WarningCalls)
	}
}

func TestReadHistory_CancelledReturnsNothingMore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "History")
	createSQLite(t, path, historySchema,
		`INSERT INTO urls VALUES (1, 'https://a.example/', 'A', 1, 0, 0, 0)`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rows, err := ReadHistory(ctx, openSQLite(t, path), logger.NewNopLogger())
	if err != nil || len(rows) != 0 {
		t.Errorf("ReadHistory = %v, %v; want nothing", rows, err)
	}
}

// countdownContext reports context.Canceled once Err has been called left
// times.
type countdownContext struct {
	context.Context
	left int
}

func cancelAfter(n int) *countdownContext {
	return &countdownContext{Context: context.Background(), left: n}
}

func (c *countdownContext) Err() error {
	if c.left <= 0 {
		return context.Canceled
	}
	c.left--
	return nil
}

func TestReadHistory_CancelledMidQueryKeepsRowsRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "History")
	createSQLite(t, path, historySchema,
		`INSERT INTO urls VALUES (1, 'https://a.example/', 'A', 1, 0, 0, 0)`,
		`INSERT INTO urls VALUES (2, 'https://b.example/', 'B', 1, 0, 0, 0)`,
		`INSERT INTO urls VALUES (3, 'https://c.example/', 'C', 1, 0, 0, 0)`,
		`INSERT INTO urls VALUES (4, 'https://d.example/', 'D', 1, 0, 0, 0)`)

	rows, err := ReadHistory(cancelAfter(2), openSQLite(t, path), logger.NewNopLogger())
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(rows) != 2 || rows[0].Title != "A" || rows[1].Title != "B" {
		t.Errorf("rows = %+v, want A and B", rows)
	}
}

func TestReadCookies_CancelledMidQueryKeepsRowsRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cookies")
	createSQLite(t, path, cookiesSchema,
		`INSERT INTO cookies VALUES ('a.example', 'one', 'v', x'', '/', 0, 0, 0)`,
		`INSERT INTO cookies VALUES ('a.example', 'two', 'v', x'', '/', 0, 0, 0)`,
		`INSERT INTO cookies VALUES ('a.example', 'three', 'v', x'', '/', 0, 0, 0)`)

	cookies, err := ReadCookies(cancelAfter(1), openSQLite(t, path), logger.NewNopLogger())
	if err != nil {
		t.Fatalf("ReadCookies: %v", err)
	}
	if len(cookies) != 1 || cookies[0].Name != "one" {
		t.Errorf("cookies = %+v, want only the first", cookies)
	}
}

func TestReadCookies_OnlyUnencrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cookies")
	createSQLite(t, path, cookiesSchema,
		`INSERT INTO cookies VALUES ('.a.example', 'sid', 'plain', x'', '/', 12879119098092474, 1, 0)`,
		`INSERT INTO cookies VALUES ('b.example', 'pref', 'x', NULL, '/p', 0, 0, 1)`,
		`INSERT INTO cookies VALUES ('.a.example', 'enc', '', x'763130aabb', '/', 12879119098092474, 1, 1)`)

	cookies, err := ReadCookies(context.Background(), openSQLite(t, path), logger.NewNopLogger())
	if err != nil {
		t.Fatalf("ReadCookies: %v", err)
	}
	for _, c := range cookies {
		if c.Name == "enc" {
			t.Fatal("encrypted cookie imported")
		}
		if c.Host != "*"+c.Domain {
			t.Errorf("Host = %q for domain %q", c.Host, c.Domain)
		}
	}
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1: %+v", len(cookies), cookies)
	}
	c := cookies[0]
	if c.Name != "sid" || c.Value != "plain" || !c.Secure || c.HttpOnly || c.Path != "/" {
		t.Errorf("cookie = %+v", c)
	}
}

func TestReadCookies_LegacyColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cookies")
	createSQLite(t, path,
		`CREATE TABLE cookies (host_key TEXT, name TEXT, value TEXT, encrypted_value BLOB,
			path TEXT, expires_utc INTEGER, secure INTEGER, httponly INTEGER)`,
		`INSERT INTO cookies VALUES ('old.example', 'a', 'b', x'', '/', 0, 0, 1)`)
	cookies, err := ReadCookies(context.Background(), openSQLite(t, path), logger.NewNopLogger())
	if err != nil {
		t.Fatalf("ReadCookies: %v", err)
	}
	if len(cookies) != 1 || !cookies[0].HttpOnly || cookies[0].Host != "*old.example" {
		t.Errorf("cookies = %+v", cookies)
	}
}

func TestReadCookies_NoTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Cookies")
	createSQLite(t, path, `CREATE TABLE meta (key TEXT, value TEXT)`)
	if _, err := ReadCookies(context.Background(), openSQLite(t, path), logger.NewNopLogger()); err == nil {
		t.Error("expected error without a cookies table")
	}
}

type fakeRow struct{ err error }

func (f fakeRow) Scan(dest ...any) error { return f.err }

func TestDecodeRow_ScanError(t *testing.T) {
	if _, err := DecodeHistoryRow(fakeRow{err: context.Canceled}); err == nil {
		t.Error("DecodeHistoryRow ignored scan error")
	}
	if _, err := DecodeCookieRow(fakeRow{err: context.Canceled}); err == nil {
		t.Error("DecodeCookieRow ignored scan error")
	}
}
