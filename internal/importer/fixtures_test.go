package importer

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/warpdl/chromeimport/internal/credstore"
	"github.com/warpdl/chromeimport/internal/profile"
	_ "modernc.org/sqlite"
)

// fixtureChromeTime is 2009-02-14 21:04:58 UTC.
const fixtureChromeTime = 12879119098092474

func createSQLite(t *testing.T, path string, stmts ...string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}

func openSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := profile.OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

const historySchema = `CREATE TABLE urls (id INTEGER PRIMARY KEY, url TEXT, title TEXT,
	visit_count INTEGER, typed_count INTEGER, last_visit_time INTEGER, hidden INTEGER)`

const cookiesSchema = `CREATE TABLE cookies (host_key TEXT, name TEXT, value TEXT,
	encrypted_value BLOB, path TEXT, expires_utc INTEGER, is_secure INTEGER, is_httponly INTEGER)`

const (
	iconMappingSchema = `CREATE TABLE icon_mapping (id INTEGER PRIMARY KEY, page_url TEXT, icon_id INTEGER)`
	faviconsSchema    = `CREATE TABLE favicons (id INTEGER PRIMARY KEY, url TEXT, icon_type INTEGER)`
)

const bookmarksJSON = `{
  "roots": {
    "bookmark_bar": {
      "type": "folder", "name": "Bookmarks bar", "date_added": "12879119098092474",
      "children": [
        {
          "type": "folder", "name": "Work", "date_added": "12879119098092474",
          "children": [
            {"type": "url", "name": "Go", "url": "https://GO.dev/doc", "date_added": "12879119098092474"}
          ]
        }
      ]
    },
    "other": {"type": "folder", "name": "Other bookmarks", "children": []}
  },
  "version": 1
}`

// writeProfile lays out a profile directory with every store populated.
func writeProfile(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Default")
	createSQLite(t, filepath.Join(dir, profile.HistoryFile), historySchema,
		`INSERT INTO urls VALUES (1, 'https://a.example/', 'A', 3, 1, 12879119098092474, 0)`,
		`INSERT INTO urls VALUES (2, 'https://hidden.example/', 'H', 1, 0, 12879119098092474, 1)`)
	createSQLite(t, filepath.Join(dir, profile.CookiesFile), cookiesSchema,
		`INSERT INTO cookies VALUES ('.a.example', 'sid', 'plain', x'', '/', 12879119098092474, 1, 1)`,
		`INSERT INTO cookies VALUES ('.a.example', 'enc', '', x'763130aabb', '/', 12879119098092474, 0, 0)`)
	createSQLite(t, filepath.Join(dir, profile.FaviconsFile), iconMappingSchema, faviconsSchema,
		`INSERT INTO favicons VALUES (1, 'https://a.example/favicon.ico', 1)`,
		`INSERT INTO icon_mapping VALUES (1, 'https://a.example/', 1)`)
	if err := os.WriteFile(filepath.Join(dir, profile.BookmarksFile), []byte(bookmarksJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// call is one recorded sink invocation.
type call struct {
	method string
	item   profile.Item
}

// recordingSink records every call and the data it received.
type recordingSink struct {
	calls       []call
	history     []HistoryRecord
	source      VisitSource
	bookmarks   []BookmarkEntry
	folderLabel string
	favicons    []FaviconUsage
	cookies     []CookieEntry
	creds       []credstore.Credential

	onItemEnded func(profile.Item)
}

func (r *recordingSink) NotifyStarted() { r.calls = append(r.calls, call{method: "started"}) }

func (r *recordingSink) NotifyItemStarted(item profile.Item) {
	r.calls = append(r.calls, call{method: "item-started", item: item})
}

func (r *recordingSink) NotifyItemEnded(item profile.Item) {
	r.calls = append(r.calls, call{method: "item-ended", item: item})
	if r.onItemEnded != nil {
		r.onItemEnded(item)
	}
}

func (r *recordingSink) NotifyEnded() { r.calls = append(r.calls, call{method: "ended"}) }

func (r *recordingSink) AddHistory(rows []HistoryRecord, source VisitSource) {
	r.history = append(r.history, rows...)
	r.source = source
}

func (r *recordingSink) AddBookmarks(entries []BookmarkEntry, folderLabel string) {
	r.bookmarks = append(r.bookmarks, entries...)
	r.folderLabel = folderLabel
}

func (r *recordingSink) SetFavicons(usage []FaviconUsage) { r.favicons = usage }

func (r *recordingSink) AddCookies(cookies []CookieEntry) { r.cookies = append(r.cookies, cookies...) }

func (r *recordingSink) AddCredential(c credstore.Credential) { r.creds = append(r.creds, c) }

func (r *recordingSink) count(method string) int {
	n := 0
	for _, c := range r.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (r *recordingSink) started(item profile.Item) bool {
	for _, c := range r.calls {
		if c.method == "item-started" && c.item == item {
			return true
		}
	}
	return false
}
