package importer

import "time"

// VisitSource tags where imported history came from.
type VisitSource string

// VisitSourceChromeImported marks rows imported from a Chrome profile.
const VisitSourceChromeImported VisitSource = "chrome_imported"

// DefaultFolderLabel is the top-level folder imported bookmarks are placed under.
const DefaultFolderLabel = "Imported from Chrome"

// HistoryRecord is one visible row of the urls table.
type HistoryRecord struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	LastVisit  time.Time `json:"last_visit"`
	TypedCount int       `json:"typed_count"`
	VisitCount int       `json:"visit_count"`
	// Hidden is always false; hidden rows are filtered by the query.
	Hidden bool `json:"hidden"`
}

// BookmarkEntry is one node of the flattened bookmark tree.
type BookmarkEntry struct {
	// URL is empty for folders.
	URL   string `json:"url,omitempty"`
	Title string `json:"title"`
	// Path holds the names of the enclosing folders, outermost first.
	Path         []string  `json:"path"`
	IsFolder     bool      `json:"is_folder"`
	InToolbar    bool      `json:"in_toolbar"`
	CreationTime time.Time `json:"creation_time"`
}

// FaviconUsage is one resolved icon and the pages that use it.
// Exactly one of IconURL and PNGData is set.
type FaviconUsage struct {
	IconURL  string   `json:"icon_url,omitempty"`
	PNGData  []byte   `json:"png_data,omitempty"`
	PageURLs []string `json:"page_urls"`
}

// CookieEntry is a plaintext cookie.
// IMPORTANT: Value is SENSITIVE and must never be logged.
type CookieEntry struct {
	Domain string `json:"domain"`
	Name   string `json:"name"`
	Value  string `json:"value"`
	// Host is Domain prefixed with "*".
	Host     string    `json:"host"`
	Path     string    `json:"path"`
	Expiry   time.Time `json:"expiry"`
	Secure   bool      `json:"secure"`
	HttpOnly bool      `json:"httponly"`
}
