package importer

import (
	"github.com/warpdl/chromeimport/internal/credstore"
	"github.com/warpdl/chromeimport/internal/profile"
)

// Sink receives everything a Session produces. Calls are made from the
// goroutine running the session, in order, and their outcome is not consulted.
type Sink interface {
	NotifyStarted()
	NotifyItemStarted(item profile.Item)
	NotifyItemEnded(item profile.Item)
	NotifyEnded()

	AddHistory(rows []HistoryRecord, source VisitSource)
	AddBookmarks(entries []BookmarkEntry, folderLabel string)
	SetFavicons(usage []FaviconUsage)
	AddCookies(cookies []CookieEntry)
	AddCredential(cred credstore.Credential)
}

// FaviconCodec turns decoded icon bytes into the destination's image format.
type FaviconCodec interface {
	Reencode(data []byte) ([]byte, error)
}

// CredentialResolver picks and initializes the credential backend for a
// profile. It returns credstore.ErrNoBackend when none applies.
type CredentialResolver interface {
	Resolve(src profile.SourceProfile) (credstore.Backend, error)
}
