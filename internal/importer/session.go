package importer

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/warpdl/chromeimport/internal/credstore"
	"github.com/warpdl/chromeimport/internal/profile"
	"github.com/warpdl/chromeimport/pkg/logger"
)

// Options configures a Session. Zero values are usable: a nil Logger discards
// messages, a nil Codec skips inline icons and nil Credentials imports no
// passwords.
type Options struct {
	Logger      logger.Logger
	Codec       FaviconCodec
	Credentials CredentialResolver
	// FolderLabel names the folder bookmarks are imported under.
	// Defaults to DefaultFolderLabel.
	FolderLabel string
}

// Session imports one profile. It holds no per-run state and may be reused
// sequentially, but Run must not be called concurrently on the same Sink.
type Session struct {
	log         logger.Logger
	codec       FaviconCodec
	creds       CredentialResolver
	folderLabel string
}

// NewSession returns a Session with the given collaborators.
func NewSession(opts Options) *Session {
	s := &Session{
		log:         opts.Logger,
		codec:       opts.Codec,
		creds:       opts.Credentials,
		folderLabel: opts.FolderLabel,
	}
	if s.log == nil {
		s.log = logger.NewNopLogger()
	}
	if s.folderLabel == "" {
		s.folderLabel = DefaultFolderLabel
	}
	return s
}

// Run imports the categories requested by src into sink. The order is fixed:
// history, favorites, cookies, passwords. Every category that runs is
// bracketed by NotifyItemStarted/NotifyItemEnded even when it delivers
// nothing. NotifyStarted and NotifyEnded are called exactly once each.
//
// Cancelling ctx stops further work; anything already handed to sink stays.
func (s *Session) Run(ctx context.Context, src profile.SourceProfile, sink Sink) {
	sink.NotifyStarted()

	for _, item := range profile.Items {
		if !src.Items.Has(item) || ctx.Err() != nil {
			continue
		}
		sink.NotifyItemStarted(item)
		switch item {
		case profile.History:
			s.importHistory(ctx, src, sink)
		case profile.Favorites:
			s.importBookmarks(ctx, src, sink)
			s.importFavicons(ctx, src, sink)
		case profile.Cookies:
			s.importCookies(ctx, src, sink)
		case profile.Passwords:
			s.importPasswords(ctx, src, sink)
		}
		sink.NotifyItemEnded(item)
	}

	sink.NotifyEnded()
}

// openStore opens a SQLite store, returning nil when it is absent or broken.
func (s *Session) openStore(src profile.SourceProfile, item profile.Item, path string) *profile.Store {
	st, err := profile.OpenStore(src.Fs, path)
	if err != nil {
		if errors.Is(err, profile.ErrNotExist) {
			s.log.Info("%s: no %s in profile", item, filepath.Base(path))
			return nil
		}
		s.log.Error("%v", &StoreError{Item: item, Path: path, Op: "open", Err: err})
		return nil
	}
	return st
}

func (s *Session) importHistory(ctx context.Context, src profile.SourceProfile, sink Sink) {
	path := src.File(profile.HistoryFile)
	st := s.openStore(src, profile.History, path)
	if st == nil {
		return
	}
	defer st.Close()

	rows, err := ReadHistory(ctx, st.DB, s.log)
	if err != nil {
		s.log.Error("%v", &StoreError{Item: profile.History, Path: path, Op: "query", Err: err})
	}
	if len(rows) > 0 {
		sink.AddHistory(rows, VisitSourceChromeImported)
	}
}

func (s *Session) importBookmarks(ctx context.Context, src profile.SourceProfile, sink Sink) {
	path := src.File(profile.BookmarksFile)
	data, err := profile.ReadFile(src.Fs, path)
	if err != nil {
		if errors.Is(err, profile.ErrNotExist) {
			s.log.Info("%s: no %s in profile", profile.Favorites, profile.BookmarksFile)
			return
		}
		s.log.Error("%v", &StoreError{Item: profile.Favorites, Path: path, Op: "open", Err: err})
		return
	}

	entries, err := WalkBookmarks(ctx, data, s.log)
	if err != nil {
		s.log.Error("%v", &StoreError{Item: profile.Favorites, Path: path, Op: "parse", Err: err})
		return
	}
	if len(entries) > 0 && ctx.Err() == nil {
		sink.AddBookmarks(entries, s.folderLabel)
	}
}

func (s *Session) importFavicons(ctx context.Context, src profile.SourceProfile, sink Sink) {
	if ctx.Err() != nil {
		return
	}
	path := src.File(profile.FaviconsFile)
	st := s.openStore(src, profile.Favorites, path)
	if st == nil {
		return
	}
	defer st.Close()

	usages, err := ResolveFavicons(ctx, st.DB, s.codec, s.log)
	if err != nil {
		s.log.Error("%v", &StoreError{Item: profile.Favorites, Path: path, Op: "query", Err: err})
		return
	}
	if len(usages) > 0 && ctx.Err() == nil {
		sink.SetFavicons(usages)
	}
}

func (s *Session) importCookies(ctx context.Context, src profile.SourceProfile, sink Sink) {
	path := src.CookiesPath()
	st := s.openStore(src, profile.Cookies, path)
	if st == nil {
		return
	}
	defer st.Close()

	cookies, err := ReadCookies(ctx, st.DB, s.log)
	if err != nil {
		s.log.Error("%v", &StoreError{Item: profile.Cookies, Path: path, Op: "query", Err: err})
	}
	if len(cookies) > 0 {
		sink.AddCookies(cookies)
	}
}

func (s *Session) importPasswords(ctx context.Context, src profile.SourceProfile, sink Sink) {
	if s.creds == nil {
		s.log.Warning("%s: no credential backend configured", profile.Passwords)
		return
	}
	backend, err := s.creds.Resolve(src)
	if err != nil {
		if errors.Is(err, credstore.ErrNoBackend) {
			s.log.Warning("%s: %v", profile.Passwords, err)
		} else {
			s.log.Error("%s: %v", profile.Passwords, err)
		}
		return
	}
	defer backend.Close()

	s.forwardCredentials(ctx, backend.Name(), "autofillable", backend.Autofillable, sink)
	s.forwardCredentials(ctx, backend.Name(), "blacklisted", backend.Blacklisted, sink)
}

// forwardCredentials hands each credential to the sink as soon as it is listed.
// A failed listing contributes nothing.
func (s *Session) forwardCredentials(ctx context.Context, backend, kind string, list func() ([]credstore.Credential, error), sink Sink) {
	if ctx.Err() != nil {
		return
	}
	creds, err := list()
	if err != nil {
		s.log.Warning("%s: %s: cannot list %s logins: %v", profile.Passwords, backend, kind, err)
		return
	}
	for _, c := range creds {
		if ctx.Err() != nil {
			return
		}
		sink.AddCredential(c)
	}
}
