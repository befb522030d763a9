// Package export writes imported profile data to a directory as JSON lines,
// one file per data kind, plus a summary.json written when the import ends.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/warpdl/chromeimport/internal/credstore"
	"github.com/warpdl/chromeimport/internal/importer"
	"github.com/warpdl/chromeimport/internal/profile"
	"github.com/warpdl/chromeimport/pkg/logger"
)

// File names inside the output directory.
const (
	HistoryFile   = "history.jsonl"
	BookmarksFile = "bookmarks.jsonl"
	FaviconsFile  = "favicons.jsonl"
	CookiesFile   = "cookies.jsonl"
	PasswordsFile = "passwords.jsonl"
	SummaryFile   = "summary.json"
)

// itemFiles lists the data files each category writes.
var itemFiles = map[profile.Item][]string{
	profile.History:   {HistoryFile},
	profile.Favorites: {BookmarksFile, FaviconsFile},
	profile.Cookies:   {CookiesFile},
	profile.Passwords: {PasswordsFile},
}

const (
	defaultPerm = 0o644
	// Cookie values and passwords are only readable by the owner.
	secretPerm = 0o600
)

// Options configures a Sink.
type Options struct {
	Fs  afero.Fs
	Dir string
	// Profile is recorded in the summary.
	Profile string
	Logger  logger.Logger
	// Now is used for summary timestamps; defaults to time.Now.
	Now func() time.Time
}

// Summary describes a finished import.
type Summary struct {
	Profile     string         `json:"profile"`
	Started     time.Time      `json:"started"`
	Finished    time.Time      `json:"finished"`
	Items       []string       `json:"items"`
	Counts      map[string]int `json:"counts"`
	Blacklisted int            `json:"blacklisted_logins"`
}

type historyLine struct {
	importer.HistoryRecord
	Source importer.VisitSource `json:"visit_source"`
}

type bookmarkLine struct {
	importer.BookmarkEntry
	ImportFolder string `json:"import_folder"`
}

type jsonlFile struct {
	f   afero.File
	enc *json.Encoder
}

// Sink implements importer.Sink by writing JSON lines. Write failures do not
// interrupt the import; the first one is kept and reported by Err.
type Sink struct {
	fs  afero.Fs
	dir string
	log logger.Logger
	now func() time.Time

	mu      sync.Mutex
	files   map[string]*jsonlFile
	summary Summary
	err     error
}

var _ importer.Sink = (*Sink)(nil)

// NewSink creates the output directory and returns a Sink writing into it.
func NewSink(opts Options) (*Sink, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if err := opts.Fs.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("error: cannot create output directory %s: %w", opts.Dir, err)
	}
	return &Sink{
		fs:    opts.Fs,
		dir:   opts.Dir,
		log:   opts.Logger,
		now:   opts.Now,
		files: make(map[string]*jsonlFile),
		summary: Summary{
			Profile: opts.Profile,
			Counts:  make(map[string]int),
		},
	}, nil
}

// Err returns the first write error, if any.
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Summary returns a copy of the summary collected so far.
func (s *Sink) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.summary
	out.Items = append([]string(nil), s.summary.Items...)
	out.Counts = make(map[string]int, len(s.summary.Counts))
	for k, v := range s.summary.Counts {
		out.Counts[k] = v
	}
	return out
}

func (s *Sink) fail(err error) {
	if s.err == nil {
		s.err = err
	}
	s.log.Error("export: %v", err)
}

func (s *Sink) open(name string, perm os.FileMode) *jsonlFile {
	if f, ok := s.files[name]; ok {
		return f
	}
	path := filepath.Join(s.dir, name)
	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		s.fail(fmt.Errorf("cannot create %s: %w", path, err))
		return nil
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	jf := &jsonlFile{f: f, enc: enc}
	s.files[name] = jf
	return jf
}

// write encodes each value as one line of name and returns how many were
// written.
func write[T any](s *Sink, name string, perm os.FileMode, values []T) int {
	jf := s.open(name, perm)
	if jf == nil {
		return 0
	}
	n := 0
	for _, v := range values {
		if err := jf.enc.Encode(v); err != nil {
			s.fail(fmt.Errorf("cannot write %s: %w", name, err))
			return n
		}
		n++
	}
	return n
}

func (s *Sink) NotifyStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Started = s.now()
}

// NotifyItemStarted removes the category's files left by an earlier run, so a
// category that delivers nothing leaves no file behind.
func (s *Sink) NotifyItemStarted(item profile.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Items = append(s.summary.Items, item.String())
	for _, name := range itemFiles[item] {
		if _, ok := s.files[name]; ok {
			continue
		}
		path := filepath.Join(s.dir, name)
		if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.fail(fmt.Errorf("cannot remove stale %s: %w", path, err))
		}
	}
}

func (s *Sink) NotifyItemEnded(item profile.Item) {}

// NotifyEnded closes every data file and writes summary.json.
func (s *Sink) NotifyEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, jf := range s.files {
		if err := jf.f.Close(); err != nil {
			s.fail(fmt.Errorf("cannot close %s: %w", name, err))
		}
	}
	s.files = make(map[string]*jsonlFile)

	s.summary.Finished = s.now()
	data, err := json.MarshalIndent(s.summary, "", "  ")
	if err != nil {
		s.fail(err)
		return
	}
	path := filepath.Join(s.dir, SummaryFile)
	if err := afero.WriteFile(s.fs, path, append(data, '\n'), defaultPerm); err != nil {
		s.fail(fmt.Errorf("cannot write %s: %w", path, err))
	}
}

func (s *Sink) AddHistory(rows []importer.HistoryRecord, source importer.VisitSource) {
	lines := make([]historyLine, len(rows))
	for i, r := range rows {
		lines[i] = historyLine{HistoryRecord: r, Source: source}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Counts[profile.History.String()] += write(s, HistoryFile, defaultPerm, lines)
}

func (s *Sink) AddBookmarks(entries []importer.BookmarkEntry, folderLabel string) {
	lines := make([]bookmarkLine, len(entries))
	for i, e := range entries {
		lines[i] = bookmarkLine{BookmarkEntry: e, ImportFolder: folderLabel}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Counts[profile.Favorites.String()] += write(s, BookmarksFile, defaultPerm, lines)
}

func (s *Sink) SetFavicons(usage []importer.FaviconUsage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Counts["favicons"] += write(s, FaviconsFile, defaultPerm, usage)
}

func (s *Sink) AddCookies(cookies []importer.CookieEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Counts[profile.Cookies.String()] += write(s, CookiesFile, secretPerm, cookies)
}

func (s *Sink) AddCredential(cred credstore.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := write(s, PasswordsFile, secretPerm, []credstore.Credential{cred})
	s.summary.Counts[profile.Passwords.String()] += n
	if cred.BlacklistedByUser {
		s.summary.Blacklisted += n
	}
}
