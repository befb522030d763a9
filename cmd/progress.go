package cmd

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/chromeimport/cmd/common"
	"github.com/warpdl/chromeimport/internal/credstore"
	"github.com/warpdl/chromeimport/internal/importer"
	"github.com/warpdl/chromeimport/internal/profile"
)

// barNameWidth fits the longest category name.
const barNameWidth = len("passwords") + 1

// progressSink forwards everything to the wrapped Sink and draws one bar per
// category, counting the records handed over.
type progressSink struct {
	importer.Sink
	p   *mpb.Progress
	bar *mpb.Bar
}

func newProgressSink(next importer.Sink, out io.Writer) *progressSink {
	return &progressSink{
		Sink: next,
		p:    mpb.New(mpb.WithOutput(out), mpb.WithWidth(16)),
	}
}

func (s *progressSink) incr(n int) {
	if s.bar != nil && n > 0 {
		s.bar.IncrBy(n)
	}
}

func (s *progressSink) NotifyItemStarted(item profile.Item) {
	s.Sink.NotifyItemStarted(item)
	s.bar = common.InitItemBar(s.p, item.String(), barNameWidth)
}

func (s *progressSink) NotifyItemEnded(item profile.Item) {
	s.Sink.NotifyItemEnded(item)
	if s.bar != nil {
		s.bar.SetTotal(-1, true)
		s.bar = nil
	}
}

func (s *progressSink) NotifyEnded() {
	s.Sink.NotifyEnded()
	if s.bar != nil {
		s.bar.Abort(false)
		s.bar = nil
	}
	s.p.Wait()
}

func (s *progressSink) AddHistory(rows []importer.HistoryRecord, source importer.VisitSource) {
	s.Sink.AddHistory(rows, source)
	s.incr(len(rows))
}

func (s *progressSink) AddBookmarks(entries []importer.BookmarkEntry, folderLabel string) {
	s.Sink.AddBookmarks(entries, folderLabel)
	s.incr(len(entries))
}

func (s *progressSink) SetFavicons(usage []importer.FaviconUsage) {
	s.Sink.SetFavicons(usage)
	s.incr(len(usage))
}

func (s *progressSink) AddCookies(cookies []importer.CookieEntry) {
	s.Sink.AddCookies(cookies)
	s.incr(len(cookies))
}

func (s *progressSink) AddCredential(cred credstore.Credential) {
	s.Sink.AddCredential(cred)
	s.incr(1)
}
