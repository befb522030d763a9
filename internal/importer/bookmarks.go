package importer

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"github.com/warpdl/chromeimport/internal/chrometime"
	"github.com/warpdl/chromeimport/pkg/logger"
)

// bookmarkRoots are walked in this order. Only the bookmark bar root itself
// is flagged as being in the toolbar.
var bookmarkRoots = []struct {
	key       string
	inToolbar bool
}{
	{"bookmark_bar", true},
	{"other", false},
}

// WalkBookmarks flattens a Chrome Bookmarks file into pre-order entries.
//
// Each root is emitted as a folder with an empty path and its descendants
// carry the root's name as the first path element. Malformed nodes are
// skipped one at a time; the walk itself never fails once the document
// parses. A cancelled ctx stops the walk and returns what was
// collected.
func WalkBookmarks(ctx context.Context, data []byte, log logger.Logger) ([]BookmarkEntry, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("bookmarks file is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errors.New("bookmarks file is not a JSON object")
	}

	w := &bookmarkWalker{ctx: ctx, log: log}
	roots := doc.Get("roots")
	for _, root := range bookmarkRoots {
		if w.cancelled() {
			break
		}
		node := roots.Get(root.key)
		if !node.IsObject() {
			continue
		}
		w.folder(node, []string{}, root.inToolbar)
	}
	return w.entries, nil
}

type bookmarkWalker struct {
	ctx     context.Context
	log     logger.Logger
	entries []BookmarkEntry
}

func (w *bookmarkWalker) cancelled() bool {
	return w.ctx.Err() != nil
}

// folder emits the folder itself at path and then its children one level deeper.
// Descendants are never in the toolbar. A folder with a bad date_added is not
// emitted but its children still are.
func (w *bookmarkWalker) folder(node gjson.Result, path []string, inToolbar bool) {
	name := node.Get("name").String()
	if created, ok := w.creationTime(node, name); ok {
		w.entries = append(w.entries, BookmarkEntry{
			Title:        name,
			Path:         path,
			IsFolder:     true,
			InToolbar:    inToolbar,
			CreationTime: created,
		})
	}

	children := node.Get("children")
	if !children.IsArray() {
		return
	}
	childPath := make([]string, len(path)+1)
	copy(childPath, path)
	childPath[len(path)] = name

	children.ForEach(func(_, child gjson.Result) bool {
		if w.cancelled() {
			return false
		}
		w.node(child, childPath)
		return true
	})
}

func (w *bookmarkWalker) node(node gjson.Result, path []string) {
	if !node.IsObject() {
		w.log.Warning("bookmarks: skipping non-object node under %v", path)
		return
	}
	switch typ := node.Get("type").String(); typ {
	case "folder":
		w.folder(node, path, false)
	case "url":
		w.url(node, path)
	case "":
		w.log.Warning("bookmarks: skipping node %q without type", node.Get("name").String())
	default:
		// separators and future node types carry nothing to import
	}
}

func (w *bookmarkWalker) url(node gjson.Result, path []string) {
	name := node.Get("name").String()
	created, ok := w.creationTime(node, name)
	if !ok {
		return
	}
	w.entries = append(w.entries, BookmarkEntry{
		URL:          PageURL(node.Get("url").String()),
		Title:        name,
		Path:         path,
		IsFolder:     false,
		InToolbar:    false,
		CreationTime: created,
	})
}

// creationTime parses date_added, a Chrome timestamp written as a decimal
// string. A node without date_added gets the zero time.
func (w *bookmarkWalker) creationTime(node gjson.Result, name string) (time.Time, bool) {
	raw := node.Get("date_added")
	if !raw.Exists() || raw.String() == "" {
		return time.Time{}, true
	}
	v, err := strconv.ParseInt(raw.String(), 10, 64)
	if err != nil {
		w.log.Warning("bookmarks: skipping %q: bad date_added %q", name, raw.String())
		return time.Time{}, false
	}
	return chrometime.ToTime(v), true
}
