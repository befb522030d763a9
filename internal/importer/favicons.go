package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	"github.com/warpdl/chromeimport/pkg/logger"
)

// iconPages maps icon ids to the set of pages using them, remembering the
// order in which icon ids were first seen.
type iconPages struct {
	order []int64
	pages map[int64]*pageSet
}

type pageSet struct {
	urls []string
	seen map[string]struct{}
}

func newIconPages() *iconPages {
	return &iconPages{pages: make(map[int64]*pageSet)}
}

func (m *iconPages) add(iconID int64, page string) {
	set, ok := m.pages[iconID]
	if !ok {
		set = &pageSet{seen: make(map[string]struct{})}
		m.pages[iconID] = set
		m.order = append(m.order, iconID)
	}
	if _, dup := set.seen[page]; dup {
		return
	}
	set.seen[page] = struct{}{}
	set.urls = append(set.urls, page)
}

// ResolveFavicons joins icon_mapping with favicons. Remote icon URLs are kept
// as-is; data: icons are decoded and re-encoded with codec. An icon that
// cannot be resolved is skipped. Usages are returned in the order their icon
// first appeared in icon_mapping.
func ResolveFavicons(ctx context.Context, db *sql.DB, codec FaviconCodec, log logger.Logger) ([]FaviconUsage, error) {
	mapping, err := readIconMapping(ctx, db, log)
	if err != nil {
		return nil, err
	}
	if len(mapping.order) == 0 || ctx.Err() != nil {
		return nil, nil
	}

	stmt, err := db.Prepare(`SELECT url FROM favicons WHERE id = ?`)
	if err != nil {
		return nil, fmt.Errorf("prepare favicons lookup: %w", err)
	}
	defer stmt.Close()

	var usages []FaviconUsage
	for _, id := range mapping.order {
		if ctx.Err() != nil {
			break
		}
		var stored string
		if err := stmt.QueryRow(id).Scan(&stored); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				log.Warning("favicons: skipping icon %d: %v", id, err)
			}
			continue
		}
		usage, err := resolveIcon(stored, codec)
		if err != nil {
			log.Warning("favicons: skipping icon %d: %v", id, err)
			continue
		}
		usage.PageURLs = mapping.pages[id].urls
		usages = append(usages, usage)
	}
	return usages, nil
}

func readIconMapping(ctx context.Context, db *sql.DB, log logger.Logger) (*iconPages, error) {
	rows, err := db.Query(`SELECT icon_id, page_url FROM icon_mapping`)
	if err != nil {
		return nil, fmt.Errorf("query icon_mapping: %w", err)
	}
	defer rows.Close()

	mapping := newIconPages()
	for rows.Next() && ctx.Err() == nil {
		var (
			iconID int64
			page   string
		)
		if err := rows.Scan(&iconID, &page); err != nil {
			log.Warning("favicons: skipping mapping row: %v", err)
			continue
		}
		mapping.add(iconID, PageURL(page))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate icon_mapping: %w", err)
	}
	return mapping, nil
}

// resolveIcon turns a favicons.url value into a usage without page URLs.
func resolveIcon(stored string, codec FaviconCodec) (FaviconUsage, error) {
	u, err := url.Parse(stored)
	if err != nil {
		return FaviconUsage{}, fmt.Errorf("invalid icon URL: %w", err)
	}
	if u.Scheme == "data" {
		if codec == nil {
			return FaviconUsage{}, errors.New("no favicon codec for data URL")
		}
		_, data, err := DecodeDataURL(stored)
		if err != nil {
			return FaviconUsage{}, err
		}
		if len(data) == 0 {
			return FaviconUsage{}, errors.New("empty data URL")
		}
		png, err := codec.Reencode(data)
		if err != nil {
			return FaviconUsage{}, fmt.Errorf("reencode: %w", err)
		}
		return FaviconUsage{PNGData: png}, nil
	}
	if u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return FaviconUsage{}, fmt.Errorf("invalid icon URL %q", stored)
	}
	canon, err := CanonicalURL(stored)
	if err != nil {
		return FaviconUsage{}, err
	}
	return FaviconUsage{IconURL: canon}, nil
}
