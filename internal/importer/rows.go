package importer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/warpdl/chromeimport/internal/chrometime"
	"github.com/warpdl/chromeimport/pkg/logger"
)

// Scanner is the part of *sql.Row and *sql.Rows the decoders need.
type Scanner interface {
	Scan(dest ...any) error
}

const historyQuery = `SELECT url, title, last_visit_time, typed_count, visit_count
        FROM urls WHERE hidden = 0`

// DecodeHistoryRow decodes one row of historyQuery.
func DecodeHistoryRow(row Scanner) (HistoryRecord, error) {
	var (
		rawURL            string
		title             sql.NullString
		lastVisit         int64
		typed, visitCount int64
	)
	if err := row.Scan(&rawURL, &title, &lastVisit, &typed, &visitCount); err != nil {
		return HistoryRecord{}, fmt.Errorf("scan history row: %w", err)
	}
	return HistoryRecord{
		URL:        PageURL(rawURL),
		Title:      title.String,
		LastVisit:  chrometime.ToTime(lastVisit),
		TypedCount: int(typed),
		VisitCount: int(visitCount),
		Hidden:     false,
	}, nil
}

// ReadHistory reads the visible rows of a History database. When ctx is
// cancelled mid-query the rows read so far are returned without error.
func ReadHistory(ctx context.Context, db *sql.DB, log logger.Logger) ([]HistoryRecord, error) {
	rows, err := db.Query(historyQuery)
	if err != nil {
		return nil, fmt.Errorf("query urls: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() && ctx.Err() == nil {
		rec, err := DecodeHistoryRow(rows)
		if err != nil {
			log.Warning("history: skipping row: %v", err)
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return records, fmt.Errorf("iterate urls: %w", err)
	}
	return records, nil
}

// DecodeCookieRow decodes one row of a cookie query built by cookieQuery.
func DecodeCookieRow(row Scanner) (CookieEntry, error) {
	var (
		domain, name, value, path string
		expires                   int64
		secure, httpOnly          int64
	)
	if err := row.Scan(&domain, &name, &value, &path, &expires, &secure, &httpOnly); err != nil {
		return CookieEntry{}, fmt.Errorf("scan cookie row: %w", err)
	}
	return CookieEntry{
		Domain:   domain,
		Name:     name,
		Value:    value,
		Host:     "*" + domain,
		Path:     path,
		Expiry:   chrometime.ToTime(expires),
		Secure:   secure != 0,
		HttpOnly: httpOnly != 0,
	}, nil
}

// cookieQuery selects plaintext cookies only. Older profiles name the flag
// columns secure/httponly, newer ones is_secure/is_httponly.
func cookieQuery(db *sql.DB) (string, error) {
	rows, err := db.Query(`PRAGMA table_info(cookies)`)
	if err != nil {
		return "", fmt.Errorf("inspect cookies table: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return "", fmt.Errorf("inspect cookies table: %w", err)
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("inspect cookies table: %w", err)
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("no cookies table")
	}

	pick := func(names ...string) (string, error) {
		for _, n := range names {
			if cols[n] {
				return n, nil
			}
		}
		return "", fmt.Errorf("cookies table has none of %v", names)
	}
	secure, err := pick("secure", "is_secure")
	if err != nil {
		return "", err
	}
	httpOnly, err := pick("httponly", "is_httponly")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`SELECT host_key, name, value, path, expires_utc, %s, %s
        FROM cookies WHERE length(encrypted_value) = 0`, secure, httpOnly), nil
}

// ReadCookies reads every cookie stored without encryption. Encrypted cookies
// are skipped. When ctx is cancelled mid-query the cookies read so far are
// returned without error.
func ReadCookies(ctx context.Context, db *sql.DB, log logger.Logger) ([]CookieEntry, error) {
	query, err := cookieQuery(db)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query cookies: %w", err)
	}
	defer rows.Close()

	var cookies []CookieEntry
	for rows.Next() && ctx.Err() == nil {
		c, err := DecodeCookieRow(rows)
		if err != nil {
			log.Warning("cookies: skipping row: %v", err)
			continue
		}
		cookies = append(cookies, c)
	}
	if err := rows.Err(); err != nil {
		return cookies, fmt.Errorf("iterate cookies: %w", err)
	}
	return cookies, nil
}
