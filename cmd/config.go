package cmd

const DESCRIPTION = `
chromeimport reads a Chrome-family browser profile and exports its
browsing history, bookmarks, favicons, cookies and saved passwords
as JSON lines. The browser may stay open: every database is copied
before it is read.
`

const (
	ImportDescription = `The import command reads the selected categories from a
profile directory and writes one .jsonl file per kind of
record into the output directory, plus a summary.json.

When no profile is given, the Default profile of the first
installed browser is used (Chrome, Chromium, Edge, Brave).

Passwords come from the store Chrome itself would use on this
desktop. Use --password-store to pick one explicitly.

Example:
        chromeimport import -s ~/.config/google-chrome/Default -o out
                                        OR
        chromeimport -i history,favorites ~/.config/chromium/Default

`
	ProfilesDescription = `The profiles command lists the Chrome-family browsers
installed for the current user together with their profile
directories. Pass a user-data directory to list only its profiles.

Example:
        chromeimport profiles
        chromeimport profiles ~/.config/google-chrome

`
)
