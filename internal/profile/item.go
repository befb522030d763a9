package profile

import (
	"fmt"
	"strings"
)

// Item is a bitset over the importable data categories.
type Item uint16

const (
	// None selects nothing.
	None Item = 0
	// History is browsing history (the History database).
	History Item = 1 << 0
	// Favorites is bookmarks plus their favicons.
	Favorites Item = 1 << 1
	// Cookies is the plaintext part of the cookie jar.
	Cookies Item = 1 << 2
	// Passwords is saved credentials, autofillable and blacklisted.
	Passwords Item = 1 << 3

	// All selects every category.
	All = History | Favorites | Cookies | Passwords
)

// Items lists the single categories in import order.
var Items = []Item{History, Favorites, Cookies, Passwords}

var itemNames = map[Item]string{
	History:   "history",
	Favorites: "favorites",
	Cookies:   "cookies",
	Passwords: "passwords",
}

// String returns the category name, or a comma separated list for masks.
func (i Item) String() string {
	if i == None {
		return "none"
	}
	if name, ok := itemNames[i]; ok {
		return name
	}
	var parts []string
	for _, it := range Items {
		if i&it != 0 {
			parts = append(parts, itemNames[it])
		}
	}
	if rest := i &^ All; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint16(rest)))
	}
	return strings.Join(parts, ",")
}

// Has reports whether every bit of other is set in i.
func (i Item) Has(other Item) bool {
	return other != None && i&other == other
}

// ParseItems parses a comma separated list of category names.
// "all" selects every category and "bookmarks" is accepted for favorites.
func ParseItems(s string) (Item, error) {
	var mask Item
	for _, field := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(field))
		switch name {
		case "":
			continue
		case "all":
			mask |= All
		case "history":
			mask |= History
		case "favorites", "bookmarks":
			mask |= Favorites
		case "cookies":
			mask |= Cookies
		case "passwords":
			mask |= Passwords
		default:
			return None, fmt.Errorf("unknown import item %q (want history, favorites, cookies, passwords or all)", field)
		}
	}
	if mask == None {
		return None, fmt.Errorf("no import items selected")
	}
	return mask, nil
}
