// Package importer reads a Chrome profile and hands normalized records to a
// Sink. A Session walks the requested categories in a fixed order (history,
// favorites, cookies, passwords), opening each category's store, decoding it
// and releasing it before moving on.
//
// Failures never cross a category boundary. A missing store, a store that
// cannot be opened and a store with zero rows all look the same to the sink:
// the category starts, delivers nothing and ends. Cancellation is driven by the
// caller's context and is polled between categories and between rows.
package importer
