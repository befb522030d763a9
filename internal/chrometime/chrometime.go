// Package chrometime converts Chrome's on-disk timestamps to and from Unix time.
//
// Chrome stores times as microseconds since 1601-01-01 00:00:00 UTC (the
// Windows NT epoch). Conversion goes through 100-nanosecond ticks so the
// arithmetic matches the importer it replaces bit for bit.
package chrometime

import "time"

// epochDeltaTicks is the number of 100ns ticks between 1601-01-01 and 1970-01-01.
const epochDeltaTicks int64 = 11_644_473_600 * 10_000_000

// ToUnixSeconds rebases a Chrome timestamp to whole seconds since the Unix epoch.
// Integer division truncates toward zero, sub-second precision is dropped.
func ToUnixSeconds(chromeUSec int64) int64 {
	return ((chromeUSec*10 - epochDeltaTicks) / 10_000) / 1_000
}

// FromUnixSeconds is the inverse of ToUnixSeconds for whole seconds.
func FromUnixSeconds(unixSec int64) int64 {
	return (unixSec*10_000_000 + epochDeltaTicks) / 10
}

// ToTime returns the Chrome timestamp as a UTC time.Time.
func ToTime(chromeUSec int64) time.Time {
	return time.Unix(ToUnixSeconds(chromeUSec), 0).UTC()
}

// FromTime encodes t as a Chrome timestamp, truncated to the second.
func FromTime(t time.Time) int64 {
	return FromUnixSeconds(t.Unix())
}
