// Package profile locates and opens a Chrome-family user-data profile for
// import. It knows the on-disk names of each data category, copies SQLite
// stores aside before reading them so a running browser never blocks the
// import, and discovers installed Chrome, Chromium, Edge and Brave profiles.
//
// Nothing in this package writes to the source profile.
package profile
