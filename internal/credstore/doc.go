// Package credstore reads saved Chrome passwords from whichever backend the
// source profile used.
//
// On Windows and macOS that is the profile's own Login Data database. On
// Linux-class systems Chrome kept passwords in the desktop's secret service,
// picked from the desktop environment: KWallet (kwalletd or kwalletd5) on KDE,
// the freedesktop Secret Service (libsecret) on GNOME-like desktops, nothing
// otherwise. The Resolver makes that choice at runtime and the importer only
// ever sees the Backend interface.
package credstore
