package credstore

import "strings"

// Desktop is a Linux desktop environment.
type Desktop int

const (
	DesktopOther Desktop = iota
	DesktopCinnamon
	DesktopDeepin
	DesktopGnome
	DesktopKDE3
	DesktopKDE4
	DesktopKDE5
	DesktopPantheon
	DesktopUKUI
	DesktopUnity
	DesktopXFCE
)

var desktopNames = map[Desktop]string{
	DesktopOther:    "other",
	DesktopCinnamon: "cinnamon",
	DesktopDeepin:   "deepin",
	DesktopGnome:    "gnome",
	DesktopKDE3:     "kde3",
	DesktopKDE4:     "kde4",
	DesktopKDE5:     "kde5",
	DesktopPantheon: "pantheon",
	DesktopUKUI:     "ukui",
	DesktopUnity:    "unity",
	DesktopXFCE:     "xfce",
}

func (d Desktop) String() string {
	if name, ok := desktopNames[d]; ok {
		return name
	}
	return "unknown"
}

// DetectDesktop guesses the desktop environment from the session's
// environment variables: XDG_CURRENT_DESKTOP first, then DESKTOP_SESSION,
// then the legacy GNOME and KDE markers.
func DetectDesktop(getenv func(string) string) Desktop {
	kdeVersion := getenv("KDE_SESSION_VERSION")
	session := getenv("DESKTOP_SESSION")

	if xdg := getenv("XDG_CURRENT_DESKTOP"); xdg != "" {
		for _, value := range strings.Split(xdg, ":") {
			switch strings.TrimSpace(value) {
			case "Unity":
				if strings.Contains(session, "gnome-fallback") {
					return DesktopGnome
				}
				return DesktopUnity
			case "Deepin":
				return DesktopDeepin
			case "GNOME":
				return DesktopGnome
			case "X-Cinnamon":
				return DesktopCinnamon
			case "KDE":
				if kdeVersion == "5" || kdeVersion == "6" {
					return DesktopKDE5
				}
				return DesktopKDE4
			case "Pantheon":
				return DesktopPantheon
			case "XFCE":
				return DesktopXFCE
			case "UKUI":
				return DesktopUKUI
			}
		}
	}

	if session != "" {
		switch session {
		case "deepin":
			return DesktopDeepin
		case "gnome", "mate":
			return DesktopGnome
		case "kde4", "kde-plasma":
			return DesktopKDE4
		case "kde":
			if kdeVersion != "" {
				return DesktopKDE4
			}
			return DesktopKDE3
		case "ukui":
			return DesktopUKUI
		}
		if strings.Contains(session, "xfce") || session == "xubuntu" {
			return DesktopXFCE
		}
	}

	if getenv("GNOME_DESKTOP_SESSION_ID") != "" {
		return DesktopGnome
	}
	if getenv("KDE_FULL_SESSION") != "" {
		if kdeVersion != "" {
			return DesktopKDE4
		}
		return DesktopKDE3
	}
	return DesktopOther
}
