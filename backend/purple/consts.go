package purple

// Flavour describes where a libpurple client exposes its D-Bus API.
type Flavour struct {
	Name      string
	Service   string
	Path      string
	Interface string
	// Prefix of every remote method, "Purple" or "Gaim"
	Prefix string
}

var (
	Pidgin = Flavour{
		Name:      "pidgin",
		Service:   "im.pidgin.purple.PurpleService",
		Path:      "/im/pidgin/purple/PurpleObject",
		Interface: "im.pidgin.purple.PurpleInterface",
		Prefix:    "Purple",
	}

	// Gaim is the pre-2.0 name of Pidgin.
	Gaim = Flavour{
		Name:      "gaim",
		Service:   "net.sf.gaim.GaimService",
		Path:      "/net/sf/gaim/GaimObject",
		Interface: "net.sf.gaim.GaimInterface",
		Prefix:    "Gaim",
	}
)

const (
	SAVEDSTATUS_GET_CURRENT = "SavedstatusGetCurrent"
	SAVEDSTATUS_GET_TYPE    = "SavedstatusGetType"
	SAVEDSTATUS_NEW         = "SavedstatusNew"
	SAVEDSTATUS_SET_MESSAGE = "SavedstatusSetMessage"
	SAVEDSTATUS_ACTIVATE    = "SavedstatusActivate"
)
