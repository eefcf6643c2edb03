package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/b0bbywan/go-odio-relay/logger"
)

const (
	AppName    = "odio-relay"
	AppVersion = "0.1.0"
	envPrefix  = "ODIO_RELAY"
)

// Player backends.
const (
	PlayerCmus  = "cmus"
	PlayerMPRIS = "mpris"
	PlayerMPD   = "mpd"
)

// Volume sources.
const (
	VolumeFromPlayer = "player"
	VolumeFromPulse  = "pulseaudio"
)

// Messenger flavours.
const (
	MessengerPidgin = "pidgin"
	MessengerGaim   = "gaim"
)

type Config struct {
	DBus         *DBusConfig
	Player       *PlayerConfig
	Volume       *VolumeConfig
	Messenger    *MessengerConfig
	Watch        *WatchConfig
	Notify       *NotifyConfig
	Lastfm       *LastfmConfig
	ListenBrainz *ListenBrainzConfig
	Zeroconf     *ZeroConfig
	LogLevel     logger.Level
	// per-component overrides, keyed by the [component] log prefix
	LogLevels    map[string]logger.Level

	// file the configuration was read from, empty when none was found
	File string
}

type DBusConfig struct {
	Timeout time.Duration
}

type PlayerConfig struct {
	Backend string
	Cmus    *CmusConfig
	MPRIS   *MPRISConfig
	MPD     *MPDConfig
}

type CmusConfig struct {
	Service   string
	Path      string
	Interface string
}

type MPRISConfig struct {
	// BusName of the player to follow; empty picks the first one on the bus
	BusName string
}

type MPDConfig struct {
	Address  string
	Password string
}

type VolumeConfig struct {
	Source       string
	PulseAddress string
}

type MessengerConfig struct {
	Kind string
}

type WatchConfig struct {
	Targets []string
	Volume  bool
	Initial bool
}

type NotifyConfig struct {
	AppName string
	Icon    string
	Timeout time.Duration
}

type LastfmConfig struct {
	APIKey     string
	APISecret  string
	SessionKey string
}

type ListenBrainzConfig struct {
	Token string
}

type ZeroConfig struct {
	InstanceName string
	ServiceType  string
	Domain       string
	Port         int
}

// Flags registers the global command-line flags on fs.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("player", "", "player backend (cmus, mpris, mpd)")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LogLevel", "WARN")
	v.SetDefault("dbus.timeout", "5s")

	v.SetDefault("player.backend", PlayerCmus)
	v.SetDefault("player.cmus.service", "net.sourceforge.cmus")
	v.SetDefault("player.cmus.path", "/net/sourceforge/cmus")
	v.SetDefault("player.cmus.interface", "net.sourceforge.cmus")
	v.SetDefault("player.mpris.busname", "")
	v.SetDefault("player.mpd.address", "localhost:6600")
	v.SetDefault("player.mpd.password", "")

	v.SetDefault("volume.source", VolumeFromPlayer)
	v.SetDefault("volume.pulse.address", "")

	v.SetDefault("messenger.kind", MessengerPidgin)

	v.SetDefault("watch.targets", []string{"console"})
	v.SetDefault("watch.volume", true)
	v.SetDefault("watch.initial", false)

	v.SetDefault("notify.appname", AppName)
	v.SetDefault("notify.icon", "audio-x-generic")
	v.SetDefault("notify.timeout", "0s")

	v.SetDefault("zeroconf.instance", AppName)
	v.SetDefault("zeroconf.port", 6601)
}

// ConfigPaths returns the directories searched for config.yaml, in search
// order. The first file found wins.
func ConfigPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, AppName),
		filepath.Join("/etc", AppName),
	}
}

// New loads the configuration from the config file, ODIO_RELAY_* environment
// variables and the flags in fs (which may be nil).
func New(fs *pflag.FlagSet) (*Config, error) {
	return load(viper.New(), fs)
}

// ApplyLogLevels installs the global and per-component log levels of cfg.
func ApplyLogLevels(cfg *Config) {
	logger.SetLevel(cfg.LogLevel)
	logger.SetPackageLevels(cfg.LogLevels)
}

// Watch re-applies the log levels whenever the config file changes. fs must
// be the flag set cfg was loaded from.
func Watch(cfg *Config, fs *pflag.FlagSet) {
	if cfg == nil || cfg.File == "" {
		return
	}
	v := viper.New()
	v.SetConfigFile(cfg.File)
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fresh, err := reload(fs)
		if err != nil {
			logger.Warn("[config] failed to reload %s: %v", e.Name, err)
			return
		}
		logger.Info("[config] %s changed, log level now %s", e.Name, fresh.LogLevel)
	})
	v.WatchConfig()
}

// reload reads every source again, so flags and environment variables keep
// precedence over the file, and applies the log levels.
func reload(fs *pflag.FlagSet) (*Config, error) {
	cfg, err := New(fs)
	if err != nil {
		return nil, err
	}
	ApplyLogLevels(cfg)
	return cfg, nil
}

func load(v *viper.Viper, fs *pflag.FlagSet) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var explicit string
	if fs != nil {
		explicit, _ = fs.GetString("config")
		bindFlag(v, fs, "LogLevel", "log-level")
		bindFlag(v, fs, "player.backend", "player")
		bindFlag(v, fs, "messenger.kind", "messenger")
		bindFlag(v, fs, "watch.targets", "targets")
		bindFlag(v, fs, "watch.volume", "volume")
		bindFlag(v, fs, "watch.initial", "initial")
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range ConfigPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	timeout := v.GetDuration("dbus.timeout")
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	backend := strings.ToLower(v.GetString("player.backend"))
	switch backend {
	case PlayerCmus, PlayerMPRIS, PlayerMPD:
	default:
		return nil, fmt.Errorf("invalid player backend: %q", backend)
	}

	volumeSource := strings.ToLower(v.GetString("volume.source"))
	switch volumeSource {
	case VolumeFromPlayer, VolumeFromPulse:
	default:
		return nil, fmt.Errorf("invalid volume source: %q", volumeSource)
	}

	kind := strings.ToLower(v.GetString("messenger.kind"))
	switch kind {
	case MessengerPidgin, MessengerGaim:
	default:
		return nil, fmt.Errorf("invalid messenger: %q", kind)
	}

	port := v.GetInt("zeroconf.port")
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid zeroconf port: %d", port)
	}

	cfg := Config{
		DBus: &DBusConfig{Timeout: timeout},
		Player: &PlayerConfig{
			Backend: backend,
			Cmus: &CmusConfig{
				Service:   v.GetString("player.cmus.service"),
				Path:      v.GetString("player.cmus.path"),
				Interface: v.GetString("player.cmus.interface"),
			},
			MPRIS: &MPRISConfig{BusName: v.GetString("player.mpris.busname")},
			MPD: &MPDConfig{
				Address:  v.GetString("player.mpd.address"),
				Password: v.GetString("player.mpd.password"),
			},
		},
		Volume: &VolumeConfig{
			Source:       volumeSource,
			PulseAddress: v.GetString("volume.pulse.address"),
		},
		Messenger: &MessengerConfig{Kind: kind},
		Watch: &WatchConfig{
			Targets: normalizeList(v.GetStringSlice("watch.targets")),
			Volume:  v.GetBool("watch.volume"),
			Initial: v.GetBool("watch.initial"),
		},
		Notify: &NotifyConfig{
			AppName: v.GetString("notify.appname"),
			Icon:    v.GetString("notify.icon"),
			Timeout: v.GetDuration("notify.timeout"),
		},
		Lastfm: &LastfmConfig{
			APIKey:     v.GetString("lastfm.apikey"),
			APISecret:  v.GetString("lastfm.apisecret"),
			SessionKey: v.GetString("lastfm.sessionkey"),
		},
		ListenBrainz: &ListenBrainzConfig{Token: v.GetString("listenbrainz.token")},
		Zeroconf: &ZeroConfig{
			InstanceName: v.GetString("zeroconf.instance"),
			ServiceType:  "_" + AppName + "._tcp",
			Domain:       "local.",
			Port:         port,
		},
		LogLevel:  logger.ParseLevel(v.GetString("LogLevel")),
		LogLevels: parseLogLevels(v.GetStringMapString("LogLevels")),
		File:      v.ConfigFileUsed(),
	}

	return &cfg, nil
}

func parseLogLevels(in map[string]string) map[string]logger.Level {
	out := make(map[string]logger.Level, len(in))
	for component, name := range in {
		out[strings.ToLower(component)] = logger.ParseLevel(name)
	}
	return out
}

// bindFlag binds key to the named flag if fs defines it.
func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, name string) {
	if f := fs.Lookup(name); f != nil {
		if err := v.BindPFlag(key, f); err != nil {
			logger.Warn("[config] cannot bind flag --%s: %v", name, err)
		}
	}
}

// normalizeList lower-cases, trims and splits comma-separated entries, so
// that both YAML lists and "a,b" environment values work.
func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}
