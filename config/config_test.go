package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/b0bbywan/go-odio-relay/logger"
)

// flagSet returns the global flags plus the watch flags, pointing --config
// at a file holding content so that no real config file is read.
func flagSet(t *testing.T, content string, args ...string) *pflag.FlagSet {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	fs.String("messenger", "", "")
	fs.StringSlice("targets", nil, "")
	fs.Bool("volume", true, "")
	fs.Bool("initial", false, "")
	if err := fs.Parse(append([]string{"--config", path}, args...)); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New(), flagSet(t, ""))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}

	if cfg.LogLevel != logger.WARN {
		t.Errorf("LogLevel = %s, want WARN", cfg.LogLevel)
	}
	if cfg.DBus.Timeout != 5*time.Second {
		t.Errorf("DBus.Timeout = %v, want 5s", cfg.DBus.Timeout)
	}
	wantPlayer := &PlayerConfig{
		Backend: PlayerCmus,
		Cmus: &CmusConfig{
			Service:   "net.sourceforge.cmus",
			Path:      "/net/sourceforge/cmus",
			Interface: "net.sourceforge.cmus",
		},
		MPRIS: &MPRISConfig{},
		MPD:   &MPDConfig{Address: "localhost:6600"},
	}
	if diff := cmp.Diff(wantPlayer, cfg.Player); diff != "" {
		t.Errorf("Player mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&WatchConfig{Targets: []string{"console"}, Volume: true}, cfg.Watch); diff != "" {
		t.Errorf("Watch mismatch (-want +got):\n%s", diff)
	}
	if cfg.Volume.Source != VolumeFromPlayer {
		t.Errorf("Volume.Source = %q, want %q", cfg.Volume.Source, VolumeFromPlayer)
	}
	if cfg.Messenger.Kind != MessengerPidgin {
		t.Errorf("Messenger.Kind = %q, want %q", cfg.Messenger.Kind, MessengerPidgin)
	}
	wantZeroconf := &ZeroConfig{
		InstanceName: AppName,
		ServiceType:  "_odio-relay._tcp",
		Domain:       "local.",
		Port:         6601,
	}
	if diff := cmp.Diff(wantZeroconf, cfg.Zeroconf); diff != "" {
		t.Errorf("Zeroconf mismatch (-want +got):\n%s", diff)
	}
	if cfg.Notify.Icon != "audio-x-generic" || cfg.Notify.AppName != AppName {
		t.Errorf("Notify = %+v", cfg.Notify)
	}
	if !strings.HasSuffix(cfg.File, "config.yaml") {
		t.Errorf("File = %q", cfg.File)
	}
}

func TestLoad_File(t *testing.T) {
	content := `
LogLevel: debug
LogLevels:
  MPRIS: error
  relay: info
dbus:
  timeout: 2s
player:
  backend: MPRIS
  mpris:
    busname: org.mpris.MediaPlayer2.vlc
volume:
  source: pulseaudio
messenger:
  kind: gaim
watch:
  targets: [notify, LastFM, notify]
  volume: false
lastfm:
  apikey: key
  apisecret: secret
  sessionkey: session
listenbrainz:
  token: tok
zeroconf:
  instance: living-room
  port: 7000
`
	cfg, err := load(viper.New(), flagSet(t, content))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}

	if cfg.LogLevel != logger.DEBUG {
		t.Errorf("LogLevel = %s, want DEBUG", cfg.LogLevel)
	}
	wantLevels := map[string]logger.Level{"mpris": logger.ERROR, "relay": logger.INFO}
	if diff := cmp.Diff(wantLevels, cfg.LogLevels); diff != "" {
		t.Errorf("LogLevels mismatch (-want +got):\n%s", diff)
	}
	if cfg.DBus.Timeout != 2*time.Second {
		t.Errorf("DBus.Timeout = %v, want 2s", cfg.DBus.Timeout)
	}
	if cfg.Player.Backend != PlayerMPRIS || cfg.Player.MPRIS.BusName != "org.mpris.MediaPlayer2.vlc" {
		t.Errorf("Player = %+v, MPRIS = %+v", cfg.Player, cfg.Player.MPRIS)
	}
	if cfg.Volume.Source != VolumeFromPulse {
		t.Errorf("Volume.Source = %q", cfg.Volume.Source)
	}
	if cfg.Messenger.Kind != MessengerGaim {
		t.Errorf("Messenger.Kind = %q", cfg.Messenger.Kind)
	}
	if diff := cmp.Diff(&WatchConfig{Targets: []string{"notify", "lastfm"}}, cfg.Watch); diff != "" {
		t.Errorf("Watch mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(&LastfmConfig{APIKey: "key", APISecret: "secret", SessionKey: "session"}, cfg.Lastfm); diff != "" {
		t.Errorf("Lastfm mismatch (-want +got):\n%s", diff)
	}
	if cfg.ListenBrainz.Token != "tok" {
		t.Errorf("ListenBrainz.Token = %q", cfg.ListenBrainz.Token)
	}
	if cfg.Zeroconf.InstanceName != "living-room" || cfg.Zeroconf.Port != 7000 {
		t.Errorf("Zeroconf = %+v", cfg.Zeroconf)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("ODIO_RELAY_PLAYER_BACKEND", "mpd")
	t.Setenv("ODIO_RELAY_PLAYER_MPD_ADDRESS", "/run/mpd/socket")
	t.Setenv("ODIO_RELAY_WATCH_TARGETS", "console,zeroconf")

	cfg, err := load(viper.New(), flagSet(t, "player:\n  backend: mpris\n"))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Player.Backend != PlayerMPD {
		t.Errorf("Player.Backend = %q, env should override the file", cfg.Player.Backend)
	}
	if cfg.Player.MPD.Address != "/run/mpd/socket" {
		t.Errorf("Player.MPD.Address = %q", cfg.Player.MPD.Address)
	}
	if diff := cmp.Diff([]string{"console", "zeroconf"}, cfg.Watch.Targets); diff != "" {
		t.Errorf("Targets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("ODIO_RELAY_PLAYER_BACKEND", "mpd")

	fs := flagSet(t, "LogLevel: info\n",
		"--player", "mpris",
		"--log-level", "error",
		"--messenger", "gaim",
		"--targets", "notify,zeroconf",
		"--volume=false",
		"--initial",
	)
	cfg, err := load(viper.New(), fs)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Player.Backend != PlayerMPRIS {
		t.Errorf("Player.Backend = %q, flag should override env", cfg.Player.Backend)
	}
	if cfg.LogLevel != logger.ERROR {
		t.Errorf("LogLevel = %s, want ERROR", cfg.LogLevel)
	}
	if cfg.Messenger.Kind != MessengerGaim {
		t.Errorf("Messenger.Kind = %q", cfg.Messenger.Kind)
	}
	want := &WatchConfig{Targets: []string{"notify", "zeroconf"}, Volume: false, Initial: true}
	if diff := cmp.Diff(want, cfg.Watch); diff != "" {
		t.Errorf("Watch mismatch (-want +got):\n%s", diff)
	}
}

func TestReload_KeepsFlagPrecedence(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logger.INFO)
		logger.SetPackageLevels(nil)
	})

	fs := flagSet(t, "LogLevel: debug\nLogLevels:\n  mpris: debug\n", "--log-level", "error")
	cfg, err := reload(fs)
	if err != nil {
		t.Fatalf("reload() error: %v", err)
	}
	if cfg.LogLevel != logger.ERROR {
		t.Errorf("LogLevel = %s, the flag should win over the file", cfg.LogLevel)
	}

	logger.Warn("[relay] hidden")
	logger.Debug("[mpris] shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("WARN logged above the ERROR level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("component override not applied: %q", out)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"player", "player:\n  backend: winamp\n", "invalid player backend"},
		{"volume source", "volume:\n  source: alsa\n", "invalid volume source"},
		{"messenger", "messenger:\n  kind: icq\n", "invalid messenger"},
		{"zeroconf port", "zeroconf:\n  port: 70000\n", "invalid zeroconf port"},
		{"malformed yaml", "player: [\n", "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(viper.New(), flagSet(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	if err := fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if _, err := load(viper.New(), fs); err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil", nil, []string{}},
		{"yaml list", []string{"Console", " notify "}, []string{"console", "notify"}},
		{"comma separated", []string{"console,notify"}, []string{"console", "notify"}},
		{"duplicates and blanks", []string{"console", "", "console, ,notify"}, []string{"console", "notify"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, normalizeList(tt.in)); diff != "" {
				t.Errorf("normalizeList() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfigPaths(t *testing.T) {
	paths := ConfigPaths()
	if len(paths) != 2 {
		t.Fatalf("ConfigPaths() = %v", paths)
	}
	if filepath.Base(paths[0]) != AppName || paths[1] != "/etc/odio-relay" {
		t.Errorf("ConfigPaths() = %v", paths)
	}
}
