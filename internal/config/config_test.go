package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/pihole-buttons/internal/logic"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Buttons.BrightnessPin != 17 || cfg.Buttons.PowerPin != 23 {
		t.Errorf("unexpected default pins %+v", cfg.Buttons)
	}
	if cfg.Poll() != 50*time.Millisecond {
		t.Errorf("expected 50ms poll, got %v", cfg.Poll())
	}
	if cfg.ConfirmTimeout() != 30*time.Second {
		t.Errorf("expected 30s confirm timeout, got %v", cfg.ConfirmTimeout())
	}
	if cfg.Heartbeat() != 15*time.Minute {
		t.Errorf("expected 15m heartbeat, got %v", cfg.Heartbeat())
	}
	if cfg.Backlight.Gamma != 2.2 || cfg.Backlight.FrequencyHz != 240 {
		t.Errorf("unexpected backlight defaults %+v", cfg.Backlight)
	}
	if cfg.Commands.Gravity != "sudo pihole -g" {
		t.Errorf("unexpected gravity command %q", cfg.Commands.Gravity)
	}
	if !cfg.Tmux.Enabled || cfg.Tmux.Session != "padd" {
		t.Errorf("unexpected tmux defaults %+v", cfg.Tmux)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
buttons:
  brightness_pin: 5
timing:
  confirm_timeout_ms: 10000
backlight:
  default_level: 50
mqtt:
  broker: tcp://broker.local:1883
tmux:
  enabled: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Buttons.BrightnessPin != 5 {
		t.Errorf("override not applied: %+v", cfg.Buttons)
	}
	// Untouched keys keep their defaults.
	if cfg.Buttons.GravityPin != 27 {
		t.Errorf("default lost: %+v", cfg.Buttons)
	}
	if cfg.ConfirmTimeout() != 10*time.Second {
		t.Errorf("expected 10s confirm timeout, got %v", cfg.ConfirmTimeout())
	}
	if cfg.Backlight.DefaultLevel != 50 {
		t.Errorf("unexpected level %d", cfg.Backlight.DefaultLevel)
	}
	if cfg.MQTT.Broker != "tcp://broker.local:1883" {
		t.Errorf("unexpected broker %q", cfg.MQTT.Broker)
	}
	if cfg.Tmux.Enabled {
		t.Error("tmux should be disabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "timing: [not a map")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"duplicate pins", func(c *Config) { c.Buttons.GravityPin = c.Buttons.PowerPin }, "share pin"},
		{"negative pin", func(c *Config) { c.Buttons.SystemPin = -1 }, "negative pin"},
		{"zero poll", func(c *Config) { c.Timing.PollMs = 0 }, "poll_ms"},
		{"zero debounce", func(c *Config) { c.Timing.DebounceMs = 0 }, "debounce_ms"},
		{"zero hold", func(c *Config) { c.Timing.GravityHoldMs = 0 }, "hold thresholds"},
		{"reboot above shutdown", func(c *Config) { c.Timing.RebootMinMs = 6000 }, "reboot_min_ms"},
		{"zero confirm", func(c *Config) { c.Timing.ConfirmTimeoutMs = 0 }, "confirm_timeout_ms"},
		{"negative heartbeat", func(c *Config) { c.Timing.HeartbeatMs = -1 }, "heartbeat_ms"},
		{"zero frequency", func(c *Config) { c.Backlight.FrequencyHz = 0 }, "frequency_hz"},
		{"zero gamma", func(c *Config) { c.Backlight.Gamma = 0 }, "gamma"},
		{"level off the step grid", func(c *Config) { c.Backlight.DefaultLevel = 55 }, "default_level"},
		{"level above 100", func(c *Config) { c.Backlight.DefaultLevel = 110 }, "default_level"},
		{"empty command", func(c *Config) { c.Commands.Reboot = "" }, "commands.reboot"},
		{"tmux enabled without session", func(c *Config) { c.Tmux.Session = "" }, "tmux"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateAllowsDisabledExtras(t *testing.T) {
	cfg := Default()
	cfg.Timing.HeartbeatMs = 0
	cfg.MQTT.Broker = ""
	cfg.HTTP.Addr = ""
	cfg.Tmux.Enabled = false
	cfg.Tmux.Session = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestThresholdsAndPins(t *testing.T) {
	cfg := Default()

	th := cfg.Thresholds()
	want := logic.Thresholds{
		GravityHold: time.Second,
		SystemHold:  2 * time.Second,
		RebootMin:   2 * time.Second,
		ShutdownMin: 5 * time.Second,
	}
	if th != want {
		t.Errorf("unexpected thresholds %+v", th)
	}

	pins := cfg.Pins()
	if pins[logic.ButtonBrightness] != 17 || pins[logic.ButtonGravity] != 27 ||
		pins[logic.ButtonSystem] != 22 || pins[logic.ButtonPower] != 23 {
		t.Errorf("unexpected pins %v", pins)
	}
}
