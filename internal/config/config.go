// Package config loads the daemon's YAML configuration file.
// Defaults are applied first and the file only overrides what it names;
// validation is fatal at startup so the control loop never runs with
// undefined pins or thresholds.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/pihole-buttons/internal/backlight"
	"github.com/sweeney/pihole-buttons/internal/gpio"
	"github.com/sweeney/pihole-buttons/internal/logic"
)

// Config is the top-level YAML configuration for the pihole-buttons daemon.
type Config struct {
	Buttons   ButtonsConfig   `yaml:"buttons"`
	Timing    TimingConfig    `yaml:"timing"`
	Backlight BacklightConfig `yaml:"backlight"`
	Commands  CommandsConfig  `yaml:"commands"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	HTTP      HTTPConfig      `yaml:"http"`
	Tmux      TmuxConfig      `yaml:"tmux"`
}

// ButtonsConfig maps buttons to BCM pin numbers.
type ButtonsConfig struct {
	BrightnessPin int `yaml:"brightness_pin"`
	GravityPin    int `yaml:"gravity_pin"`
	SystemPin     int `yaml:"system_pin"`
	PowerPin      int `yaml:"power_pin"`
}

// TimingConfig holds every timing constant, in milliseconds.
type TimingConfig struct {
	PollMs           int `yaml:"poll_ms"`
	DebounceMs       int `yaml:"debounce_ms"`
	GravityHoldMs    int `yaml:"gravity_hold_ms"`
	SystemHoldMs     int `yaml:"system_hold_ms"`
	RebootMinMs      int `yaml:"reboot_min_ms"`
	ShutdownMinMs    int `yaml:"shutdown_min_ms"`
	ConfirmTimeoutMs int `yaml:"confirm_timeout_ms"`
	HeartbeatMs      int `yaml:"heartbeat_ms"`      // 0 disables
	FeedbackDelayMs  int `yaml:"feedback_delay_ms"` // control pane dwell after an action settles
}

// BacklightConfig configures the PWM backlight output.
type BacklightConfig struct {
	Chip         string  `yaml:"chip"`
	Channel      int     `yaml:"channel"`
	FrequencyHz  int     `yaml:"frequency_hz"`
	Gamma        float64 `yaml:"gamma"`
	DefaultLevel int     `yaml:"default_level"`
}

// CommandsConfig holds the shell-style command lines for external operations.
type CommandsConfig struct {
	Gravity  string `yaml:"gravity"`
	System   string `yaml:"system"`
	Reboot   string `yaml:"reboot"`
	Shutdown string `yaml:"shutdown"`
}

// MQTTConfig configures event publishing. An empty broker disables MQTT.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
}

// HTTPConfig configures the status server. An empty addr disables it.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// TmuxConfig configures the display session the daemon reports into.
type TmuxConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Session       string `yaml:"session"`
	PaddWindow    string `yaml:"padd_window"`
	ControlWindow string `yaml:"control_window"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Buttons: ButtonsConfig{
			BrightnessPin: gpio.DefaultPinBrightness,
			GravityPin:    gpio.DefaultPinGravity,
			SystemPin:     gpio.DefaultPinSystem,
			PowerPin:      gpio.DefaultPinPower,
		},
		Timing: TimingConfig{
			PollMs:           50,
			DebounceMs:       50,
			GravityHoldMs:    1000,
			SystemHoldMs:     2000,
			RebootMinMs:      2000,
			ShutdownMinMs:    5000,
			ConfirmTimeoutMs: 30000,
			HeartbeatMs:      900000,
			FeedbackDelayMs:  3000,
		},
		Backlight: BacklightConfig{
			Chip:         backlight.DefaultChipDir,
			Channel:      0,
			FrequencyHz:  240,
			Gamma:        2.2,
			DefaultLevel: 100,
		},
		Commands: CommandsConfig{
			Gravity:  "sudo pihole -g",
			System:   "sudo pihole -up",
			Reboot:   "sudo systemctl reboot",
			Shutdown: "sudo systemctl poweroff",
		},
		MQTT: MQTTConfig{
			Broker: "",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Tmux: TmuxConfig{
			Enabled:       true,
			Session:       "padd",
			PaddWindow:    "padd",
			ControlWindow: "control",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the control loop cannot
// safely run with.
func (c *Config) Validate() error {
	pins := map[int]string{}
	for name, pin := range map[string]int{
		"brightness_pin": c.Buttons.BrightnessPin,
		"gravity_pin":    c.Buttons.GravityPin,
		"system_pin":     c.Buttons.SystemPin,
		"power_pin":      c.Buttons.PowerPin,
	} {
		if pin < 0 {
			return fmt.Errorf("%s: negative pin %d", name, pin)
		}
		if other, dup := pins[pin]; dup {
			return fmt.Errorf("%s and %s share pin %d", name, other, pin)
		}
		pins[pin] = name
	}

	t := c.Timing
	if t.PollMs <= 0 {
		return fmt.Errorf("poll_ms must be positive, got %d", t.PollMs)
	}
	if t.DebounceMs <= 0 {
		return fmt.Errorf("debounce_ms must be positive, got %d", t.DebounceMs)
	}
	if t.GravityHoldMs <= 0 || t.SystemHoldMs <= 0 || t.RebootMinMs <= 0 || t.ShutdownMinMs <= 0 {
		return fmt.Errorf("hold thresholds must be positive")
	}
	if t.RebootMinMs >= t.ShutdownMinMs {
		return fmt.Errorf("reboot_min_ms (%d) must be below shutdown_min_ms (%d)", t.RebootMinMs, t.ShutdownMinMs)
	}
	if t.ConfirmTimeoutMs <= 0 {
		return fmt.Errorf("confirm_timeout_ms must be positive, got %d", t.ConfirmTimeoutMs)
	}
	if t.HeartbeatMs < 0 {
		return fmt.Errorf("heartbeat_ms must not be negative, got %d", t.HeartbeatMs)
	}
	if t.FeedbackDelayMs < 0 {
		return fmt.Errorf("feedback_delay_ms must not be negative, got %d", t.FeedbackDelayMs)
	}

	b := c.Backlight
	if b.FrequencyHz <= 0 {
		return fmt.Errorf("frequency_hz must be positive, got %d", b.FrequencyHz)
	}
	if b.Gamma <= 0 {
		return fmt.Errorf("gamma must be positive, got %g", b.Gamma)
	}
	if b.DefaultLevel < 0 || b.DefaultLevel > 100 || b.DefaultLevel%logic.BrightnessStep != 0 {
		return fmt.Errorf("default_level must be a multiple of %d in [0,100], got %d", logic.BrightnessStep, b.DefaultLevel)
	}

	for name, cmd := range map[string]string{
		"gravity":  c.Commands.Gravity,
		"system":   c.Commands.System,
		"reboot":   c.Commands.Reboot,
		"shutdown": c.Commands.Shutdown,
	} {
		if cmd == "" {
			return fmt.Errorf("commands.%s must not be empty", name)
		}
	}

	if c.Tmux.Enabled {
		if c.Tmux.Session == "" || c.Tmux.PaddWindow == "" || c.Tmux.ControlWindow == "" {
			return fmt.Errorf("tmux session and windows must be named when tmux is enabled")
		}
	}
	return nil
}

// Pins returns the button-to-pin mapping.
func (c *Config) Pins() gpio.Pins {
	var p gpio.Pins
	p[logic.ButtonBrightness] = c.Buttons.BrightnessPin
	p[logic.ButtonGravity] = c.Buttons.GravityPin
	p[logic.ButtonSystem] = c.Buttons.SystemPin
	p[logic.ButtonPower] = c.Buttons.PowerPin
	return p
}

// Thresholds returns the hold classification thresholds.
func (c *Config) Thresholds() logic.Thresholds {
	return logic.Thresholds{
		GravityHold: ms(c.Timing.GravityHoldMs),
		SystemHold:  ms(c.Timing.SystemHoldMs),
		RebootMin:   ms(c.Timing.RebootMinMs),
		ShutdownMin: ms(c.Timing.ShutdownMinMs),
	}
}

// Poll returns the tick interval.
func (c *Config) Poll() time.Duration { return ms(c.Timing.PollMs) }

// Debounce returns the debounce interval.
func (c *Config) Debounce() time.Duration { return ms(c.Timing.DebounceMs) }

// ConfirmTimeout returns the confirmation window timeout.
func (c *Config) ConfirmTimeout() time.Duration { return ms(c.Timing.ConfirmTimeoutMs) }

// Heartbeat returns the heartbeat interval (0 = disabled).
func (c *Config) Heartbeat() time.Duration { return ms(c.Timing.HeartbeatMs) }

// FeedbackDelay returns the control pane dwell time.
func (c *Config) FeedbackDelay() time.Duration { return ms(c.Timing.FeedbackDelayMs) }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
