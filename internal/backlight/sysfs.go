package backlight

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// DefaultChipDir is the sysfs directory of the Pi's hardware PWM
// controller (requires the pwm dtoverlay).
const DefaultChipDir = "/sys/class/pwm/pwmchip0"

// Sysfs drives a backlight through the Linux sysfs PWM interface.
type Sysfs struct {
	dir      string
	periodNs int64
}

// NewSysfs exports the given PWM channel if needed, programs the period
// for the given frequency and enables the output. The channel starts at
// duty 0; the caller is expected to apply the initial brightness right
// after.
func NewSysfs(chipDir string, channel, freqHz int) (*Sysfs, error) {
	if freqHz <= 0 {
		return nil, fmt.Errorf("invalid pwm frequency %d", freqHz)
	}

	dir := filepath.Join(chipDir, fmt.Sprintf("pwm%d", channel))
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := writeAttr(filepath.Join(chipDir, "export"), strconv.Itoa(channel)); err != nil {
			return nil, fmt.Errorf("export pwm channel %d: %w", channel, err)
		}
	}

	s := &Sysfs{
		dir:      dir,
		periodNs: int64(1e9) / int64(freqHz),
	}

	// The kernel rejects a duty cycle larger than the period, so zero
	// the duty before reprogramming the period.
	if err := writeAttr(filepath.Join(dir, "duty_cycle"), "0"); err != nil {
		return nil, fmt.Errorf("reset duty cycle: %w", err)
	}
	if err := writeAttr(filepath.Join(dir, "period"), strconv.FormatInt(s.periodNs, 10)); err != nil {
		return nil, fmt.Errorf("set period: %w", err)
	}
	if err := writeAttr(filepath.Join(dir, "enable"), "1"); err != nil {
		return nil, fmt.Errorf("enable pwm: %w", err)
	}
	return s, nil
}

// SetDuty writes the duty cycle. Values are clamped to [0,1].
func (s *Sysfs) SetDuty(duty float64) error {
	if duty < 0 {
		duty = 0
	}
	if duty > 1 {
		duty = 1
	}
	ns := int64(duty * float64(s.periodNs))
	if err := writeAttr(filepath.Join(s.dir, "duty_cycle"), strconv.FormatInt(ns, 10)); err != nil {
		return fmt.Errorf("set duty cycle: %w", err)
	}
	return nil
}

// Close returns the backlight to full brightness and leaves the channel
// enabled, so the display stays usable after the daemon exits.
func (s *Sysfs) Close() error {
	if err := writeAttr(filepath.Join(s.dir, "duty_cycle"), strconv.FormatInt(s.periodNs, 10)); err != nil {
		return fmt.Errorf("restore duty cycle: %w", err)
	}
	return nil
}

func writeAttr(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(value)
	return err
}
