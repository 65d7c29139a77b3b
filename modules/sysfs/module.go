package sysfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tr4cks/picled/modules"
)

// SysfsModule drives an LED exposed through the Linux LED class, e.g.
// /sys/class/leds/led1.
type SysfsModule struct {
	modules.DefaultModule
	Config SysfsConfig
}

type SysfsConfig struct {
	Path    string `mapstructure:"path" validate:"required"`
	Trigger string `mapstructure:"trigger"`
}

// defaultTrigger hands the LED over to userspace. Kernels that do not offer it
// keep their current trigger.
const defaultTrigger = "none"

func New() modules.Module {
	return &SysfsModule{Config: SysfsConfig{Trigger: defaultTrigger}}
}

func (m *SysfsModule) Init(config map[string]interface{}) error {
	err := modules.Validate(config, &m.Config)
	if err != nil {
		return fmt.Errorf("error validating %q module configuration: %w", "sysfs", err)
	}
	if m.Config.Trigger == "" {
		return nil
	}
	if err = m.setTrigger(m.Config.Trigger); err != nil {
		return fmt.Errorf("error setting LED trigger: %w", err)
	}
	return nil
}

func (m *SysfsModule) Write(on bool) error {
	return os.WriteFile(filepath.Join(m.Config.Path, "brightness"), []byte{modules.Command(on)}, 0o644)
}

// triggers parses the trigger file, where the active trigger is shown in brackets.
func (m *SysfsModule) triggers() (available []string, active string, err error) {
	content, err := os.ReadFile(filepath.Join(m.Config.Path, "trigger"))
	if err != nil {
		return nil, "", err
	}
	for _, t := range strings.Fields(string(content)) {
		if length := len(t); length > 2 && t[0] == '[' && t[length-1] == ']' {
			t = t[1 : length-1]
			active = t
		}
		available = append(available, t)
	}
	return available, active, nil
}

func (m *SysfsModule) setTrigger(trigger string) error {
	available, active, err := m.triggers()
	if err != nil {
		return err
	}
	if active == trigger {
		return nil
	}
	if !slices.Contains(available, trigger) {
		if trigger == defaultTrigger {
			return nil
		}
		return errors.New("invalid trigger: " + trigger)
	}
	return os.WriteFile(filepath.Join(m.Config.Path, "trigger"), []byte(trigger), 0o644)
}
