package devfile

import (
	"fmt"
	"os"

	"github.com/tr4cks/picled/modules"
)

// DefaultPath is the character device created by the PIC LED kernel module.
const DefaultPath = "/dev/pic_led"

type DevFileModule struct {
	modules.DefaultModule
	Config DevFileConfig
}

type DevFileConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

func New() modules.Module {
	return &DevFileModule{Config: DevFileConfig{Path: DefaultPath}}
}

func (m *DevFileModule) Init(config map[string]interface{}) error {
	err := modules.Validate(config, &m.Config)
	if err != nil {
		return fmt.Errorf("error validating %q module configuration: %w", "devfile", err)
	}
	return nil
}

// Write sends one command byte. The device is opened and closed on every call.
func (m *DevFileModule) Write(on bool) (err error) {
	file, err := os.OpenFile(m.Config.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	_, err = file.Write([]byte{modules.Command(on)})
	return err
}
