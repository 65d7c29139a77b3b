package modules

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

const (
	CommandOn  byte = '1'
	CommandOff byte = '0'
)

// Command returns the single byte understood by the PIC firmware.
func Command(on bool) byte {
	if on {
		return CommandOn
	}
	return CommandOff
}

// Validate decodes input on top of the defaults already held by output and
// validates the result.
func Validate[T any](input map[string]interface{}, output *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           output,
	})
	if err != nil {
		return fmt.Errorf("error creating decoder: %w", err)
	}
	err = decoder.Decode(input)
	if err != nil {
		return fmt.Errorf("input decoding error: %w", err)
	}
	validate := validator.New()
	err = validate.Struct(output)
	if err != nil {
		return fmt.Errorf("error validating structure fields: %w", err)
	}
	return nil
}
