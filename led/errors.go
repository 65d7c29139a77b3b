package led

import "errors"

// DeviceIOError reports that the LED command could not be delivered, either
// because the device could not be opened or because the write failed.
type DeviceIOError struct {
	Err error
}

func (e *DeviceIOError) Error() string {
	return e.Err.Error()
}

func (e *DeviceIOError) Unwrap() error {
	return e.Err
}

// Message formats err the way it is shown to users.
func Message(err error) string {
	var ioErr *DeviceIOError
	if errors.As(err, &ioErr) {
		return "Error communicating with the device: " + ioErr.Error()
	}
	return err.Error()
}
