package led

import (
	"sync"

	"github.com/rs/zerolog"
)

// Device receives the LED command for every toggle.
type Device interface {
	Write(on bool) error
}

// State is the LED intent: the last value successfully written to the device.
type State struct {
	On bool
}

func (s State) Status() string {
	if s.On {
		return "LED is currently ON"
	}
	return "LED is currently OFF"
}

func (s State) Button() string {
	if s.On {
		return "Turn LED OFF"
	}
	return "Turn LED ON"
}

// View is the JSON representation served to clients.
type View struct {
	LED    bool   `json:"led"`
	Status string `json:"status"`
	Button string `json:"button"`
}

func (s State) View() View {
	return View{LED: s.On, Status: s.Status(), Button: s.Button()}
}

// Event is emitted after every toggle attempt. On failure State still holds
// the value from before the toggle.
type Event struct {
	State State
	Err   error
}

// Controller owns the LED state and is the only thing allowed to change it.
// Toggles are serialised: the lock is held for the duration of the device write.
type Controller struct {
	device Device
	logger zerolog.Logger

	mu        sync.Mutex
	state     State
	listeners []func(Event)
}

func New(device Device, logger zerolog.Logger) *Controller {
	return &Controller{device: device, logger: logger}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to be called after each toggle attempt. Listeners run
// with the controller locked and must not call back into it.
func (c *Controller) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Toggle flips the LED. The new state is only applied once the device accepted
// the command; on failure the returned error is a *DeviceIOError and the state
// is left untouched.
func (c *Controller) Toggle() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := State{On: !c.state.On}
	if err := c.device.Write(next.On); err != nil {
		err = &DeviceIOError{Err: err}
		c.logger.Error().Err(err).Bool("requested", next.On).Msg("Error communicating with the device")
		c.notify(Event{State: c.state, Err: err})
		return c.state, err
	}

	c.state = next
	c.logger.Debug().Bool("led", next.On).Msg("LED toggled")
	c.notify(Event{State: next})
	return next, nil
}

func (c *Controller) notify(ev Event) {
	for _, fn := range c.listeners {
		fn(ev)
	}
}
