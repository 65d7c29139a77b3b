package main

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tr4cks/picled/led"
)

func update(t *testing.T, m modelTUI, msg tea.Msg) (modelTUI, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(modelTUI)
	require.True(t, ok)
	return got, cmd
}

// press presses the button and runs the resulting toggle to completion.
func press(t *testing.T, m modelTUI) modelTUI {
	t.Helper()
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.True(t, m.pending)
	m, _ = update(t, m, cmd())
	require.False(t, m.pending)
	return m
}

func TestModelTUI_Initial(t *testing.T) {
	m := newModelTUI(led.New(&fakeDevice{}, zerolog.Nop()), zerolog.Nop())
	view := m.View()
	assert.Contains(t, view, "PIC LED Controller")
	assert.Contains(t, view, "LED is currently OFF")
	assert.Contains(t, view, "Turn LED ON")
	assert.NotContains(t, view, "Communication Error")
}

func TestModelTUI_Toggle(t *testing.T) {
	d := fakeDevice{}
	m := newModelTUI(led.New(&d, zerolog.Nop()), zerolog.Nop())

	m = press(t, m)
	assert.Equal(t, "1", d.Written())
	assert.True(t, m.state.On)
	assert.Contains(t, m.View(), "LED is currently ON")
	assert.Contains(t, m.View(), "Turn LED OFF")

	m = press(t, m)
	assert.Equal(t, "10", d.Written())
	assert.False(t, m.state.On)
	assert.Contains(t, m.View(), "LED is currently OFF")
	assert.Contains(t, m.View(), "Turn LED ON")
}

func TestModelTUI_Pending(t *testing.T) {
	d := fakeDevice{}
	m := newModelTUI(led.New(&d, zerolog.Nop()), zerolog.Nop())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	require.NotNil(t, cmd)
	assert.True(t, m.pending)

	m, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again)

	m, _ = update(t, m, cmd())
	assert.False(t, m.pending)
	assert.Equal(t, "1", d.Written())
}

func TestModelTUI_DeviceError(t *testing.T) {
	d := fakeDevice{}
	m := newModelTUI(led.New(&d, zerolog.Nop()), zerolog.Nop())
	m = press(t, m)

	d.setErr(errors.New("boom"))
	m = press(t, m)
	require.Error(t, m.err)
	assert.True(t, m.state.On)

	view := m.View()
	assert.Contains(t, view, "Communication Error")
	assert.Contains(t, view, "Error communicating with the device: boom")
	assert.Contains(t, view, "LED is currently ON")
	assert.Contains(t, view, "Turn LED OFF")

	// the dialog is modal: the button and quit keys are ignored
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd)
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Nil(t, cmd)
	require.Error(t, m.err)

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.NoError(t, m.err)
	assert.NotContains(t, m.View(), "Communication Error")
	assert.Equal(t, "1", d.Written())
}

func TestModelTUI_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(msg.String(), func(t *testing.T) {
			m := newModelTUI(led.New(&fakeDevice{}, zerolog.Nop()), zerolog.Nop())
			_, cmd := update(t, m, msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestModelTUI_QuitFromDialog(t *testing.T) {
	m := newModelTUI(led.New(&fakeDevice{}, zerolog.Nop()), zerolog.Nop())
	m.err = &led.DeviceIOError{Err: errors.New("boom")}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
