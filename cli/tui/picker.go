package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cea-sec/usbsas/types"
)

// ErrPickerAborted is returned when the user quits the picker without
// choosing a device.
var ErrPickerAborted = errors.New("device selection aborted")

// PickDevice runs an interactive cursor list over devices and returns the
// one the user selects.
func PickDevice(title string, devices []types.Device) (*types.Device, error) {
	if len(devices) == 0 {
		return nil, errors.New("no device to pick from")
	}

	m := pickerModel{title: title, devices: devices}
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}

	pm := final.(pickerModel)
	if pm.aborted {
		return nil, ErrPickerAborted
	}
	return &pm.devices[pm.cursor], nil
}

type pickerModel struct {
	title   string
	devices []types.Device
	cursor  int
	done    bool
	aborted bool
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.devices)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")

	for i := range m.devices {
		line := fmt.Sprintf("%3d  %s", m.devices[i].ID, m.devices[i].Description())
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("up/down: move • enter: select • q: abort"))
	return b.String()
}
