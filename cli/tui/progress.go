package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/cea-sec/usbsas/client"
	"github.com/cea-sec/usbsas/types"
)

type statusMsg types.ResponseStatus

type doneMsg struct {
	err error
}

// RunTransfer renders the status stream produced by run as a progress bar.
// run is executed on its own goroutine and its onStatus callback feeds the
// display; RunTransfer returns run's error once the stream ends.
func RunTransfer(run func(onStatus client.StatusFunc) error) error {
	m := transferModel{
		bar: progress.New(progress.WithDefaultGradient()),
	}
	p := tea.NewProgram(m)

	go func() {
		err := run(func(st types.ResponseStatus) {
			p.Send(statusMsg(st))
		})
		p.Send(doneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	return final.(transferModel).err
}

type transferModel struct {
	bar     progress.Model
	status  types.StatusCode
	current uint64
	total   uint64
	done    bool
	err     error
}

func (m transferModel) Init() tea.Cmd {
	return nil
}

func (m transferModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		m.status = msg.Status
		m.current = msg.Current
		m.total = msg.Total
		return m, nil
	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		// The worker owns the transfer; the display cannot cancel it.
		return m, nil
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
		return m, nil
	}
	return m, nil
}

func (m transferModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Transfer in progress"))
	b.WriteString("\n")

	pct := 0.0
	if m.total > 0 {
		pct = float64(m.current) / float64(m.total)
	}
	b.WriteString(m.bar.ViewAs(pct))
	b.WriteString("\n")

	status := m.status
	if status == "" {
		status = types.StatusUnknown
	}
	b.WriteString(fmt.Sprintf("%s  %d / %d\n", status, m.current, m.total))
	b.WriteString(HelpStyle.Render("running to completion"))
	return b.String()
}
