// Package tui provides the terminal user interface for Soiree.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/soireekit/soiree/internal/planner"
	"github.com/soireekit/soiree/pkg/models"
)

// SaveFunc stores a completed menu and returns it with its assigned ID.
type SaveFunc func(models.Menu) (models.Menu, error)

// CostFunc reports the running API cost for the footer.
type CostFunc func() float64

// fetchDoneMsg is sent when a crew consultation finishes.
type fetchDoneMsg struct {
	err error
}

// menuSavedMsg is sent when a completed menu was written to history.
type menuSavedMsg struct {
	id  string
	err error
}

// PlannerApp is the bubbletea model driving one planning session.
type PlannerApp struct {
	session *planner.Session
	save    SaveFunc
	cost    CostFunc

	input    *InputField
	spin     spinner.Model
	snapshot planner.Snapshot
	fetching bool
	savedID  string
	saveErr  error
	width    int
	height   int
	quitting bool

	// Styles
	titleStyle  lipgloss.Style
	stageStyle  lipgloss.Style
	numberStyle lipgloss.Style
	nameStyle   lipgloss.Style
	descStyle   lipgloss.Style
	labelStyle  lipgloss.Style
	errorStyle  lipgloss.Style
	dimStyle    lipgloss.Style
	doneStyle   lipgloss.Style
}

// NewPlannerApp creates the planner TUI around a session. save and cost are
// optional; nil disables saving and the cost footer.
func NewPlannerApp(session *planner.Session, save SaveFunc, cost CostFunc) *PlannerApp {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &PlannerApp{
		session:  session,
		save:     save,
		cost:     cost,
		input:    NewInputField(),
		spin:     sp,
		snapshot: session.Snapshot(),
		width:    80,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),

		stageStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("238")),

		numberStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true),

		nameStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true),

		descStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),

		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(14),

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true),
	}
}

// Init implements tea.Model.
func (a *PlannerApp) Init() tea.Cmd {
	return a.input.Focus()
}

// Update implements tea.Model.
func (a *PlannerApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.SetWidth(msg.Width)
		return a, nil

	case spinner.TickMsg:
		if !a.fetching {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case BeverageSubmittedMsg:
		a.fetching = true
		return a, tea.Batch(a.spin.Tick, a.submitCmd(msg.Name))

	case fetchDoneMsg:
		a.fetching = false
		a.snapshot = a.session.Snapshot()
		return a, nil

	case menuSavedMsg:
		a.savedID = msg.id
		a.saveErr = msg.err
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.snapshot.Stage == planner.StageBeverage && !a.fetching {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *PlannerApp) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		a.quitting = true
		return a, tea.Quit
	}

	// Ignore input while a consultation is in flight.
	if a.fetching {
		return a, nil
	}

	// The beverage stage owns the keyboard for free-text entry.
	if a.snapshot.Stage == planner.StageBeverage {
		if msg.String() == "r" && a.snapshot.LastError != nil && a.input.Value() == "" {
			a.fetching = true
			return a, tea.Batch(a.spin.Tick, a.retryCmd())
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	switch msg.String() {
	case "q":
		a.quitting = true
		return a, tea.Quit
	case "n":
		a.session.Reset()
		a.snapshot = a.session.Snapshot()
		a.savedID = ""
		a.saveErr = nil
		a.input.SetValue("")
		return a, a.input.Focus()
	case "r":
		if a.snapshot.LastError != nil {
			a.fetching = true
			return a, tea.Batch(a.spin.Tick, a.retryCmd())
		}
	case "s":
		if a.snapshot.Stage == planner.StageComplete && a.save != nil && a.savedID == "" {
			return a, a.saveCmd()
		}
	default:
		if idx, ok := optionIndex(msg.String(), len(a.snapshot.Pending)); ok {
			name := a.snapshot.Pending[idx].Name
			a.fetching = true
			return a, tea.Batch(a.spin.Tick, a.chooseCmd(name))
		}
	}
	return a, nil
}

// optionIndex maps a digit key to a pending suggestion index.
func optionIndex(key string, n int) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	idx := int(key[0] - '1')
	if idx >= n {
		return 0, false
	}
	return idx, true
}

func (a *PlannerApp) submitCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{err: a.session.SubmitBeverageName(context.Background(), name)}
	}
}

func (a *PlannerApp) chooseCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{err: a.session.ChooseOption(context.Background(), name)}
	}
}

func (a *PlannerApp) retryCmd() tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{err: a.session.Retry(context.Background())}
	}
}

func (a *PlannerApp) saveCmd() tea.Cmd {
	return func() tea.Msg {
		menu, err := a.session.Menu()
		if err != nil {
			return menuSavedMsg{err: err}
		}
		saved, err := a.save(menu)
		if err != nil {
			return menuSavedMsg{err: err}
		}
		return menuSavedMsg{id: saved.ID}
	}
}

// View implements tea.Model.
func (a *PlannerApp) View() string {
	if a.quitting {
		return "Bon appetit!\n"
	}

	var b strings.Builder
	b.WriteString(a.titleStyle.Render("Soiree"))
	b.WriteString(a.dimStyle.Render("  plan a dinner around your beverage"))
	b.WriteString("\n\n")

	b.WriteString(a.stageStyle.Render(a.snapshot.Stage.Title()))
	b.WriteString("\n\n")

	b.WriteString(a.renderSelections())

	switch {
	case a.fetching:
		b.WriteString(a.spin.View())
		b.WriteString(" Consulting the experts...\n")
	case a.snapshot.Stage == planner.StageBeverage:
		b.WriteString(a.input.View())
		b.WriteString("\n")
	case a.snapshot.Stage == planner.StageComplete:
		b.WriteString(a.renderAnalysis())
	default:
		b.WriteString(a.renderOptions())
	}

	if err := a.snapshot.LastError; err != nil && !a.fetching {
		b.WriteString("\n")
		b.WriteString(a.errorStyle.Render(fmt.Sprintf("✗ %v", err)))
		b.WriteString("\n")
		b.WriteString(a.dimStyle.Render("press r to retry"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())
	return b.String()
}

// renderSelections shows what has been committed so far.
func (a *PlannerApp) renderSelections() string {
	rows := []struct {
		label string
		sel   *models.Suggestion
	}{
		{"Beverage:", a.snapshot.Beverage},
		{"Starter:", a.snapshot.Starter},
		{"Main Course:", a.snapshot.MainCourse},
		{"Final Course:", a.snapshot.FinalCourse},
	}

	var b strings.Builder
	shown := false
	for _, row := range rows {
		if row.sel == nil {
			continue
		}
		shown = true
		b.WriteString(a.labelStyle.Render(row.label))
		b.WriteString(a.nameStyle.Render(row.sel.Name))
		b.WriteString("\n")
	}
	if shown {
		b.WriteString("\n")
	}
	return b.String()
}

// renderOptions lists the pending suggestions with their choice keys.
func (a *PlannerApp) renderOptions() string {
	var b strings.Builder
	for i, opt := range a.snapshot.Pending {
		b.WriteString("  ")
		b.WriteString(a.numberStyle.Render(fmt.Sprintf("%d", i+1)))
		b.WriteString("  ")
		b.WriteString(a.nameStyle.Render(opt.Name))
		b.WriteString("\n     ")
		b.WriteString(a.descStyle.Render(opt.Description))
		b.WriteString("\n")
	}
	return b.String()
}

// renderAnalysis shows the crew's harmony assessment of the finished menu.
func (a *PlannerApp) renderAnalysis() string {
	analysis := a.snapshot.Analysis
	if analysis == nil {
		return ""
	}

	sections := []struct {
		heading string
		body    string
	}{
		{"Wine Pairing", analysis.WinePairing},
		{"Flavor Progression", analysis.FlavorProgression},
		{"Highlights", analysis.Highlights},
		{"Overall Harmony", analysis.OverallHarmony},
	}

	var b strings.Builder
	for _, s := range sections {
		b.WriteString(a.nameStyle.Render(s.heading))
		b.WriteString("\n")
		b.WriteString(a.descStyle.Render(s.body))
		b.WriteString("\n\n")
	}

	switch {
	case a.saveErr != nil:
		b.WriteString(a.errorStyle.Render(fmt.Sprintf("save failed: %v", a.saveErr)))
		b.WriteString("\n")
	case a.savedID != "":
		b.WriteString(a.doneStyle.Render("✓ saved to history "))
		b.WriteString(a.dimStyle.Render(a.savedID))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *PlannerApp) renderFooter() string {
	var hints []string
	switch {
	case a.fetching:
		hints = append(hints, "ctrl+c quit")
	case a.snapshot.Stage == planner.StageBeverage:
		hints = append(hints, "enter submit", "ctrl+c quit")
	case a.snapshot.Stage == planner.StageComplete:
		if a.save != nil && a.savedID == "" {
			hints = append(hints, "s save")
		}
		hints = append(hints, "n new menu", "q quit")
	default:
		hints = append(hints, "1-9 choose", "n start over", "q quit")
	}

	footer := a.dimStyle.Render(strings.Join(hints, "  ·  "))
	if a.cost != nil {
		footer += a.dimStyle.Render(fmt.Sprintf("  ·  $%.4f", a.cost()))
	}
	return footer
}

// NewPlannerProgram creates a Bubbletea program for the planner TUI.
func NewPlannerProgram(app *PlannerApp) *tea.Program {
	return tea.NewProgram(app, tea.WithAltScreen())
}
