// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/stats"
	"github.com/verte-zerg/tuitables/internal/store"
)

const (
	tabOverview = iota
	tabFacts
	tabGrid
	tabFactCurves
)

const (
	plotHeight       = 10
	defaultFactCount = 5
	fallbackWidth    = 80
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	modalStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig

	report     stats.Report
	errMsg     string
	factErrMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	factTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	factSelection  []model.Item
	factCustom     bool
	factPerSession map[int64]map[model.Item]model.ItemAggregate

	factInputMode  bool
	factInput      textinput.Model
	factInputError string
}

// NewModel constructs a stats UI model.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		tabs:  []string{"Overview", "Facts", "Grid", "Fact Curves"},
	}
	if len(cfg.Facts) > 0 {
		m.factSelection = append([]model.Item(nil), cfg.Facts...)
		m.factCustom = true
	}
	m.initInputs()
	m.factTable = newFactTable()
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.factInputMode {
			return m.updateFactInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "=":
		m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case "-":
		m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case "/":
		return m.startFilter()
	case "enter":
		if m.activeTab == tabFactCurves {
			return m.startFactInput()
		}
		return m, nil
	case "g", "home":
		if m.activeTab == tabFacts {
			m.factTable.GotoTop()
		} else {
			m.viewports[m.activeTab].GotoTop()
		}
		return m, nil
	case "G", "end":
		if m.activeTab == tabFacts {
			m.factTable.GotoBottom()
		} else {
			m.viewports[m.activeTab].GotoBottom()
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.activeTab == tabFacts {
		m.factTable, cmd = m.factTable.Update(msg)
		return m, cmd
	}
	m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.factInputMode {
		return fitLines(m.renderFactModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(lipgloss.Height(activeNavStyle.Render("X")), 1)
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(m.height-headerHeight-footerHeight, 1)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.factTable.SetWidth(m.width)
	m.factTable.SetHeight(max(bodyHeight-1, 1))
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
	m.factInput.Width = max(10, modalInnerWidth(m.width)-lipgloss.Width(m.factInput.Prompt))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabFacts {
		m.factTable.Focus()
	} else {
		m.factTable.Blur()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.factErrMsg = ""
		for i := range m.viewports {
			m.viewports[i].SetContent("Failed to load stats.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	if !m.factCustom {
		m.factSelection = stats.TopFactsByFrequency(m.report.ItemAggsAll, defaultFactCount)
	}
	m.loadFactPerSession()
	m.factTable.SetRows(factRows(m.report.ItemAggsWindow))
	m.renderTabContents()
}

func (m *Model) loadFactPerSession() {
	m.factErrMsg = ""
	m.factPerSession = nil
	if len(m.report.Sessions) == 0 || len(m.factSelection) == 0 {
		return
	}
	perSession, err := m.store.ListItemStatsBySession(context.Background(), m.report.SessionIDs(), m.factSelection)
	if err != nil {
		m.factErrMsg = err.Error()
		return
	}
	m.factPerSession = perSession
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 || m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = fallbackWidth
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report.Sessions, m.cfg.CurveWindow, width))
	m.viewports[tabGrid].SetContent(renderGrid(m.report.ItemAggsWindow))
	m.viewports[tabFactCurves].SetContent(renderFactCurves(m.report.Sessions, m.factSelection, m.factPerSession, m.cfg.CurveWindow, width, m.factErrMsg))
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		return fitLines(m.renderFilterForm(), m.width, height)
	}
	if m.activeTab == tabFacts {
		switch {
		case len(m.report.Sessions) == 0:
			return fitLines("No sessions found.", m.width, height)
		case len(m.report.ItemAggsWindow) == 0:
			return fitLines("No fact stats found.", m.width, height)
		default:
			return fitLines(tableMutedStyle.Render(m.factTable.View()), m.width, height)
		}
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		style := inactiveNavStyle
		if i == m.activeTab {
			style = activeNavStyle
		}
		parts = append(parts, style.Render(tab))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return padLines(m.renderTabs(), m.width) + "\n" + padLines(m.renderFilterSummary(), m.width)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q"
	if m.activeTab == tabFactCurves {
		help = "Nav: left/right  Scroll: up/down/pgup/pgdn  Edit facts: enter  Window: -/=  Settings: /  Quit: q"
	}
	footer := headerStyle.Render(truncateLine(help, m.width))
	if m.errMsg != "" {
		footer += "\n" + errorStyle.Render(m.errMsg)
	}
	return footer
}
