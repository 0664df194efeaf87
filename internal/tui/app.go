// Package tui is the interactive terminal dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/finai-dev/finai/internal/aggregate"
	"github.com/finai-dev/finai/internal/category"
	"github.com/finai-dev/finai/internal/chat"
	"github.com/finai-dev/finai/internal/dashboard"
	"github.com/finai-dev/finai/internal/log"
	"github.com/finai-dev/finai/internal/model"
	"github.com/finai-dev/finai/internal/render"
)

// App ties together the dashboard views and the advisor chat.
type App struct {
	ctx      context.Context
	dash     *dashboard.Dashboard
	session  *chat.Session
	advisor  chat.Advisor
	currency string
	logger   *log.Logger
	now      func() time.Time

	state       appState
	modal       modalState
	inputBuffer string
	chatInput   string
	editingTxID string
	txCursor    int
	status      string
	pending     *chat.Exchange

	summary      model.Summary
	transactions []model.Transaction
	categories   []model.CategoryTotal
	series       aggregate.DailySeries
	chart        aggregate.CategorySeries
	goals        dashboard.GoalsView
	insights     dashboard.InsightsView
	alerts       []model.Alert
}

type appState string

const (
	viewDashboard    appState = "dashboard"
	viewTransactions appState = "transactions"
	viewGoals        appState = "goals"
	viewAdvisor      appState = "advisor"
	viewAlerts       appState = "alerts"
)

type modalState string

const (
	modalNone          modalState = ""
	modalAddTx         modalState = "addTransaction"
	modalEditTx        modalState = "editTransaction"
	modalConfirmDelete modalState = "confirmDelete"
	modalAddGoal       modalState = "addGoal"
)

type statusMsg string

type errMsg struct{ error }

type refreshDoneMsg struct{ err error }

type chatReplyMsg struct {
	ex    chat.Exchange
	reply string
	err   error
}

// New creates the App. The dashboard's binder must be a *Binder attached to
// the program running this App.
func New(ctx context.Context, dash *dashboard.Dashboard, session *chat.Session, advisor chat.Advisor, currency string, logger *log.Logger) *App {
	if logger == nil {
		logger = log.Discard()
	}
	return &App{
		ctx:      ctx,
		dash:     dash,
		session:  session,
		advisor:  advisor,
		currency: currency,
		logger:   logger.WithComponent(log.ComponentTUI),
		now:      time.Now,
		state:    viewDashboard,
		status:   "loading...",
	}
}

func (a *App) Init() tea.Cmd {
	return a.refreshCmd(dashboard.FullCascade)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a.handleModalKey(m)
		}
		if a.state == viewAdvisor {
			return a.handleAdvisorKey(m)
		}
		return a.handleKey(m)

	case summaryMsg:
		a.summary = model.Summary(m)
	case transactionsMsg:
		a.transactions = []model.Transaction(m)
		if a.txCursor >= len(a.transactions) {
			a.txCursor = 0
		}
	case categoriesMsg:
		a.categories = []model.CategoryTotal(m)
	case seriesMsg:
		a.series = aggregate.DailySeries(m)
	case chartMsg:
		a.chart = aggregate.CategorySeries(m)
	case goalsMsg:
		a.goals = dashboard.GoalsView(m)
	case insightsMsg:
		a.insights = dashboard.InsightsView(m)
	case alertsMsg:
		a.alerts = []model.Alert(m)

	case refreshDoneMsg:
		if m.err != nil {
			a.status = "error: " + m.err.Error()
		} else if a.status == "loading..." || a.status == "refreshing..." {
			a.status = ""
		}
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()

	case chatReplyMsg:
		// A reply for an exchange discarded by Ctrl+L must not release the
		// exchange that replaced it.
		if a.pending == nil || a.pending.ID != m.ex.ID {
			break
		}
		a.pending = nil
		if m.err != nil {
			a.logger.Warn("advisor request failed", log.FieldExchangeID, m.ex.ID, log.FieldError, m.err)
			a.session.Fail(m.ex, m.err)
		} else {
			a.session.Complete(m.ex, m.reply)
		}
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "d":
		a.state = viewDashboard
	case "t":
		a.state = viewTransactions
	case "g":
		a.state = viewGoals
	case "c":
		a.state = viewAdvisor
	case "l":
		a.state = viewAlerts
	case "r":
		a.status = "refreshing..."
		return a, a.refreshCmd(dashboard.FullCascade)
	case "up", "k":
		if a.state == viewTransactions && a.txCursor > 0 {
			a.txCursor--
		}
	case "down", "j":
		if a.state == viewTransactions && a.txCursor < len(a.transactions)-1 {
			a.txCursor++
		}
	case "a":
		switch a.state {
		case viewTransactions:
			a.modal = modalAddTx
			a.inputBuffer = a.now().Format(model.DateLayout) + " expense "
		case viewGoals:
			a.modal = modalAddGoal
			a.inputBuffer = a.now().Format(model.MonthLayout) + " "
		}
	case "e":
		if a.state == viewTransactions && len(a.transactions) > 0 {
			tx := a.transactions[a.txCursor]
			a.modal = modalEditTx
			a.editingTxID = tx.ID
			a.inputBuffer = FormatTransaction(tx)
		}
	case "x":
		switch {
		case a.state == viewTransactions && len(a.transactions) > 0:
			a.modal = modalConfirmDelete
			a.editingTxID = a.transactions[a.txCursor].ID
		case a.state == viewAlerts:
			return a, a.clearAlertsCmd()
		}
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.modal == modalConfirmDelete {
		switch m.String() {
		case "y", "Y":
			id := a.editingTxID
			a.modal = modalNone
			a.editingTxID = ""
			return a, a.deleteCmd(id)
		case "n", "N", "esc":
			a.modal = modalNone
			a.editingTxID = ""
		}
		return a, nil
	}

	switch m.Type {
	case tea.KeyEsc:
		mode := a.modal
		a.modal = modalNone
		a.inputBuffer = ""
		a.editingTxID = ""
		if mode == modalEditTx {
			a.status = "edit cancelled"
			return a, a.refreshCmd(dashboard.CancelEditCascade)
		}
	case tea.KeyEnter:
		return a.submitModal()
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		a.inputBuffer = dropLastRune(a.inputBuffer)
	case tea.KeySpace:
		a.inputBuffer += " "
	case tea.KeyRunes:
		a.inputBuffer += string(m.Runes)
	}
	return a, nil
}

func (a *App) submitModal() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(a.inputBuffer)
	if text == "" {
		a.status = "enter a value"
		return a, nil
	}

	switch a.modal {
	case modalAddTx, modalEditTx:
		tx, err := ParseTransaction(text)
		if err != nil {
			a.status = "error: " + err.Error()
			return a, nil
		}
		hint := a.categoryHint(tx.Category)
		mode, id := a.modal, a.editingTxID
		a.modal, a.inputBuffer, a.editingTxID = modalNone, "", ""
		if mode == modalEditTx {
			return a, a.editCmd(id, tx, hint)
		}
		return a, a.addCmd(tx, hint)

	case modalAddGoal:
		g, err := ParseGoal(text)
		if err != nil {
			a.status = "error: " + err.Error()
			return a, nil
		}
		hint := ""
		if g.Category != model.CategoryAll {
			hint = a.categoryHint(g.Category)
		}
		a.modal, a.inputBuffer = modalNone, ""
		return a, a.addGoalCmd(g, hint)
	}
	return a, nil
}

func (a *App) handleAdvisorKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit
	case tea.KeyEsc:
		a.state = viewDashboard
	case tea.KeyCtrlL:
		a.session.Clear()
		a.pending = nil
	case tea.KeyEnter:
		if a.pending != nil {
			a.status = "waiting for the previous reply"
			return a, nil
		}
		ex, err := a.session.Begin(a.chatInput)
		if err != nil {
			a.status = err.Error()
			return a, nil
		}
		a.chatInput = ""
		a.pending = &ex
		return a, a.askCmd(ex)
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		a.chatInput = dropLastRune(a.chatInput)
	case tea.KeySpace:
		a.chatInput += " "
	case tea.KeyRunes:
		a.chatInput += string(m.Runes)
	}
	return a, nil
}

func (a *App) categoryHint(cat string) string {
	goals := make([]model.Goal, len(a.goals.Rows))
	for i, row := range a.goals.Rows {
		goals[i] = row.Goal
	}
	if s, ok := category.Suggest(cat, category.Known(a.transactions, goals)); ok {
		return fmt.Sprintf(" (new category %q, did you mean %q?)", cat, s)
	}
	return ""
}

// commands

func (a *App) refreshCmd(c dashboard.Cascade) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: a.dash.Refresh(a.ctx, c)}
	}
}

func (a *App) addCmd(tx model.Transaction, hint string) tea.Cmd {
	return func() tea.Msg {
		if err := a.dash.AddTransaction(a.ctx, tx); err != nil {
			return errMsg{err}
		}
		return statusMsg("transaction added" + hint)
	}
}

func (a *App) editCmd(id string, tx model.Transaction, hint string) tea.Cmd {
	return func() tea.Msg {
		if err := a.dash.EditTransaction(a.ctx, id, tx); err != nil {
			return errMsg{err}
		}
		return statusMsg("transaction updated" + hint)
	}
}

func (a *App) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.dash.DeleteTransaction(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return statusMsg("transaction deleted")
	}
}

func (a *App) addGoalCmd(g model.GoalInput, hint string) tea.Cmd {
	return func() tea.Msg {
		if err := a.dash.AddGoal(a.ctx, g); err != nil {
			return errMsg{err}
		}
		return statusMsg("goal added" + hint)
	}
}

func (a *App) clearAlertsCmd() tea.Cmd {
	return func() tea.Msg {
		a.dash.ClearAlerts()
		return statusMsg("alerts cleared")
	}
}

func (a *App) askCmd(ex chat.Exchange) tea.Cmd {
	return func() tea.Msg {
		reply, err := a.advisor.Ask(a.ctx, ex.Request)
		return chatReplyMsg{ex: ex, reply: reply, err: err}
	}
}

// rendering

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD54A")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func (a *App) View() string {
	var body string
	switch a.state {
	case viewTransactions:
		body = a.renderTransactions()
	case viewGoals:
		body = a.renderGoals()
	case viewAdvisor:
		body = a.renderAdvisor()
	case viewAlerts:
		body = a.renderAlerts()
	default:
		body = a.renderDashboard()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	footer := helpStyle.Render(a.help())
	if a.status != "" {
		footer = a.status + "\n" + footer
	}
	return body + "\n\n" + footer
}

func (a *App) report(b *strings.Builder) *render.Report {
	return render.NewStyledReport(b, a.currency, lipgloss.DefaultRenderer())
}

func (a *App) renderDashboard() string {
	var b strings.Builder
	r := a.report(&b)
	r.BindSummary(a.summary)
	r.BindBalanceSeries(a.series)
	r.BindCategoryChart(a.chart)
	r.BindInsights(a.insights)
	fmt.Fprintf(&b, "\nAlerts: %d", len(a.alerts))
	return titleStyle.Render("finai dashboard") + "\n" + b.String()
}

func (a *App) renderTransactions() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Transactions") + "\n\n")
	if len(a.transactions) == 0 {
		b.WriteString(dashboard.EmptyTransactions)
		return b.String()
	}
	for i, t := range a.transactions {
		sign := "-"
		if t.IsIncome() {
			sign = "+"
		}
		line := fmt.Sprintf("%-10s  %-7s  %-14s  %s%s%s  %s",
			t.Date, t.Type, t.Category, sign, a.currency, t.Amount.StringFixed(2), t.Description)
		if i == a.txCursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a *App) renderGoals() string {
	var b strings.Builder
	a.report(&b).BindGoals(a.goals)
	return titleStyle.Render("Goals") + "\n" + b.String()
}

func (a *App) renderAlerts() string {
	var b strings.Builder
	a.report(&b).BindAlerts(a.alerts)
	return titleStyle.Render("Notifications") + "\n" + b.String()
}

func (a *App) renderAdvisor() string {
	var b strings.Builder
	a.report(&b).Transcript(a.session.Transcript())
	return titleStyle.Render("Advisor") + "\n\n" + b.String() + "\n> " + a.chatInput + "_"
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmDelete:
		return "Delete this transaction? (y/n)"
	case modalAddGoal:
		return "New goal (" + GoalFormat + ")\n> " + a.inputBuffer + "_"
	case modalEditTx:
		return "Edit transaction (" + TransactionFormat + ")\n> " + a.inputBuffer + "_"
	default:
		return "New transaction (" + TransactionFormat + ")\n> " + a.inputBuffer + "_"
	}
}

func (a *App) help() string {
	switch {
	case a.modal != modalNone:
		return "enter submit • esc cancel"
	case a.state == viewAdvisor:
		return "enter send • ctrl+l clear • esc back"
	case a.state == viewTransactions:
		return "a add • e edit • x delete • ↑/↓ move • d t g c l views • q quit"
	case a.state == viewGoals:
		return "a add goal • d t g c l views • q quit"
	case a.state == viewAlerts:
		return "x clear • d t g c l views • q quit"
	default:
		return "r refresh • d t g c l views • q quit"
	}
}
