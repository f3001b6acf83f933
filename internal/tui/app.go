package tui

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/sync/errgroup"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/board"
	"github.com/mark3labs/taskdeck/internal/dragdrop"
	"github.com/mark3labs/taskdeck/internal/journal"
	"github.com/mark3labs/taskdeck/internal/logger"
	"github.com/mark3labs/taskdeck/internal/mutation"
	"github.com/mark3labs/taskdeck/internal/session"
	"github.com/mark3labs/taskdeck/internal/state"
	"github.com/mark3labs/taskdeck/internal/taskcache"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// HistorySource loads journaled activity for a user scope.
type HistorySource interface {
	Load(ctx context.Context, scope string) (*journal.History, error)
}

// Deps wires the app to the sync layer.
type Deps struct {
	Session  *session.Cache
	Cache    *taskcache.Collection
	Pipeline *mutation.Pipeline
	// Notices must be the notifier the pipeline was built with.
	Notices *NoticeQueue
	// History is nil when the journal is disabled.
	History  HistorySource
	Host     string
	DataDir  string
	ToastTTL time.Duration
}

type screen int

const (
	screenLoading screen = iota
	screenAuth
	screenBoard
)

// historySize is how many mutations the activity sidebar lists.
const historySize = 50

// App is the main Bubbletea model.
type App struct {
	deps Deps
	ctx  context.Context

	header  *Header
	status  *StatusBar
	footer  *Footer
	sidebar *Sidebar
	board   *BoardView
	auth    *AuthForm
	detail  *TaskDetail
	input   *TaskInputModal
	dialog  *Dialog
	toast   *Toast
	loading spinner.Model

	drag    *dragdrop.Machine
	pressed *api.Task // card under a mouse press that has not moved yet
	follow  int64     // task to select once it shows up in its new lane

	screen         screen
	user           *api.User
	uiState        *state.UIState
	sidebarVisible bool
	layout         Layout
	width          int
	height         int
	quitting       bool

	events      chan tea.Msg
	unsubscribe []func()
}

// NewApp creates the app. Nothing is fetched until Init.
func NewApp(ctx context.Context, deps Deps) *App {
	if deps.Notices == nil {
		deps.Notices = NewNoticeQueue(0)
	}
	ui := state.Load(deps.DataDir)

	a := &App{
		deps:           deps,
		ctx:            ctx,
		header:         NewHeader(deps.Host),
		status:         NewStatusBar(deps.History != nil),
		footer:         NewFooter(),
		sidebar:        NewSidebar(deps.History != nil),
		board:          NewBoardView(),
		auth:           NewAuthForm(),
		detail:         NewTaskDetail(),
		input:          NewTaskInputModal(),
		dialog:         NewDialog(),
		toast:          NewToast(deps.ToastTTL),
		loading:        spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		drag:           dragdrop.New(),
		uiState:        ui,
		sidebarVisible: ui.Sidebar.Visible,
		events:         make(chan tea.Msg, 64),
	}
	a.board.SetFilter(ui.Board.Category)
	a.board.SetLane(ui.Board.Lane)
	return a
}

// Init subscribes to the caches and waits for the first session fetch.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.subscribeToEvents(),
		a.waitForEvents(),
		a.deps.Notices.wait(),
		a.waitForSession(),
		a.loading.Tick,
	)
}

// Close drops cache subscriptions. Call after the program exits.
func (a *App) Close() {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil
}

// Update handles incoming messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		cmds = append(cmds, a.handleKeyPress(msg))

	case tea.MouseClickMsg:
		cmds = append(cmds, a.handleMouseDown(msg.Mouse()))

	case tea.MouseMotionMsg:
		a.handleMouseMotion(msg.Mouse())

	case tea.MouseReleaseMsg:
		cmds = append(cmds, a.handleMouseUp(msg.Mouse()))

	case tea.MouseWheelMsg:
		a.handleMouseWheel(msg.Mouse())

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.detail.SetSize(msg.Width, msg.Height)

	case spinner.TickMsg:
		if a.screen == screenLoading {
			var cmd tea.Cmd
			a.loading, cmd = a.loading.Update(msg)
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, a.status.Update(msg), a.auth.Update(msg))

	case SessionReadyMsg:
		if u, ok := a.deps.Session.CurrentUser(); ok {
			cmds = append(cmds, a.enterBoard(u))
		} else {
			cmds = append(cmds, a.enterAuth())
			if err := a.deps.Session.Pending(session.OpRefresh).Err; err != nil {
				cmds = append(cmds, a.toast.Failure("Session check failed", err.Error()))
			}
		}

	case UserChangedMsg:
		cmds = append(cmds, a.waitForEvents())
		if a.screen == screenLoading {
			break
		}
		if msg.User == nil && a.screen == screenBoard {
			cmds = append(cmds, a.enterAuth())
		} else if msg.User != nil && (a.screen != screenBoard || a.user == nil || a.user.ID != msg.User.ID) {
			cmds = append(cmds, a.enterBoard(msg.User))
		}

	case CacheChangedMsg:
		cmds = append(cmds, a.waitForEvents())
		a.syncBoard()

	case BoardLoadedMsg:
		if msg.Err != nil {
			logger.Warn("Initial load failed: %v", msg.Err)
			cmds = append(cmds, a.toast.Failure("Load failed", msg.Err.Error()))
		}
		a.syncBoard()

	case NoticeMsg:
		cmds = append(cmds, a.toast.Show(msg.Notice), a.loadHistory(), a.deps.Notices.wait())

	case ToastDismissMsg:
		a.toast.Update(msg)

	case AuthSubmitMsg:
		cmds = append(cmds, a.auth.SetBusy(true), a.submitAuth(msg))

	case AuthResultMsg:
		if msg.Err != nil {
			a.auth.SetError(msg.Err)
		} else if a.screen != screenBoard {
			cmds = append(cmds, a.enterBoard(msg.User))
		}

	case LogoutResultMsg:
		if msg.Err != nil {
			cmds = append(cmds, a.toast.Failure("Logout failed", msg.Err.Error()))
		} else if a.screen == screenBoard {
			cmds = append(cmds, a.enterAuth())
		}

	case MutationDoneMsg:
		// Failures arrive as notices.

	case RefreshDoneMsg:
		if msg.Err != nil {
			cmds = append(cmds, a.toast.Failure("Refresh failed", msg.Err.Error()))
		}

	case HistoryLoadedMsg:
		a.sidebar.SetHistory(msg.Recent, msg.Err)

	case DescriptionEditedMsg:
		cmds = append(cmds, a.applyDescription(msg))

	case CreateTaskMsg:
		in := msg.Task
		cmds = append(cmds, a.mutate(mutation.KindCreate, func(ctx context.Context) error {
			_, err := a.deps.Pipeline.CreateTask(ctx, in)
			return err
		}))

	case DeleteRequestMsg:
		a.confirmDelete(msg.Task)

	default:
		cmds = append(cmds, a.forwardToModals(msg))
	}

	if a.screen == screenBoard {
		cmds = append(cmds, a.status.SetBusy(a.deps.Cache.Fetching(), len(a.deps.Pipeline.Pending())))
	}
	return a, tea.Batch(cmds...)
}

// forwardToModals passes non-key messages such as cursor blinks to the
// focused input.
func (a *App) forwardToModals(msg tea.Msg) tea.Cmd {
	switch {
	case a.screen == screenAuth:
		return a.auth.Update(msg)
	case a.input.IsVisible():
		return a.input.Update(msg)
	case a.detail.IsVisible():
		return a.detail.Update(msg)
	}
	return nil
}

func (a *App) handleKeyPress(msg tea.KeyPressMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return a.quit()
	}
	if a.dialog.IsVisible() {
		return a.dialog.Update(msg)
	}

	switch a.screen {
	case screenLoading:
		if msg.String() == "q" {
			return a.quit()
		}
		return nil
	case screenAuth:
		return a.auth.Update(msg)
	}

	if a.input.IsVisible() {
		return a.input.Update(msg)
	}
	if a.detail.IsVisible() {
		return a.detail.Update(msg)
	}
	if a.drag.State().Active() {
		return a.handleDragKey(msg)
	}

	switch msg.String() {
	case "q":
		return a.quit()
	case "left", "h":
		a.board.MoveLane(-1)
	case "right", "l":
		a.board.MoveLane(1)
	case "up", "k":
		a.board.MoveRow(-1)
	case "down", "j":
		a.board.MoveRow(1)
	case "space":
		a.pickUp()
	case "enter":
		if t, ok := a.board.Selected(); ok {
			a.detail.Show(t, a.board.Categories())
		}
	case "n":
		return a.openNewTask()
	case "d", "delete":
		if t, ok := a.board.Selected(); ok {
			a.confirmDelete(t)
		}
	case "f":
		a.board.SetFilter(a.board.Categories().NextFilter(a.board.Filter()))
		a.status.SetLanes(a.board.Lanes(), len(a.board.Late()))
		a.saveUIState()
	case "r":
		return a.refresh()
	case "tab":
		a.sidebarVisible = !a.sidebarVisible
		a.saveUIState()
	case "L":
		return a.logout()
	}
	return nil
}

// handleDragKey drives the keyboard drag: h/l move over lanes, enter or
// space drops and esc cancels.
func (a *App) handleDragKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "left", "h":
		a.moveDrag(-1)
	case "right", "l":
		a.moveDrag(1)
	case "enter", "space":
		return a.release()
	case "esc":
		a.drag.Cancel()
	}
	return nil
}

func (a *App) pickUp() {
	t, ok := a.board.Selected()
	if !ok {
		return
	}
	if err := a.drag.Start(t.Key()); err != nil {
		logger.Debug("pick up: %v", err)
		return
	}
	a.drag.Enter(a.board.LaneStatus())
}

func (a *App) moveDrag(dx int) {
	a.drag.Leave(a.board.LaneStatus())
	a.board.MoveLane(dx)
	a.drag.Enter(a.board.LaneStatus())
}

// release ends the gesture and issues the status change for a drop.
func (a *App) release() tea.Cmd {
	out := a.drag.Release()
	if out.Drop == nil {
		return nil
	}
	drop := *out.Drop
	a.follow = drop.TaskID
	return a.mutate(mutation.KindStatus, func(ctx context.Context) error {
		return a.deps.Pipeline.UpdateTaskStatus(ctx, drop.TaskID, drop.Status)
	})
}

func (a *App) handleMouseDown(m tea.Mouse) tea.Cmd {
	if m.Button != tea.MouseLeft || a.screen != screenBoard || a.modalOpen() {
		return nil
	}
	if lane, ok := a.board.LaneAt(m.X, m.Y); ok {
		for i, s := range api.Statuses {
			if s == lane {
				a.board.SetLane(i)
			}
		}
	}
	if t, ok := a.board.CardAt(m.X, m.Y); ok {
		a.pressed = &t
		a.board.Select(t.ID)
	}
	return nil
}

func (a *App) handleMouseMotion(m tea.Mouse) {
	if m.Button != tea.MouseLeft || a.screen != screenBoard {
		return
	}
	if !a.drag.State().Active() {
		if a.pressed == nil {
			return
		}
		if err := a.drag.Start(a.pressed.Key()); err != nil {
			return
		}
	}

	lane, over := a.board.LaneAt(m.X, m.Y)
	cur, hasCur := a.drag.Current()
	switch {
	case over && (!hasCur || cur != lane):
		if hasCur {
			a.drag.Leave(cur)
		}
		a.drag.Enter(lane)
	case !over && hasCur:
		a.drag.Leave(cur)
	}
}

func (a *App) handleMouseUp(m tea.Mouse) tea.Cmd {
	a.pressed = nil
	if a.screen != screenBoard || !a.drag.State().Active() {
		return nil
	}
	return a.release()
}

func (a *App) handleMouseWheel(m tea.Mouse) {
	if a.screen != screenBoard || a.modalOpen() {
		return
	}
	lane, ok := a.board.LaneAt(m.X, m.Y)
	if !ok {
		return
	}
	switch m.Button {
	case tea.MouseWheelUp:
		a.board.Scroll(lane, -1)
	case tea.MouseWheelDown:
		a.board.Scroll(lane, 1)
	}
}

func (a *App) modalOpen() bool {
	return a.dialog.IsVisible() || a.input.IsVisible() || a.detail.IsVisible()
}

func (a *App) openNewTask() tea.Cmd {
	filter := a.board.Filter()
	name := ""
	if filter != nil {
		name = a.board.Categories().Name(filter)
	}
	return a.input.Show(a.board.LaneStatus(), filter, name)
}

func (a *App) confirmDelete(t api.Task) {
	a.dialog.Show("Delete task", fmt.Sprintf("Delete %q?", truncate(t.Title, 40)), func() tea.Cmd {
		a.detail.Close()
		id := t.ID
		return a.mutate(mutation.KindDelete, func(ctx context.Context) error {
			return a.deps.Pipeline.DeleteTask(ctx, id)
		})
	})
}

func (a *App) applyDescription(msg DescriptionEditedMsg) tea.Cmd {
	if msg.Err != nil {
		return a.toast.Failure("Editor", msg.Err.Error())
	}
	if t, ok := board.Find(a.board.tasks, msg.TaskID); ok && t.Description != nil && *t.Description == msg.Text {
		return nil
	}
	text := msg.Text
	id := msg.TaskID
	return a.mutate(mutation.KindEdit, func(ctx context.Context) error {
		return a.deps.Pipeline.UpdateTask(ctx, id, api.TaskPatch{Description: &text})
	})
}

// mutate runs a pipeline call off the UI loop.
func (a *App) mutate(kind mutation.Kind, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return MutationDoneMsg{Kind: kind, Err: fn(a.ctx)}
	}
}

func (a *App) refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshDoneMsg{Err: a.deps.Cache.InvalidateAll(a.ctx)}
	}
}

func (a *App) logout() tea.Cmd {
	return func() tea.Msg {
		return LogoutResultMsg{Err: a.deps.Session.Logout(a.ctx)}
	}
}

func (a *App) submitAuth(msg AuthSubmitMsg) tea.Cmd {
	return func() tea.Msg {
		var (
			u   *api.User
			err error
		)
		if msg.Mode == AuthRegister {
			u, err = a.deps.Session.Register(a.ctx, msg.Registration)
		} else {
			u, err = a.deps.Session.Login(a.ctx, msg.Credentials)
		}
		return AuthResultMsg{User: u, Err: err}
	}
}

func (a *App) enterBoard(u *api.User) tea.Cmd {
	a.screen = screenBoard
	a.user = u
	a.header.SetUser(u)
	a.auth.Reset()
	a.syncBoard()
	return tea.Batch(a.loadBoard(), a.loadHistory())
}

func (a *App) enterAuth() tea.Cmd {
	a.screen = screenAuth
	a.user = nil
	a.header.SetUser(nil)
	a.drag.Cancel()
	a.pressed = nil
	a.detail.Close()
	a.input.Close()
	a.dialog.Hide()
	a.board.SetData(nil, nil)
	a.sidebar.SetHistory(nil, nil)
	return a.auth.Focus()
}

// syncBoard re-reads the cache snapshots into the board.
func (a *App) syncBoard() {
	tasks, _ := a.deps.Cache.Tasks.Snapshot()
	cats, catsLoaded := a.deps.Cache.Categories.Snapshot()
	a.board.SetData(tasks, cats)

	if f := a.board.Filter(); f != nil && catsLoaded {
		if _, ok := a.board.Categories().Lookup(f); !ok {
			a.board.SetFilter(nil)
		}
	}
	if a.follow != 0 {
		if t, ok := board.Find(tasks, a.follow); ok && t.Status.Valid() && a.board.Select(a.follow) {
			a.follow = 0
		}
	}
	a.detail.Refresh(tasks, a.board.Categories())
	a.status.SetLanes(a.board.Lanes(), len(a.board.Late()))
}

func (a *App) loadBoard() tea.Cmd {
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(a.ctx)
		g.Go(func() error {
			_, err := a.deps.Cache.Tasks.Get(ctx)
			return err
		})
		g.Go(func() error {
			_, err := a.deps.Cache.Categories.Get(ctx)
			return err
		})
		return BoardLoadedMsg{Err: g.Wait()}
	}
}

func (a *App) loadHistory() tea.Cmd {
	if a.deps.History == nil || a.user == nil {
		return nil
	}
	scope := journal.Scope(a.deps.Host, a.user.Username)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
		defer cancel()
		h, err := a.deps.History.Load(ctx, scope)
		if err != nil {
			return HistoryLoadedMsg{Err: err}
		}
		return HistoryLoadedMsg{Recent: h.Recent(historySize)}
	}
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.drag.Cancel()
	a.saveUIState()
	return tea.Quit
}

func (a *App) saveUIState() {
	a.uiState.Sidebar.Visible = a.sidebarVisible
	a.uiState.Board.Category = a.board.Filter()
	a.uiState.Board.Lane = a.board.Lane()
	if err := state.Save(a.deps.DataDir, a.uiState); err != nil {
		logger.Warn("Failed to save UI state: %v", err)
	}
}

// subscribeToEvents forwards session and cache changes into the event
// channel. Sends never block; waitForEvents drains the channel.
func (a *App) subscribeToEvents() tea.Cmd {
	push := func(msg tea.Msg) {
		select {
		case a.events <- msg:
		default:
			logger.Debug("Event channel full, dropping %T", msg)
		}
	}
	a.unsubscribe = append(a.unsubscribe,
		a.deps.Session.Subscribe(func(u *api.User) { push(UserChangedMsg{User: u}) }),
		a.deps.Cache.Subscribe(func(key string) { push(CacheChangedMsg{Key: key}) }),
	)
	return nil
}

func (a *App) waitForEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-a.events:
			return msg
		case <-a.ctx.Done():
			return nil
		}
	}
}

func (a *App) waitForSession() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-a.deps.Session.Ready():
			return SessionReadyMsg{}
		case <-a.ctx.Done():
			return nil
		}
	}
}

// View renders the app.
func (a *App) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if a.quitting {
		view.AltScreen = false
		view.MouseMode = 0
		view.Content = lipgloss.NewLayer("")
		return view
	}

	canvas := uv.NewScreenBuffer(a.width, a.height)
	a.Draw(canvas, canvas.Bounds())
	view.Content = lipgloss.NewLayer(canvas.Render())
	view.BackgroundColor = theme.HexToColor(theme.Current().BgCrust)
	return view
}

// Draw renders every component for the current screen.
func (a *App) Draw(scr uv.Screen, area uv.Rectangle) {
	if area.Dx() <= 0 || area.Dy() <= 0 {
		return
	}
	s := theme.Current().S()

	switch a.screen {
	case screenLoading:
		text := a.loading.View() + " " + s.Muted.Render("Checking session...")
		DrawText(scr, centered(area, lipgloss.Width(text), 1), text)
		return

	case screenAuth:
		a.header.Draw(scr, uv.Rect(area.Min.X, area.Min.Y, area.Dx(), HeaderHeight))
		a.auth.Draw(scr, area)
		a.footer.SetHints(HintAuth())
		a.footer.Draw(scr, uv.Rect(area.Min.X, area.Max.Y-FooterHeight, area.Dx(), FooterHeight))
		a.toast.Draw(scr, area)
		return
	}

	a.layout = CalculateLayout(area.Dx(), area.Dy(), !a.sidebarVisible, a.board.LateRows())
	l := a.layout

	a.header.Draw(scr, l.Header)
	a.header.DrawFilter(scr, l.Filter, a.board.Categories(), a.board.Filter())
	a.board.Draw(scr, l.Board, l.Late, !a.modalOpen(), a.drag)
	if !l.IsCompact() {
		a.sidebar.Draw(scr, l.Sidebar)
	}

	a.status.SetDragging("")
	if a.drag.State().Active() {
		if id, err := dragdrop.ParsePayload(a.drag.Payload()); err == nil {
			if t, ok := board.Find(a.board.tasks, id); ok {
				a.status.SetDragging(t.Title)
			}
		}
	}
	a.status.Draw(scr, l.Status)

	switch {
	case a.drag.State().Active():
		a.footer.SetHints(HintDragging())
	case a.input.IsVisible() || a.dialog.IsVisible():
		a.footer.SetHints(HintModal())
	case a.detail.IsVisible():
		a.footer.SetHints(HintDetail())
	default:
		a.footer.SetHints(HintBoard())
	}
	a.footer.Draw(scr, l.Footer)

	a.input.Draw(scr, area)
	a.detail.Draw(scr, area)
	a.dialog.Draw(scr, area)
	a.toast.Draw(scr, area)
}
