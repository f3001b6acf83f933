package tui

import (
	"errors"
	"strings"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/session"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

// AuthMode selects between the login and register forms.
type AuthMode int

const (
	AuthLogin AuthMode = iota
	AuthRegister
)

// Field indexes into AuthForm.inputs.
const (
	fieldUsername = iota
	fieldPassword
	fieldName
	fieldEmail
)

// AuthSubmitMsg is emitted when the form is submitted with valid input.
type AuthSubmitMsg struct {
	Mode         AuthMode
	Credentials  api.Credentials
	Registration api.Registration
}

// AuthForm is the login and register screen.
type AuthForm struct {
	mode    AuthMode
	inputs  []textinput.Model
	focus   int
	err     string
	busy    bool
	spinner spinner.Model
}

// NewAuthForm creates the form in login mode.
func NewAuthForm() *AuthForm {
	f := &AuthForm{
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	labels := []string{"Username", "Password", "Name (optional)", "Email (optional)"}
	for i, l := range labels {
		ti := textinput.New()
		ti.Placeholder = l
		ti.Prompt = ""
		ti.CharLimit = 128
		ti.SetWidth(32)
		if i == fieldPassword {
			ti.EchoMode = textinput.EchoPassword
		}
		f.inputs = append(f.inputs, ti)
	}
	return f
}

// Mode returns the current mode.
func (f *AuthForm) Mode() AuthMode {
	return f.mode
}

// Focus focuses the first field.
func (f *AuthForm) Focus() tea.Cmd {
	f.focus = fieldUsername
	return f.focusCurrent()
}

// Reset clears all fields and errors.
func (f *AuthForm) Reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.err = ""
	f.busy = false
}

// SetBusy marks a submit in flight.
func (f *AuthForm) SetBusy(busy bool) tea.Cmd {
	f.busy = busy
	if busy {
		return f.spinner.Tick
	}
	return nil
}

// SetError shows the message carried by err. An AuthError's server
// message is shown as-is.
func (f *AuthForm) SetError(err error) {
	f.busy = false
	if err == nil {
		f.err = ""
		return
	}
	var ae *session.AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		f.err = ae.Message
		return
	}
	f.err = err.Error()
}

// Error returns the visible error message.
func (f *AuthForm) Error() string {
	return f.err
}

func (f *AuthForm) fieldCount() int {
	if f.mode == AuthRegister {
		return len(f.inputs)
	}
	return 2
}

func (f *AuthForm) focusCurrent() tea.Cmd {
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

// Update handles input for the form.
func (f *AuthForm) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); ok {
		if !f.busy {
			return nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return cmd
	}

	if key, ok := msg.(tea.KeyPressMsg); ok {
		if f.busy {
			return nil
		}
		switch key.String() {
		case "tab", "down":
			f.focus = (f.focus + 1) % f.fieldCount()
			return f.focusCurrent()
		case "shift+tab", "up":
			f.focus = (f.focus - 1 + f.fieldCount()) % f.fieldCount()
			return f.focusCurrent()
		case "ctrl+r":
			if f.mode == AuthLogin {
				f.mode = AuthRegister
			} else {
				f.mode = AuthLogin
				f.focus = min(f.focus, fieldPassword)
			}
			f.err = ""
			return f.focusCurrent()
		case "enter":
			return f.submit()
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *AuthForm) submit() tea.Cmd {
	username := strings.TrimSpace(f.inputs[fieldUsername].Value())
	password := f.inputs[fieldPassword].Value()
	if username == "" || password == "" {
		f.err = "Username and password are required"
		return nil
	}
	f.err = ""

	out := AuthSubmitMsg{Mode: f.mode}
	if f.mode == AuthLogin {
		out.Credentials = api.Credentials{Username: username, Password: password}
	} else {
		out.Registration = api.Registration{
			Username: username,
			Password: password,
			Name:     optional(f.inputs[fieldName].Value()),
			Email:    optional(f.inputs[fieldEmail].Value()),
		}
	}
	return func() tea.Msg { return out }
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Draw renders the form centered in area.
func (f *AuthForm) Draw(scr uv.Screen, area uv.Rectangle) {
	s := theme.Current().S()

	title := "Sign in"
	if f.mode == AuthRegister {
		title = "Create account"
	}

	rows := []string{s.ModalTitle.Render(title), ""}
	for i := 0; i < f.fieldCount(); i++ {
		label := s.Subtle
		if i == f.focus {
			label = s.PanelTitleFocused
		}
		rows = append(rows, label.Render(f.inputs[i].Placeholder), f.inputs[i].View(), "")
	}
	switch {
	case f.busy:
		rows = append(rows, f.spinner.View()+" "+s.Muted.Render("Working..."))
	case f.err != "":
		rows = append(rows, s.Error.Render(f.err))
	default:
		rows = append(rows, "")
	}

	box := s.ModalBorder.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	uv.NewStyledString(box).Draw(scr, centered(area, lipgloss.Width(box), lipgloss.Height(box)))
}
