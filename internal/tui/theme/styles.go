package theme

import "charm.land/lipgloss/v2"

// Styles contains all pre-built lipgloss styles for the TUI.
type Styles struct {
	HeaderTitle lipgloss.Style
	HeaderUser  lipgloss.Style

	PanelTitle        lipgloss.Style
	PanelTitleFocused lipgloss.Style
	PanelRule         lipgloss.Style
	PanelRuleFocused  lipgloss.Style

	Card           lipgloss.Style
	CardSelected   lipgloss.Style
	CardDragging   lipgloss.Style
	LaneDropTarget lipgloss.Style

	Muted   lipgloss.Style
	Subtle  lipgloss.Style
	Overdue lipgloss.Style
	Error   lipgloss.Style

	StatusBar lipgloss.Style
	HintKey   lipgloss.Style
	HintDesc  lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastFailure lipgloss.Style

	ModalBorder   lipgloss.Style
	ModalTitle    lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
}
