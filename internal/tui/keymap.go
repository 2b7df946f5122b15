package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Submit uploads the typed path or sends the typed query.
	Submit key.Binding

	// Back leaves the chat, or dismisses an alert.
	Back key.Binding

	// NewSession closes the document and returns to the upload screen.
	NewSession key.Binding

	// NextTask cycles through the task types.
	NextTask key.Binding

	// Health refreshes the service status.
	Health key.Binding

	// Quick sends one of the quick replies.
	Quick key.Binding

	// ScrollUp and ScrollDown move the chat history.
	ScrollUp   key.Binding
	ScrollDown key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new document"),
		),
		NextTask: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "task"),
		),
		Health: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh status"),
		),
		Quick: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4"),
			key.WithHelp("alt+1..4", "quick reply"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "scroll down"),
		),
	}
}

// UploadHelp returns the bindings shown on the upload screen.
func (k *KeyMap) UploadHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Health, k.Quit}
}

// ChatHelp returns the bindings shown in the chat.
func (k *KeyMap) ChatHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextTask, k.Quick, k.Back, k.NewSession, k.Quit}
}
