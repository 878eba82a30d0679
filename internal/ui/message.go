package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/plctl/internal/playlist"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgModelChanged MsgKind = iota
	MsgIntentDone
)

type intentResult struct {
	op  string
	err error
}

// modelChangedMsg is the constructor for [MsgModelChanged]
func modelChangedMsg(sig playlist.Signal) Msg {
	return Msg{kind: MsgModelChanged, data: sig}
}

// intentDoneMsg is the constructor for [MsgIntentDone]
func intentDoneMsg(op string, err error) Msg {
	return Msg{kind: MsgIntentDone, data: intentResult{op, err}}
}
