package session

// Screen identifies which kiosk screen is active.
type Screen string

const (
	ScreenHome     Screen = "home"
	ScreenFormNew  Screen = "form_new"
	ScreenFormEdit Screen = "form_edit"
)

// State is the full per-session state: the active screen and the id carried
// from the home screen into a form. PendingID is empty whenever the screen
// is Home.
type State struct {
	Screen    Screen `json:"screen"`
	PendingID string `json:"pending_id"`
}

// Initial is the state of a fresh session.
func Initial() State {
	return State{Screen: ScreenHome}
}

// Event is a state-machine input. The write that motivated the event has
// already happened (or been skipped) by the time the event is applied;
// transitions themselves are pure.
type Event interface{ isEvent() }

// LookupMissed fires when a check-in finds no user for the submitted id.
type LookupMissed struct{ ID string }

// RectifyRequested fires when the user asks to edit their data, with
// whatever id (possibly none) they had typed on the home screen.
type RectifyRequested struct{ ID string }

// SubmitSucceeded fires after a registration or edit was persisted.
type SubmitSucceeded struct{}

// Cancelled fires when the user abandons a form without submitting.
type Cancelled struct{}

func (LookupMissed) isEvent()     {}
func (RectifyRequested) isEvent() {}
func (SubmitSucceeded) isEvent()  {}
func (Cancelled) isEvent()        {}

// Next applies one event. Events that make no sense for the current screen
// leave the state unchanged (a stale form submit after the session already
// reset, for example).
func Next(s State, e Event) State {
	switch e := e.(type) {
	case LookupMissed:
		if s.Screen == ScreenHome {
			return State{Screen: ScreenFormNew, PendingID: e.ID}
		}
	case RectifyRequested:
		if s.Screen == ScreenHome {
			return State{Screen: ScreenFormEdit, PendingID: e.ID}
		}
	case SubmitSucceeded, Cancelled:
		if s.Screen == ScreenFormNew || s.Screen == ScreenFormEdit {
			return Initial()
		}
	}
	return s
}
