package session

import "testing"

func TestNext(t *testing.T) {
	tests := []struct {
		name  string
		state State
		event Event
		want  State
	}{
		{
			name:  "checkin miss opens new-user form with pending id",
			state: Initial(),
			event: LookupMissed{ID: "0000000000"},
			want:  State{Screen: ScreenFormNew, PendingID: "0000000000"},
		},
		{
			name:  "rectify with typed id opens edit form",
			state: Initial(),
			event: RectifyRequested{ID: "1712345678"},
			want:  State{Screen: ScreenFormEdit, PendingID: "1712345678"},
		},
		{
			name:  "rectify without id opens edit form with empty pending",
			state: Initial(),
			event: RectifyRequested{},
			want:  State{Screen: ScreenFormEdit},
		},
		{
			name:  "successful submit returns home and clears pending",
			state: State{Screen: ScreenFormNew, PendingID: "123"},
			event: SubmitSucceeded{},
			want:  Initial(),
		},
		{
			name:  "cancel from edit returns home and clears pending",
			state: State{Screen: ScreenFormEdit, PendingID: "123"},
			event: Cancelled{},
			want:  Initial(),
		},
		{
			name:  "lookup miss while a form is open is ignored",
			state: State{Screen: ScreenFormEdit, PendingID: "123"},
			event: LookupMissed{ID: "999"},
			want:  State{Screen: ScreenFormEdit, PendingID: "123"},
		},
		{
			name:  "rectify while a form is open is ignored",
			state: State{Screen: ScreenFormNew, PendingID: "123"},
			event: RectifyRequested{ID: "999"},
			want:  State{Screen: ScreenFormNew, PendingID: "123"},
		},
		{
			name:  "stale submit at home is ignored",
			state: Initial(),
			event: SubmitSucceeded{},
			want:  Initial(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.state, tt.event)
			if got != tt.want {
				t.Errorf("Next(%+v, %+v) = %+v, want %+v", tt.state, tt.event, got, tt.want)
			}
		})
	}
}

func TestInitial(t *testing.T) {
	s := Initial()
	if s.Screen != ScreenHome || s.PendingID != "" {
		t.Errorf("Initial() = %+v, want home with empty pending id", s)
	}
}
