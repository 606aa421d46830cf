package kiosk

import "time"

// Clock supplies the current time. The kiosk stamps visits with the gym's
// local wall clock, not the server's, so the zone is fixed at construction;
// tests inject a frozen clock.
type Clock interface {
	Now() time.Time
}

// ZoneClock reads the system clock in a fixed location.
type ZoneClock struct {
	loc *time.Location
}

// NewZoneClock loads the named IANA zone.
func NewZoneClock(zone string) (*ZoneClock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return &ZoneClock{loc: loc}, nil
}

func (c *ZoneClock) Now() time.Time { return time.Now().In(c.loc) }

// FixedClock always returns the same instant.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }
