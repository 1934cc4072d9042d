package model

import "time"

// Broadcast is one message handed off for delivery to a set of phones.
type Broadcast struct {
	Id         string
	Text       string
	Phones     []string
	ScheduleAt time.Time
	CreatedAt  time.Time
}

// Due reports whether the broadcast may be delivered at now.
func (b Broadcast) Due(now time.Time) bool {
	return b.ScheduleAt.IsZero() || !b.ScheduleAt.After(now)
}
