package dto

import "time"

type Id struct {
	Id int `json:"id"`
}

// Contact is a contact as submitted for creation; blank fields get defaults.
type Contact struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Sector string `json:"sector"`
}

type ContactBatch struct {
	Contacts []Contact `json:"contacts"`
}

type Error struct {
	Error string `json:"error"`
}

type Message struct {
	Message string `json:"message"`
}

type Broadcast struct {
	Text       string     `json:"text" validate:"required"`
	ContactIds []int      `json:"contactIds"`
	Sectors    []string   `json:"sectors"`
	ScheduleAt *time.Time `json:"scheduleAt,omitempty"`
}

type BroadcastReceipt struct {
	Id         string     `json:"id"`
	Recipients int        `json:"recipients"`
	ScheduleAt *time.Time `json:"scheduleAt,omitempty"`
}
