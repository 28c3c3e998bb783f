package task

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/studify/backend/core"
)

// XPPerFocusMinute converts completed focus time into reward XP; the coin
// gain defaults to the XP gain (1:1).
const XPPerFocusMinute = 10

// Task is a study task a user can run focus sessions against.
type Task struct {
	ID      int64  `json:"id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Minutes int    `json:"minutes"` // planned focus length
	Coins   int    `json:"coins"`   // displayed reward hint
	Done    bool   `json:"done"`

	// focus statistics
	TotalFocusMinutes int `json:"total_focus_minutes"`
	LastFocusMinutes  int `json:"last_focus_minutes"`
	FocusSessions     int `json:"focus_sessions"`
}

// Session is one completed focus session's record: when, how long, and the
// user's notes with an optional photo.
type Session struct {
	ID        int64       `json:"id"`
	TaskID    int64       `json:"task_id"`
	Timestamp time.Time   `json:"timestamp"` // UTC
	Minutes   int         `json:"minutes"`
	Notes     string      `json:"notes"`
	PhotoPath null.String `json:"photo_path"`
}

// NewTask contains information needed to create a Task.
type NewTask struct {
	Title   string `json:"title" validate:"required"`
	Minutes int    `json:"minutes" validate:"required,gt=0"`
	Coins   int    `json:"coins" validate:"omitempty,gte=0"`
}

func (nt *NewTask) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	if err := validate.Struct(nt); err != nil {
		return err
	}
	if nt.Coins == 0 {
		nt.Coins = nt.Minutes * XPPerFocusMinute
	}
	return nil
}

// UpdateTask defines what may be modified on an existing Task.
type UpdateTask struct {
	Title   string `json:"title"`
	Minutes *int   `json:"minutes" validate:"omitempty,gt=0"`
	Done    *bool  `json:"done"`
}

func (ut *UpdateTask) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	return validate.Struct(ut)
}

// FocusResult reports a finished focus session from the timer.
type FocusResult struct {
	Minutes   int    `json:"minutes" validate:"gte=0"`
	Notes     string `json:"notes"`
	PhotoPath string `json:"photo_path"`
}

func (fr *FocusResult) Validate(validate *validator.Validate) error {
	fr.Notes = core.CleanString(fr.Notes)
	return validate.Struct(fr)
}
