package q63

import (
	"time"

	"github.com/uglydojo/q63/internal/stores"
)

// MaxDay is the length of the challenge. Check-ins are accepted for days 1
// through MaxDay.
const MaxDay = 63

const (
	minPasswordLength = 8
	maxPasswordLength = 256
	maxNameLength     = 100
)

// Practices are the daily habits a check-in records, in display order.
var Practices = []string{
	"exercise",
	"breathing",
	"meditation",
	"sleep",
	"gratitude",
	"hydration",
	"nutrition",
}

// Account is the persisted credential and profile record.
type Account = stores.Account

// Progress maps a day number ("1".."63") to its recorded check-in.
type Progress = stores.Progress

// DayEntry is one recorded check-in.
type DayEntry = stores.DayEntry

// User is the public profile returned alongside a session token.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResult is returned by [Engine.Register] and [Engine.Login].
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionInfo is the resolved identity behind a bearer token.
type SessionInfo struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ProgressView is returned by [Engine.Progress]. StartDate is nil until the
// first day-1 check-in.
type ProgressView struct {
	StartDate *string   `json:"startDate"`
	Name      string    `json:"name"`
	Progress  *Progress `json:"progress"`
}

// DayResult echoes a recorded check-in.
type DayResult struct {
	Day       int             `json:"day"`
	Score     int             `json:"score"`
	Practices map[string]bool `json:"practices"`
}

// EmailExport is returned by [Engine.ExportEmails].
type EmailExport struct {
	Count  int      `json:"count"`
	Emails []string `json:"emails"`
}
