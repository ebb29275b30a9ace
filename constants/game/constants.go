package game_constants

import "time"

// Game types and the number of players each one seats
const (
	GAME_TYPE_SINGLES = "simples"
	GAME_TYPE_DOUBLES = "duplas"

	CAPACITY_SINGLES = 2
	CAPACITY_DOUBLES = 4
)

// Skill classes go from 1 (best) to 6 (beginner)
const MinClass = 1
const MaxClass = 6

// Ratings
const MinStars = 1
const MaxStars = 5
const RecentRatingsLimit = 5

// Field limits
const (
	MaxTitleLength        = 100
	MaxNotesLength        = 500
	MaxCourtNameLength    = 200
	MaxCourtAddressLength = 300
	MinPlaceLength        = 2
	MaxPlaceLength        = 100
	MaxMessageLength      = 2000
	MaxCommentLength      = 500
	MaxRequestMsgLength   = 500
)

// Time slots an invite can be scheduled in when no exact time is given
const (
	TIME_SLOT_MORNING   = "manha"
	TIME_SLOT_AFTERNOON = "tarde"
	TIME_SLOT_NIGHT     = "noite"
)

// SlotWindow holds the "HH:MM" boundaries of a time slot
type SlotWindow struct {
	Start string
	End   string
}

var TimeSlots = map[string]SlotWindow{
	TIME_SLOT_MORNING:   {Start: "06:00", End: "12:00"},
	TIME_SLOT_AFTERNOON: {Start: "12:00", End: "18:00"},
	TIME_SLOT_NIGHT:     {Start: "18:00", End: "22:00"},
}

const DateLayout = "2006-01-02"
const TimeLayout = "15:04"

// Chat is refreshed by clients on this interval (no push transport)
const DefaultPollInterval = 3 * time.Second

// Notification inbox kept per user in redis
const InboxLimit = 50
const InboxTTL = 7 * 24 * time.Hour

// Schema version written on every invite. Version 0 records come from
// the sport/maxPlayers and desired_level lineages and are normalized on read.
const InviteSchemaVersion = 1

// Bounded retries for compare-and-swap updates in the stores
const MaxUpdateRetries = 5

// Weekdays a player can mark as available
var Weekdays = []string{"seg", "ter", "qua", "qui", "sex", "sab", "dom"}
