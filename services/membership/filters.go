package membership

import (
	game_constants "PlayFinder/constants/game"
	"PlayFinder/models"
	"sort"
	"strings"
)

// Filter narrows the list of available invites. Zero fields match everything.
type Filter struct {
	Class    int
	GameType string
	Date     string
	TimeSlot string
	City     string
}

// MatchesClass is true when level falls inside the invite's accepted range
func MatchesClass(g models.GameInvite, level int) bool {
	return g.ClassMin <= level && level <= g.ClassMax
}

func (f Filter) Matches(g models.GameInvite) bool {
	if f.Class != 0 && !MatchesClass(g, f.Class) {
		return false
	}
	if f.GameType != "" && g.GameType != f.GameType {
		return false
	}
	if f.Date != "" && g.Date != f.Date {
		return false
	}
	if f.City != "" && !strings.EqualFold(strings.TrimSpace(g.City), strings.TrimSpace(f.City)) {
		return false
	}
	if f.TimeSlot != "" && !inSlot(g, f.TimeSlot) {
		return false
	}
	return true
}

func inSlot(g models.GameInvite, slot string) bool {
	if g.Time == "" {
		return g.TimeSlot == slot
	}
	w, ok := game_constants.TimeSlots[slot]
	if !ok {
		return false
	}
	// "HH:MM" strings compare in clock order
	return g.Time >= w.Start && g.Time < w.End
}

// IsAvailable: open, still in the future and with a free place
func (e *Engine) IsAvailable(g models.GameInvite) bool {
	return g.Status == models.INVITE_STATUS_OPEN && !IsFull(g) && !e.IsPast(g)
}

// FilterAvailable keeps the available invites matching f, nearest game first
func (e *Engine) FilterAvailable(invites []models.GameInvite, f Filter) []models.GameInvite {
	out := make([]models.GameInvite, 0, len(invites))
	for _, g := range invites {
		if e.IsAvailable(g) && f.Matches(g) {
			out = append(out, g)
		}
	}
	return SortBySchedule(out)
}

// SortBySchedule returns a copy sorted ascending by (date, time)
func SortBySchedule(invites []models.GameInvite) []models.GameInvite {
	out := make([]models.GameInvite, len(invites))
	copy(out, invites)
	sort.SliceStable(out, func(i, j int) bool {
		return scheduleKey(out[i]) < scheduleKey(out[j])
	})
	return out
}
