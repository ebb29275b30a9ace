package membership

import (
	game_constants "PlayFinder/constants/game"
	"PlayFinder/models"
	"fmt"
	"time"
)

// Window returns when the game starts and the moment it counts as played.
// An exact time starts and ends at the same instant, a time slot ends with the slot.
func (e *Engine) Window(g models.GameInvite) (start, end time.Time, err error) {
	day, err := time.ParseInLocation(game_constants.DateLayout, g.Date, e.location())
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("bad date %q: %w", g.Date, err)
	}

	if g.Time != "" {
		start, err = atClock(day, g.Time)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, start, nil
	}

	slot, ok := game_constants.TimeSlots[g.TimeSlot]
	if !ok {
		// No time at all: the whole day is open
		return day, day.AddDate(0, 0, 1), nil
	}
	if start, err = atClock(day, slot.Start); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = atClock(day, slot.End); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(game_constants.TimeLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// IsPast is true once the game's date/time has gone by. Unparseable
// schedules count as past so they never show up as available.
func (e *Engine) IsPast(g models.GameInvite) bool {
	_, end, err := e.Window(g)
	if err != nil {
		return true
	}
	return !e.now().Before(end)
}

// scheduleKey orders invites by (date, time); slots order by their start
func scheduleKey(g models.GameInvite) string {
	clock := g.Time
	if clock == "" {
		if slot, ok := game_constants.TimeSlots[g.TimeSlot]; ok {
			clock = slot.Start
		} else {
			clock = "00:00"
		}
	}
	return g.Date + " " + clock
}
