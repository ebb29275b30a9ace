package membership

import (
	game_constants "PlayFinder/constants/game"
	"PlayFinder/models"
	"fmt"
	"strings"
	"time"
)

// NewInvite builds an open invite with the creator as its only participant
func (e *Engine) NewInvite(creator models.UserRef, in models.InviteCreation) (models.GameInvite, error) {
	if creator.ID == "" {
		return models.GameInvite{}, ErrNotAuthorized
	}

	now := e.now()
	g := models.GameInvite{
		ID:               e.newID(),
		CreatorID:        creator.ID,
		CreatorName:      creator.Name,
		Title:            strings.TrimSpace(in.Title),
		GameType:         in.GameType,
		ClassMin:         in.ClassMin,
		ClassMax:         in.ClassMax,
		Location:         strings.TrimSpace(in.Location),
		City:             strings.TrimSpace(in.City),
		Neighborhood:     strings.TrimSpace(in.Neighborhood),
		CourtName:        strings.TrimSpace(in.CourtName),
		CourtAddress:     strings.TrimSpace(in.CourtAddress),
		Date:             in.Date,
		Time:             in.Time,
		TimeSlot:         in.TimeSlot,
		Description:      strings.TrimSpace(in.Description),
		Participants:     []string{creator.ID},
		ParticipantNames: map[string]string{creator.ID: creator.Name},
		Status:           models.INVITE_STATUS_OPEN,
		SchemaVersion:    game_constants.InviteSchemaVersion,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := e.validate(g, true); err != nil {
		return models.GameInvite{}, err
	}
	return g, nil
}

// EditInvite applies the creator's changes. Title and description can always
// change; schedule, place, game type and class range are locked once anybody
// besides the creator joined, so nobody's acceptance is invalidated.
func (e *Engine) EditInvite(invite models.GameInvite, actingUserID string, ch models.InviteChanges) (models.GameInvite, error) {
	if actingUserID != invite.CreatorID {
		return models.GameInvite{}, ErrNotAuthorized
	}
	if invite.Status == models.INVITE_STATUS_CANCELLED {
		return models.GameInvite{}, ErrInviteCancelled
	}
	if e.IsPast(invite) {
		return models.GameInvite{}, ErrGameExpired
	}

	next := invite
	setString(&next.Title, ch.Title)
	setString(&next.Description, ch.Description)
	setString(&next.GameType, ch.GameType)
	setInt(&next.ClassMin, ch.ClassMin)
	setInt(&next.ClassMax, ch.ClassMax)
	setString(&next.Location, ch.Location)
	setString(&next.City, ch.City)
	setString(&next.Neighborhood, ch.Neighborhood)
	setString(&next.CourtName, ch.CourtName)
	setString(&next.CourtAddress, ch.CourtAddress)
	setString(&next.Date, ch.Date)
	setString(&next.Time, ch.Time)
	setString(&next.TimeSlot, ch.TimeSlot)

	if len(invite.Participants) > 1 && lockedFieldsChanged(invite, next) {
		return models.GameInvite{}, ErrEditLocked
	}

	scheduleChanged := next.Date != invite.Date || next.Time != invite.Time || next.TimeSlot != invite.TimeSlot
	if err := e.validate(next, scheduleChanged); err != nil {
		return models.GameInvite{}, err
	}
	next.UpdatedAt = e.now()
	return next, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func lockedFieldsChanged(a, b models.GameInvite) bool {
	return a.GameType != b.GameType ||
		a.ClassMin != b.ClassMin || a.ClassMax != b.ClassMax ||
		a.Location != b.Location || a.City != b.City || a.Neighborhood != b.Neighborhood ||
		a.CourtName != b.CourtName || a.CourtAddress != b.CourtAddress ||
		a.Date != b.Date || a.Time != b.Time || a.TimeSlot != b.TimeSlot
}

// validate checks every invite field; checkFuture also rejects schedules in the past
func (e *Engine) validate(g models.GameInvite, checkFuture bool) error {
	errs := &fieldErrors{kind: ErrInvalidInvite}

	if g.Title == "" {
		errs.add("title: required")
	} else if runes(g.Title) > game_constants.MaxTitleLength {
		errs.add(fmt.Sprintf("title: at most %d characters", game_constants.MaxTitleLength))
	}

	if CapacityOf(g.GameType) == 0 {
		errs.add(fmt.Sprintf("game_type: must be %s or %s", game_constants.GAME_TYPE_SINGLES, game_constants.GAME_TYPE_DOUBLES))
	}

	if !validClass(g.ClassMin) || !validClass(g.ClassMax) {
		errs.add(fmt.Sprintf("class: must be between %d and %d", game_constants.MinClass, game_constants.MaxClass))
	} else if g.ClassMin > g.ClassMax {
		errs.add("class: class_min can't be greater than class_max")
	}

	if runes(g.Location) > game_constants.MaxPlaceLength {
		errs.add(fmt.Sprintf("location: at most %d characters", game_constants.MaxPlaceLength))
	}
	if g.Location == "" || g.City != "" || g.Neighborhood != "" {
		checkPlace(errs, "city", g.City, g.Location == "")
		checkPlace(errs, "neighborhood", g.Neighborhood, g.Location == "")
	}
	if runes(g.CourtName) > game_constants.MaxCourtNameLength {
		errs.add(fmt.Sprintf("court_name: at most %d characters", game_constants.MaxCourtNameLength))
	}
	if runes(g.CourtAddress) > game_constants.MaxCourtAddressLength {
		errs.add(fmt.Sprintf("court_address: at most %d characters", game_constants.MaxCourtAddressLength))
	}
	if runes(g.Description) > game_constants.MaxNotesLength {
		errs.add(fmt.Sprintf("description: at most %d characters", game_constants.MaxNotesLength))
	}

	scheduleOK := true
	if _, err := time.Parse(game_constants.DateLayout, g.Date); err != nil {
		errs.add("date: expected YYYY-MM-DD")
		scheduleOK = false
	}
	switch {
	case g.Time != "":
		if _, err := time.Parse(game_constants.TimeLayout, g.Time); err != nil {
			errs.add("time: expected HH:MM")
			scheduleOK = false
		}
	case g.TimeSlot != "":
		if _, ok := game_constants.TimeSlots[g.TimeSlot]; !ok {
			errs.add("time_slot: must be manha, tarde or noite")
			scheduleOK = false
		}
	default:
		errs.add("time: a time or a time_slot is required")
		scheduleOK = false
	}
	if checkFuture && scheduleOK && e.IsPast(g) {
		errs.add("date: the game can't be scheduled in the past")
	}

	return errs.err()
}

func checkPlace(errs *fieldErrors, field, value string, required bool) {
	n := runes(value)
	if n == 0 {
		if required {
			errs.add(field + ": required")
		}
		return
	}
	if n < game_constants.MinPlaceLength || n > game_constants.MaxPlaceLength {
		errs.add(fmt.Sprintf("%s: between %d and %d characters", field, game_constants.MinPlaceLength, game_constants.MaxPlaceLength))
	}
}

func validClass(c int) bool {
	return c >= game_constants.MinClass && c <= game_constants.MaxClass
}

func runes(s string) int {
	return len([]rune(s))
}
