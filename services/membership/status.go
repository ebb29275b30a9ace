package membership

import "PlayFinder/models"

type Status string

const (
	StatusCreator      Status = "creator"
	StatusAccepted     Status = "accepted"
	StatusPending      Status = "pending"
	StatusRejected     Status = "rejected"
	StatusNotRequested Status = "not_requested"
)

// ComputeUserStatus tells where userID stands on the invite. Creator wins over
// participant, participant over any request, and among requests the most
// recently created one wins.
func ComputeUserStatus(invite models.GameInvite, requests []models.JoinRequest, userID string) Status {
	if userID == invite.CreatorID {
		return StatusCreator
	}
	if invite.HasParticipant(userID) {
		return StatusAccepted
	}

	var last *models.JoinRequest
	for i := range requests {
		r := &requests[i]
		if r.GameID != invite.ID || r.UserID != userID {
			continue
		}
		if last == nil || !r.CreatedAt.Before(last.CreatedAt) {
			last = r
		}
	}
	if last == nil {
		return StatusNotRequested
	}
	return Status(last.Status)
}
