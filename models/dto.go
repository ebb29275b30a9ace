package models

// InviteCreation to create a new game invite
type InviteCreation struct {
	Title        string `json:"title" binding:"required,max=100"`
	GameType     string `json:"game_type" binding:"required,oneof=simples duplas"`
	ClassMin     int    `json:"class_min" binding:"required,min=1,max=6"`
	ClassMax     int    `json:"class_max" binding:"required,min=1,max=6,gtefield=ClassMin"`
	Location     string `json:"location" binding:"max=100"`
	City         string `json:"city" binding:"omitempty,min=2,max=100"`
	Neighborhood string `json:"neighborhood" binding:"omitempty,min=2,max=100"`
	CourtName    string `json:"court_name" binding:"max=200"`
	CourtAddress string `json:"court_address" binding:"max=300"`
	Date         string `json:"date" binding:"required,datetime=2006-01-02"`
	Time         string `json:"time" binding:"omitempty,datetime=15:04"`
	TimeSlot     string `json:"time_slot" binding:"omitempty,timeslot"`
	Description  string `json:"description" binding:"max=500"`
}

// InviteChanges to edit an invite; nil fields stay as they are
type InviteChanges struct {
	Title        *string `json:"title" binding:"omitempty,max=100"`
	Description  *string `json:"description" binding:"omitempty,max=500"`
	GameType     *string `json:"game_type" binding:"omitempty,oneof=simples duplas"`
	ClassMin     *int    `json:"class_min" binding:"omitempty,min=1,max=6"`
	ClassMax     *int    `json:"class_max" binding:"omitempty,min=1,max=6"`
	Location     *string `json:"location" binding:"omitempty,max=100"`
	City         *string `json:"city" binding:"omitempty,min=2,max=100"`
	Neighborhood *string `json:"neighborhood" binding:"omitempty,min=2,max=100"`
	CourtName    *string `json:"court_name" binding:"omitempty,max=200"`
	CourtAddress *string `json:"court_address" binding:"omitempty,max=300"`
	Date         *string `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time         *string `json:"time" binding:"omitempty,datetime=15:04"`
	TimeSlot     *string `json:"time_slot" binding:"omitempty,timeslot"`
}

// JoinRequestCreation is the optional note sent with a join request
type JoinRequestCreation struct {
	Message string `json:"message" binding:"max=500"`
}

type MessageCreation struct {
	Content string `json:"content" binding:"required,max=2000"`
}

type RatingCreation struct {
	RatedUserID string `json:"rated_user_id" binding:"required"`
	Stars       int    `json:"stars" binding:"required,min=1,max=5"`
	Comment     string `json:"comment" binding:"max=500"`
}

type SignUpForm struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginForm struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IdentifyForm creates a name-only user kept in the session cookie
type IdentifyForm struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

type ProfileUpdate struct {
	Name            string         `json:"name" binding:"required,min=2,max=100"`
	City            string         `json:"city" binding:"required,min=2,max=100"`
	Neighborhood    string         `json:"neighborhood" binding:"required,min=2,max=100"`
	Class           int            `json:"class" binding:"required,min=1,max=6"`
	DominantHand    string         `json:"dominant_hand" binding:"required,oneof=direita esquerda ambas"`
	Frequency       string         `json:"frequency" binding:"required,oneof=iniciante casual regular competitivo"`
	YearsPlaying    *int           `json:"years_playing" binding:"omitempty,min=0,max=100"`
	MaxTravelRadius int            `json:"max_travel_radius" binding:"omitempty,min=1,max=100"`
	Availability    []Availability `json:"availability" binding:"omitempty,dive"`
}

// InviteFilter are the query parameters of the invite listing
type InviteFilter struct {
	Class    int    `form:"class" binding:"omitempty,min=1,max=6"`
	GameType string `form:"game_type" binding:"omitempty,oneof=simples duplas"`
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	TimeSlot string `form:"time_slot" binding:"omitempty,timeslot"`
	City     string `form:"city" binding:"max=100"`
}
