package users

import (
	"PlayFinder/models"
	"PlayFinder/services/store"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

const defaultTravelRadius = 10

// Service owns accounts and player profiles
type Service struct {
	accounts store.Collection[models.Account]
	profiles store.Collection[models.PlayerProfile]
	log      logrus.FieldLogger
	Now      func() time.Time
}

func NewService(stores *store.Set, log logrus.FieldLogger) *Service {
	return &Service{accounts: stores.Accounts, profiles: stores.Profiles, log: log, Now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) byEmail(ctx context.Context, email string) (models.Account, bool, error) {
	found, err := store.QueryBy(ctx, s.accounts, "email", email, func(a models.Account) bool { return a.Email == email })
	if err != nil || len(found) == 0 {
		return models.Account{}, false, err
	}
	return found[0], true, nil
}

// SignUp registers an email/password account and its empty profile
func (s *Service) SignUp(ctx context.Context, form models.SignUpForm) (models.Account, error) {
	email := normalizeEmail(form.Email)
	if _, taken, err := s.byEmail(ctx, email); err != nil {
		return models.Account{}, err
	} else if taken {
		return models.Account{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, err
	}

	acc, err := s.accounts.Create(ctx, models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(form.Name),
		PasswordHash: string(hash),
		CreatedAt:    s.Now(),
	})
	if errors.Is(err, store.ErrDuplicate) {
		return models.Account{}, ErrEmailTaken
	}
	if err != nil {
		return models.Account{}, err
	}

	if _, err := s.profiles.Create(ctx, models.PlayerProfile{
		ID:              acc.ID,
		Name:            acc.Name,
		MaxTravelRadius: defaultTravelRadius,
		CreatedAt:       acc.CreatedAt,
		UpdatedAt:       acc.CreatedAt,
	}); err != nil && !errors.Is(err, store.ErrDuplicate) {
		return acc, err
	}

	s.log.WithField("user_id", acc.ID).Info("account created")
	return acc, nil
}

// Authenticate checks the password. Unknown emails and wrong passwords look the same.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.Account, error) {
	acc, ok, err := s.byEmail(ctx, normalizeEmail(email))
	if err != nil {
		return models.Account{}, err
	}
	if !ok {
		return models.Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}
	return acc, nil
}

func (s *Service) Account(ctx context.Context, id string) (models.Account, error) {
	acc, err := s.accounts.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return acc, ErrUserNotFound
	}
	return acc, err
}

// Profile returns the player's profile. Users without a stored profile but with
// an account get a bare one built from the account.
func (s *Service) Profile(ctx context.Context, id string) (models.PlayerProfile, error) {
	p, err := s.profiles.Get(ctx, id)
	if err == nil || !errors.Is(err, store.ErrNotFound) {
		return p, err
	}
	acc, err := s.Account(ctx, id)
	if err != nil {
		return models.PlayerProfile{}, err
	}
	return models.PlayerProfile{ID: acc.ID, Name: acc.Name, CreatedAt: acc.CreatedAt}, nil
}

// SaveProfile creates or replaces the user's profile
func (s *Service) SaveProfile(ctx context.Context, user models.UserRef, in models.ProfileUpdate) (models.PlayerProfile, error) {
	availability, err := json.Marshal(in.Availability)
	if err != nil {
		return models.PlayerProfile{}, err
	}
	if in.MaxTravelRadius == 0 {
		in.MaxTravelRadius = defaultTravelRadius
	}

	now := s.Now()
	apply := func(p models.PlayerProfile) (models.PlayerProfile, error) {
		p.Name = strings.TrimSpace(in.Name)
		p.City = strings.TrimSpace(in.City)
		p.Neighborhood = strings.TrimSpace(in.Neighborhood)
		p.Class = in.Class
		p.DominantHand = in.DominantHand
		p.Frequency = in.Frequency
		p.YearsPlaying = in.YearsPlaying
		p.MaxTravelRadius = in.MaxTravelRadius
		p.Availability = datatypes.JSON(availability)
		p.UpdatedAt = now
		return p, nil
	}

	p, err := s.profiles.Update(ctx, user.ID, apply)
	if errors.Is(err, store.ErrNotFound) {
		fresh, _ := apply(models.PlayerProfile{ID: user.ID, CreatedAt: now})
		p, err = s.profiles.Create(ctx, fresh)
		if errors.Is(err, store.ErrDuplicate) {
			p, err = s.profiles.Update(ctx, user.ID, apply)
		}
	}
	if err != nil {
		return models.PlayerProfile{}, err
	}
	s.log.WithField("user_id", user.ID).Info("profile saved")
	return p, nil
}

// AvailabilityOf decodes the stored availability column
func AvailabilityOf(p models.PlayerProfile) ([]models.Availability, error) {
	var out []models.Availability
	if len(p.Availability) == 0 {
		return out, nil
	}
	err := json.Unmarshal(p.Availability, &out)
	return out, err
}
