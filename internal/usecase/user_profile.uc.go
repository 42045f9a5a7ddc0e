package usecase

import (
	"context"
	"errors"
	"log"

	"user-profile-service/internal/domain"
	"user-profile-service/internal/repository"
	"user-profile-service/pkg/id"
	"user-profile-service/pkg/xerrors"
)

// UserUsecase is the sole reader/writer of the profile store. Both the
// HTTP API and the Kafka ingestor go through it.
type UserUsecase struct {
	profileRepo repository.ProfileRepository
	sf          *id.Snowflake
}

func NewUserUsecase(profileRepo repository.ProfileRepository, sf *id.Snowflake) *UserUsecase {
	return &UserUsecase{
		profileRepo: profileRepo,
		sf:          sf,
	}
}

// GetCurrentProfile backs the authenticated /me endpoint.
func (uc *UserUsecase) GetCurrentProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}

	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			log.Printf("[WARN] User with ID %s not found", userID)
		}
		return nil, err
	}
	return profile, nil
}

// GetOrCreateProfile returns the existing profile for userID or persists
// a new one with the given fields and empty preferences. Safe to call
// repeatedly: creation is a conditional insert at the store layer.
func (uc *UserUsecase) GetOrCreateProfile(ctx context.Context, userID, email, username, firstName, lastName, role string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, xerrors.ErrUserIDRequired
	}

	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, xerrors.ErrUserNotFound) {
		return nil, err
	}

	log.Printf("[INFO] Creating new user profile for ID: %s", userID)
	newUser := &domain.UserProfile{
		ID:          uc.sf.Generate(),
		UserID:      userID,
		Email:       email,
		Username:    username,
		FirstName:   firstName,
		LastName:    lastName,
		Role:        role,
		Preferences: map[string]string{},
	}

	saved, created, err := uc.profileRepo.CreateIfAbsent(ctx, newUser)
	if err != nil {
		return nil, err
	}
	if !created {
		// Lost the race to a concurrent first sighting; the stored row wins.
		log.Printf("[INFO] Profile for %s created concurrently, returning stored row", userID)
	}
	return saved, nil
}

// GetUserByID is the non-throwing lookup: absence is (nil, nil), not an
// error.
func (uc *UserUsecase) GetUserByID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// SaveProfile is an unconditional upsert. The API handler stamps UserID
// from the authenticated subject before calling.
func (uc *UserUsecase) SaveProfile(ctx context.Context, p *domain.UserProfile) (*domain.UserProfile, error) {
	if p.UserID == "" {
		return nil, xerrors.ErrUserIDRequired
	}
	if p.ID == "" {
		// API writes carry no internal id; reuse the existing row for the
		// subject so the external-id uniqueness invariant holds.
		existing, err := uc.profileRepo.GetByUserID(ctx, p.UserID)
		switch {
		case err == nil:
			p.ID = existing.ID
		case errors.Is(err, xerrors.ErrUserNotFound):
			p.ID = uc.sf.Generate()
		default:
			return nil, err
		}
	}
	if p.Preferences == nil {
		p.Preferences = map[string]string{}
	}

	log.Printf("[INFO] Saving user: %s", p.UserID)
	return uc.profileRepo.Upsert(ctx, p)
}

// UpdateProfile overwrites the mutable fields of the profile for userID
// with values from newData. Preferences are replaced wholesale, not
// merged. Fails with ErrUserNotFound when no profile exists.
func (uc *UserUsecase) UpdateProfile(ctx context.Context, userID string, newData *domain.UserProfile) (*domain.UserProfile, error) {
	existing, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing.Email = newData.Email
	existing.Phone = newData.Phone
	existing.FirstName = newData.FirstName
	existing.LastName = newData.LastName
	existing.Username = newData.Username
	existing.Role = newData.Role
	existing.Preferences = newData.Preferences
	if existing.Preferences == nil {
		existing.Preferences = map[string]string{}
	}

	return uc.profileRepo.Upsert(ctx, existing)
}

// HandleUserEvent performs the create-only sync for an identity event.
// A profile that already exists is left untouched even when the event
// carries different field values; replayed deliveries are no-ops.
func (uc *UserUsecase) HandleUserEvent(ctx context.Context, evt *domain.UserEvent) error {
	if evt.UserID == "" {
		return xerrors.ErrUserIDRequired
	}

	profile := domain.NewProfileFromEvent(evt)
	profile.ID = uc.sf.Generate()

	saved, created, err := uc.profileRepo.CreateIfAbsent(ctx, profile)
	if err != nil {
		return err
	}
	if !created {
		log.Printf("[WARN] User already exists with ID: %s, discarding event", evt.UserID)
		return nil
	}

	log.Printf("[INFO] UserProfile created from event: user_id=%s id=%s", saved.UserID, saved.ID)
	return nil
}
