package services

import (
	"context"
	"fmt"
	"strings"

	"dooh/internal/models"
	"dooh/internal/utils/logger"
)

type ScreenInput struct {
	Name       string
	Location   string
	Address    string
	ScreenType string
	SizeInches float64
	Resolution string
	HourlyRate float64
	Currency   string
}

func (in ScreenInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return validationError("screen name is required")
	case strings.TrimSpace(in.Location) == "":
		return validationError("location is required")
	case strings.TrimSpace(in.ScreenType) == "":
		return validationError("screen type is required")
	case in.HourlyRate <= 0:
		return validationError("hourly rate must be greater than zero")
	case in.SizeInches < 0:
		return validationError("size cannot be negative")
	}
	return nil
}

func (in ScreenInput) apply(screen *models.Screen) {
	screen.Name = strings.TrimSpace(in.Name)
	screen.Location = strings.TrimSpace(in.Location)
	screen.Address = strings.TrimSpace(in.Address)
	screen.ScreenType = strings.TrimSpace(in.ScreenType)
	screen.SizeInches = in.SizeInches
	screen.Resolution = strings.TrimSpace(in.Resolution)
	screen.HourlyRate = in.HourlyRate
	screen.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if screen.Currency == "" {
		screen.Currency = "USD"
	}
}

type ScreenService struct {
	screens ScreenStore
	log     *logger.Logger
}

func NewScreenService(screens ScreenStore) *ScreenService {
	return &ScreenService{screens: screens, log: logger.New("SCREENS")}
}

func (s *ScreenService) CreateScreen(ctx context.Context, ownerID string, in ScreenInput) (*models.Screen, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	screen := &models.Screen{OwnerID: ownerID, IsActive: true}
	in.apply(screen)
	if err := s.screens.Create(ctx, screen); err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	s.log.Info("Listed screen %s for %s", screen.ID, ownerID)
	return screen, nil
}

func (s *ScreenService) ListOwnScreens(ctx context.Context, ownerID string) ([]models.Screen, error) {
	screens, err := s.screens.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list screens: %w", err)
	}
	if screens == nil {
		screens = []models.Screen{}
	}
	return screens, nil
}

// SetScreenActive flips only is_active. Bookings referencing the screen are
// left as they are.
func (s *ScreenService) SetScreenActive(ctx context.Context, actorID, id string, active bool) (*models.Screen, error) {
	screen, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.screens.SetActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("failed to update screen: %w", err)
	}
	screen.IsActive = active
	return screen, nil
}

func (s *ScreenService) UpdateScreen(ctx context.Context, actorID, id string, in ScreenInput) (*models.Screen, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	screen, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	in.apply(screen)
	if err := s.screens.Update(ctx, screen); err != nil {
		return nil, fmt.Errorf("failed to update screen: %w", err)
	}
	return screen, nil
}

func (s *ScreenService) owned(ctx context.Context, actorID, id string) (*models.Screen, error) {
	screen, err := s.screens.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if screen.OwnerID != actorID {
		return nil, ErrForbidden
	}
	return screen, nil
}
