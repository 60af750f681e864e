package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"dooh/internal/models"
)

type ScreenListing struct {
	models.Screen
	OwnerBusinessName string `json:"ownerBusinessName"`
}

// BookingIntent is the validated outcome of a discovery selection.
type BookingIntent struct {
	Screens        []models.Screen `json:"screens"`
	CombinedHourly float64         `json:"combinedHourlyRate"`
}

type DiscoveryService struct {
	screens ScreenStore
}

func NewDiscoveryService(screens ScreenStore) *DiscoveryService {
	return &DiscoveryService{screens: screens}
}

// Search lists active screens newest first. The term matches name, location
// or address case-insensitively.
func (s *DiscoveryService) Search(ctx context.Context, filter ScreenFilter) ([]ScreenListing, error) {
	filter.Term = strings.TrimSpace(filter.Term)
	if filter.MaxHourlyRate < 0 || filter.MinSizeInches < 0 {
		return nil, validationError("filters cannot be negative")
	}
	screens, err := s.screens.SearchActive(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search screens: %w", err)
	}
	listings := make([]ScreenListing, 0, len(screens))
	for _, screen := range screens {
		l := ScreenListing{Screen: screen}
		if screen.Owner != nil {
			l.OwnerBusinessName = screen.Owner.BusinessName
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// Intent turns a selection into a booking intent. Every selected screen must
// exist and be active.
func (s *DiscoveryService) Intent(ctx context.Context, screenIDs []string) (*BookingIntent, error) {
	sel := NewSelection(screenIDs...)
	if sel.Len() == 0 {
		return nil, validationError("no screens selected")
	}
	screens, err := s.screens.GetMany(ctx, sel.IDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load screens: %w", err)
	}
	found := make(map[string]models.Screen, len(screens))
	for _, sc := range screens {
		found[sc.ID] = sc
	}

	intent := &BookingIntent{Screens: make([]models.Screen, 0, sel.Len())}
	for _, id := range sel.IDs() {
		sc, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("screen %s: %w", id, ErrNotFound)
		}
		if !sc.IsActive {
			return nil, validationError("screen %q is not available", sc.Name)
		}
		intent.Screens = append(intent.Screens, sc)
		intent.CombinedHourly += sc.HourlyRate
	}
	return intent, nil
}

// Selection is a set of screen ids picked during discovery.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection(ids ...string) *Selection {
	s := &Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// Toggle adds id when absent and removes it when present. It reports whether
// id is selected afterwards.
func (s *Selection) Toggle(id string) bool {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// IDs returns the selection sorted.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Selection) Len() int {
	return len(s.ids)
}
