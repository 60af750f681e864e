package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"dooh/internal/models"
)

// memDB is an in-memory stand-in for the relational store. Writes are
// counted per table so tests can assert which rows an operation touched.
type memDB struct {
	mu        sync.Mutex
	users     map[string]*models.User
	profiles  map[string]*models.UserProfile // by user id
	screens   map[string]*models.Screen
	campaigns map[string]*models.Campaign
	creatives map[string]*models.Creative
	bookings  map[string]*models.Booking
	audit     []*models.AuthTransaction
	notes     []*models.Notification
	writes    map[string]int
	failOn    map[string]error
	seq       int
}

func newMemDB() *memDB {
	return &memDB{
		users:     map[string]*models.User{},
		profiles:  map[string]*models.UserProfile{},
		screens:   map[string]*models.Screen{},
		campaigns: map[string]*models.Campaign{},
		creatives: map[string]*models.Creative{},
		bookings:  map[string]*models.Booking{},
		writes:    map[string]int{},
		failOn:    map[string]error{},
	}
}

func (m *memDB) stamp(b *models.Base) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.seq++
	b.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.seq) * time.Second)
	b.UpdatedAt = b.CreatedAt
}

func (m *memDB) fail(op string) error {
	return m.failOn[op]
}

func (m *memDB) write(table string) {
	m.writes[table]++
}

// users

type memUsers struct{ *memDB }

func (s memUsers) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicate
		}
	}
	s.stamp(&u.Base)
	cp := *u
	s.users[u.ID] = &cp
	s.write("users")
	return nil
}

func (s memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

type memAudit struct{ *memDB }

func (s memAudit) Record(_ context.Context, tx *models.AuthTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&tx.Base)
	s.audit = append(s.audit, tx)
	return nil
}

func (s memAudit) Revoke(_ context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.audit {
		if tx.SessionID == sessionID {
			t := at
			tx.RevokedAt = &t
		}
	}
	return nil
}

// profiles

type memProfiles struct{ *memDB }

func (s memProfiles) GetByUserID(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("profiles.get"); err != nil {
		return nil, err
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s memProfiles) Create(_ context.Context, p *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("profiles.create"); err != nil {
		return err
	}
	if _, ok := s.profiles[p.UserID]; ok {
		return ErrDuplicate
	}
	s.stamp(&p.Base)
	cp := *p
	s.profiles[p.UserID] = &cp
	s.write("user_profiles")
	return nil
}

func (s memProfiles) UpdateRole(_ context.Context, userID string, role models.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	p.Role = role
	s.write("user_profiles")
	return nil
}

func (s memProfiles) Update(_ context.Context, p *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; !ok {
		return ErrNotFound
	}
	cp := *p
	s.profiles[p.UserID] = &cp
	s.write("user_profiles")
	return nil
}

// screens

type memScreens struct{ *memDB }

func (s memScreens) Create(_ context.Context, sc *models.Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&sc.Base)
	cp := *sc
	s.screens[sc.ID] = &cp
	s.write("screens")
	return nil
}

func (s memScreens) Get(_ context.Context, id string) (*models.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.screens[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *sc
	return &cp, nil
}

func (s memScreens) GetMany(_ context.Context, ids []string) ([]models.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Screen
	for _, id := range ids {
		if sc, ok := s.screens[id]; ok {
			out = append(out, *sc)
		}
	}
	return out, nil
}

func (s memScreens) sorted(keep func(*models.Screen) bool) []models.Screen {
	var out []models.Screen
	for _, sc := range s.screens {
		if keep(sc) {
			cp := *sc
			if p, ok := s.profiles[sc.OwnerID]; ok {
				owner := *p
				cp.Owner = &owner
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s memScreens) ListByOwner(_ context.Context, ownerID string) ([]models.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(sc *models.Screen) bool { return sc.OwnerID == ownerID }), nil
}

func (s memScreens) SearchActive(_ context.Context, f ScreenFilter) ([]models.Screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	term := strings.ToLower(f.Term)
	return s.sorted(func(sc *models.Screen) bool {
		if !sc.IsActive {
			return false
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(sc.Name), term) &&
			!strings.Contains(strings.ToLower(sc.Location), term) &&
			!strings.Contains(strings.ToLower(sc.Address), term) {
			return false
		}
		if f.ScreenType != "" && !strings.EqualFold(sc.ScreenType, f.ScreenType) {
			return false
		}
		if f.MaxHourlyRate > 0 && sc.HourlyRate > f.MaxHourlyRate {
			return false
		}
		if f.MinSizeInches > 0 && sc.SizeInches < f.MinSizeInches {
			return false
		}
		return true
	}), nil
}

func (s memScreens) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.screens[id]
	if !ok {
		return ErrNotFound
	}
	sc.IsActive = active
	s.write("screens")
	return nil
}

func (s memScreens) Update(_ context.Context, sc *models.Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.screens[sc.ID]; !ok {
		return ErrNotFound
	}
	cp := *sc
	s.screens[sc.ID] = &cp
	s.write("screens")
	return nil
}

// campaigns and creatives

type memCampaigns struct{ *memDB }

func (s memCampaigns) Create(_ context.Context, c *models.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("campaigns.create"); err != nil {
		return err
	}
	s.stamp(&c.Base)
	cp := *c
	s.campaigns[c.ID] = &cp
	s.write("campaigns")
	return nil
}

func (s memCampaigns) Get(_ context.Context, id string) (*models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s memCampaigns) ListByAdvertiser(_ context.Context, advertiserID string) ([]models.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Campaign
	for _, c := range s.campaigns {
		if c.AdvertiserID == advertiserID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s memCampaigns) AttachCreative(_ context.Context, campaignID, creativeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("campaigns.attach"); err != nil {
		return err
	}
	c, ok := s.campaigns[campaignID]
	if !ok {
		return ErrNotFound
	}
	id := creativeID
	c.CreativeID = &id
	s.write("campaigns")
	return nil
}

func (s memCampaigns) SetStatus(_ context.Context, id string, status models.CampaignStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	s.write("campaigns")
	return nil
}

type memCreatives struct{ *memDB }

func (s memCreatives) Create(_ context.Context, c *models.Creative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("creatives.create"); err != nil {
		return err
	}
	s.stamp(&c.Base)
	cp := *c
	s.creatives[c.ID] = &cp
	s.write("creatives")
	return nil
}

// bookings

type memBookings struct {
	*memDB
	lock *sync.Mutex
}

func newMemBookings(db *memDB) memBookings {
	return memBookings{memDB: db, lock: &sync.Mutex{}}
}

func (s memBookings) hydrate(b *models.Booking) models.Booking {
	cp := *b
	if c, ok := s.campaigns[b.CampaignID]; ok {
		cc := *c
		if c.CreativeID != nil {
			if cr, ok := s.creatives[*c.CreativeID]; ok {
				crc := *cr
				cc.Creative = &crc
			}
		}
		cp.Campaign = &cc
	}
	if sc, ok := s.screens[b.ScreenID]; ok {
		scc := *sc
		cp.Screen = &scc
	}
	return cp
}

func (s memBookings) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("bookings.create"); err != nil {
		return err
	}
	s.stamp(&b.Base)
	cp := *b
	s.bookings[b.ID] = &cp
	s.write("bookings")
	return nil
}

func (s memBookings) Get(_ context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	h := s.hydrate(b)
	return &h, nil
}

func (s memBookings) ApprovedOverlapping(_ context.Context, screenID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.ScreenID == screenID && b.ID != excludeID && b.Status == models.BookingStatusApproved &&
			b.StartDatetime.Before(end) && start.Before(b.EndDatetime) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s memBookings) UpdateStatusIf(_ context.Context, id string, from, to models.BookingStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	s.write("bookings")
	return true, nil
}

func (s memBookings) list(keep func(*models.Booking) bool) []models.Booking {
	var out []models.Booking
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, s.hydrate(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s memBookings) ListForAdvertiser(_ context.Context, advertiserID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(b *models.Booking) bool {
		c, ok := s.campaigns[b.CampaignID]
		return ok && c.AdvertiserID == advertiserID
	}), nil
}

func (s memBookings) ListForOwner(_ context.Context, ownerID string) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(func(b *models.Booking) bool {
		sc, ok := s.screens[b.ScreenID]
		return ok && sc.OwnerID == ownerID
	}), nil
}

func (s memBookings) ApprovedForOwnerSince(_ context.Context, ownerID string, since time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.list(func(b *models.Booking) bool {
		sc, ok := s.screens[b.ScreenID]
		return ok && sc.OwnerID == ownerID && b.Status == models.BookingStatusApproved && !b.EndDatetime.Before(since)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDatetime.Before(out[j].StartDatetime) })
	return out, nil
}

func (s memBookings) WithScreenLock(_ context.Context, screenID string, fn func(tx BookingStore) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.mu.Lock()
	_, ok := s.screens[screenID]
	s.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	return fn(s)
}

// collaborators

type mockStorage struct{ mock.Mock }

func (m *mockStorage) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type recordedEvent struct {
	topic string
	data  interface{}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *eventRecorder) Emit(topic string, data interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{topic, data})
}

func (r *eventRecorder) topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.topic)
	}
	return out
}

// fixtures

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func (m *memDB) addProfile(userID string, role models.UserRole) *models.UserProfile {
	p := &models.UserProfile{UserID: userID, Role: role, BusinessName: "Biz " + userID, ContactEmail: userID + "@example.com"}
	_ = memProfiles{m}.Create(context.Background(), p)
	return p
}

func (m *memDB) addScreen(ownerID, name string, rate float64) *models.Screen {
	sc := &models.Screen{OwnerID: ownerID, Name: name, Location: "Downtown", ScreenType: "billboard", HourlyRate: rate, Currency: "USD", IsActive: true}
	_ = memScreens{m}.Create(context.Background(), sc)
	return sc
}

func (m *memDB) addCampaign(advertiserID, name string) *models.Campaign {
	c := &models.Campaign{
		AdvertiserID: advertiserID,
		Name:         name,
		Budget:       1000,
		StartDate:    time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC),
		Status:       models.CampaignStatusActive,
	}
	_ = memCampaigns{m}.Create(context.Background(), c)
	return c
}

func (m *memDB) addBooking(campaignID, screenID string, start, end time.Time, status models.BookingStatus) *models.Booking {
	b := &models.Booking{CampaignID: campaignID, ScreenID: screenID, StartDatetime: start, EndDatetime: end, TotalCost: 100, Status: status}
	_ = memBookings{memDB: m}.Create(context.Background(), b)
	return b
}

func (m *memDB) resetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = map[string]int{}
}

func (m *memDB) writesTo(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[table]
}
