package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dooh/internal/models"
	"dooh/internal/session"
	"dooh/internal/utils"
	"dooh/internal/utils/logger"
)

const profileNotice = "We couldn't load your profile. No role-specific features are available for this session."

type SignUpInput struct {
	Email        string
	Password     string
	Role         models.UserRole
	BusinessName string
}

// ClientInfo is recorded on the auth audit row.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

type SignInResult struct {
	Token   string
	Session *session.Session
}

// ProfileUpdate carries the user-editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Role         *models.UserRole
	BusinessName *string
	ContactEmail *string
	Phone        *string
	Website      *string
	Description  *string
}

type AuthService struct {
	users    UserStore
	audit    AuthAuditStore
	profiles ProfileStore
	resolver *ProfileResolver
	sessions session.Store
	secret   string
	ttl      time.Duration
	log      *logger.Logger
	now      func() time.Time
}

func NewAuthService(users UserStore, audit AuthAuditStore, profiles ProfileStore, resolver *ProfileResolver, sessions session.Store, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		users:    users,
		audit:    audit,
		profiles: profiles,
		resolver: resolver,
		sessions: sessions,
		secret:   secret,
		ttl:      ttl,
		log:      logger.New("AUTH"),
		now:      time.Now,
	}
}

// SignUp registers an identity with its signup metadata. The profile is not
// created here; it appears on the first session resolution.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || len(in.Password) < 6 {
		return nil, validationError("email and a password of at least 6 characters are required")
	}
	if in.Role == "" {
		return nil, validationError("please select a role")
	}
	if in.Role != models.UserRoleAdvertiser && in.Role != models.UserRoleScreenOwner {
		return nil, validationError("role must be advertiser or screen_owner")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	metadata, err := models.SignupMetadata{Role: in.Role, BusinessName: strings.TrimSpace(in.BusinessName)}.JSON()
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Password: hash, Metadata: metadata}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Success("Signed up %s as %s", email, in.Role)
	return user, nil
}

// SignIn verifies credentials and establishes a session. Profile resolution
// failures do not fail sign-in; the session carries no profile and a notice.
func (s *AuthService) SignIn(ctx context.Context, email, password string, client ClientInfo) (*SignInResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	id, err := utils.GenerateRandomString(32)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := &session.Session{
		ID:        id,
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.attachProfile(ctx, sess, user)

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	if err := s.audit.Record(ctx, &models.AuthTransaction{
		UserID:    user.ID,
		SessionID: sess.ID,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		ExpiresAt: sess.ExpiresAt,
	}); err != nil {
		s.log.Warn("Failed to record auth transaction for %s: %v", user.ID, err)
	}

	token, err := utils.GenerateJWT(s.secret, sess.ID, user.ID, user.Email, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &SignInResult{Token: token, Session: sess}, nil
}

// Authenticate maps an access token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	claims, err := utils.ParseJWT(s.secret, token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.UserID != claims.Subject || sess.Expired(s.now()) {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

func (s *AuthService) SignOut(ctx context.Context, sess *session.Session) error {
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := s.audit.Revoke(ctx, sess.ID, s.now()); err != nil {
		s.log.Warn("Failed to stamp revocation for session %s: %v", sess.ID, err)
	}
	return nil
}

// ResolveSession re-runs profile resolution for an existing session and
// stores the refreshed snapshot.
func (s *AuthService) ResolveSession(ctx context.Context, sess *session.Session) (*session.Session, error) {
	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	next := *sess
	s.attachProfile(ctx, &next, user)
	if err := s.sessions.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return &next, nil
}

// UpdateProfile applies user edits, including the role switcher. Signup
// metadata is not consulted here.
func (s *AuthService) UpdateProfile(ctx context.Context, sess *session.Session, in ProfileUpdate) (*session.Session, error) {
	if sess.Profile == nil {
		return nil, ErrNoProfile
	}
	profile, err := s.profiles.GetByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if in.Role != nil {
		if !models.IsValidUserRole(*in.Role) {
			return nil, validationError("unknown role %q", *in.Role)
		}
		if *in.Role == models.UserRoleAdmin && profile.Role != models.UserRoleAdmin {
			return nil, ErrForbidden
		}
		profile.Role = *in.Role
	}
	if in.BusinessName != nil {
		name := strings.TrimSpace(*in.BusinessName)
		if name == "" {
			return nil, validationError("business name cannot be empty")
		}
		profile.BusinessName = name
	}
	if in.ContactEmail != nil {
		profile.ContactEmail = strings.TrimSpace(*in.ContactEmail)
	}
	if in.Phone != nil {
		profile.Phone = in.Phone
	}
	if in.Website != nil {
		profile.Website = in.Website
	}
	if in.Description != nil {
		profile.Description = in.Description
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	next := *sess
	next.Profile = profile
	next.Notice = ""
	if err := s.sessions.Save(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return &next, nil
}

func (s *AuthService) attachProfile(ctx context.Context, sess *session.Session, user *models.User) {
	profile, err := s.resolver.Resolve(ctx, Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Metadata: models.ParseSignupMetadata(user.Metadata),
	})
	if err != nil {
		s.log.Warn("Profile resolution failed for %s: %v", user.ID, err)
		sess.Profile = nil
		sess.Notice = profileNotice
		return
	}
	sess.Profile = profile
	sess.Notice = ""
}
