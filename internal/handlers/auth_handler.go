package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"dooh/internal/api/middleware"
	"dooh/internal/models"
	"dooh/internal/services"
	"dooh/internal/session"
	"dooh/internal/utils"
	"dooh/internal/utils/logger"
)

type AuthHandler struct {
	auth AuthManager
	log  *logger.Logger
}

func NewAuthHandler(auth AuthManager) *AuthHandler {
	return &AuthHandler{auth: auth, log: logger.New("AuthHandler")}
}

type SignUpRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Role         string `json:"role" validate:"omitempty,signup_role"`
	BusinessName string `json:"businessName"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ProfileRequest struct {
	Role         *string `json:"role" validate:"omitempty,user_role"`
	BusinessName *string `json:"businessName" validate:"omitempty,min=2"`
	ContactEmail *string `json:"contactEmail" validate:"omitempty,email"`
	Phone        *string `json:"phone"`
	Website      *string `json:"website" validate:"omitempty,url"`
	Description  *string `json:"description"`
}

type SessionResponse struct {
	Token   string           `json:"token,omitempty"`
	Session *session.Session `json:"session"`
}

// SignUp registers a new identity.
// @Summary Sign up
// @Description Register with email, password, role and business name. The profile is created on first sign-in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Signup details"
// @Success 201 {object} map[string]string "Account created"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Email already registered"
// @Router /api/v1/auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.auth.SignUp(c.Request().Context(), services.SignUpInput{
		Email:        req.Email,
		Password:     req.Password,
		Role:         models.UserRole(req.Role),
		BusinessName: req.BusinessName,
	})
	if err != nil {
		return MapError(err)
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Account created. You can now sign in.",
		"userId":  user.ID,
	})
}

// SignIn authenticates and opens a session.
// @Summary Sign in
// @Description Authenticate and return a bearer token with the resolved session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /api/v1/auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req SignInRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.auth.SignIn(c.Request().Context(), req.Email, req.Password, services.ClientInfo{
		IPAddress: utils.GetIPAddress(c.Request()),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, SessionResponse{Token: res.Token, Session: res.Session})
}

// SignOut ends the caller's session.
// @Summary Sign out
// @Tags auth
// @Security BearerAuth
// @Success 204 "Signed out"
// @Router /api/v1/auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if err := h.auth.SignOut(c.Request().Context(), middleware.GetSession(c)); err != nil {
		return MapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Session returns the current session snapshot.
// @Summary Current session
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/v1/auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, SessionResponse{Session: middleware.GetSession(c)})
}

// Resolve re-runs profile resolution for the current session.
// @Summary Re-resolve profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/v1/auth/session/resolve [post]
func (h *AuthHandler) Resolve(c echo.Context) error {
	sess, err := h.auth.ResolveSession(c.Request().Context(), middleware.GetSession(c))
	if err != nil {
		return MapError(err)
	}
	return c.JSON(http.StatusOK, SessionResponse{Session: sess})
}

// UpdateProfile edits the caller's profile.
// @Summary Update profile
// @Description Edit business details or switch between advertiser and screen_owner
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ProfileRequest true "Fields to change"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "No profile or forbidden role"
// @Router /api/v1/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	in := services.ProfileUpdate{
		BusinessName: req.BusinessName,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Website:      req.Website,
		Description:  req.Description,
	}
	if req.Role != nil {
		role := models.UserRole(strings.TrimSpace(*req.Role))
		in.Role = &role
	}

	sess, err := h.auth.UpdateProfile(c.Request().Context(), middleware.GetSession(c), in)
	if err != nil {
		return MapError(err)
	}
	h.log.Info("Profile updated for %s", sess.UserID)
	return c.JSON(http.StatusOK, SessionResponse{Session: sess})
}
