package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ivancurkovic15/personal-trainer-booking/internal/model"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/repository"
	"github.com/ivancurkovic15/personal-trainer-booking/internal/utils"
)

// AuthHandler serves registration, login and token lifecycle endpoints.
type AuthHandler struct {
	Users          *repository.UserRepo
	Tokens         *repository.TokenRepo
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

func NewAuthHandler(users *repository.UserRepo, tokens *repository.TokenRepo, secret string, accessTTLMin, refreshTTLDays, bcryptCost int) *AuthHandler {
	if users == nil || tokens == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{
		Users:          users,
		Tokens:         tokens,
		JWTSecret:      secret,
		AccessTTLMin:   accessTTLMin,
		RefreshTTLDays: refreshTTLDays,
		BcryptCost:     bcryptCost,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// Register creates a CLIENT account. Admin accounts are provisioned
// directly in the database.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	id, err := h.Users.Create(ctx, req.Email, req.Password, req.FullName, model.RoleClient, h.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		c.Logger().Errorf("register: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create account"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "email": req.Email})
}

// Login verifies credentials and issues an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	rec, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		c.Logger().Errorf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(rec.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issuePair(c, rec.ID, rec.Role)
}

// Refresh rotates a refresh token: consuming the presented token revokes
// it and a fresh pair is issued. A token can be consumed once; replays
// and expired tokens get 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx := c.Request().Context()
	userID, err := h.Tokens.Consume(ctx, utils.HashRefreshRaw(req.RefreshToken))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	rec, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	return h.issuePair(c, rec.ID, rec.Role)
}

// Logout revokes every refresh token of the authenticated user.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Tokens.RevokeAllForUser(c.Request().Context(), userID); err != nil {
		c.Logger().Errorf("logout: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user's profile including package state.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rec, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("me: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	u := rec.Model()
	return c.JSON(http.StatusOK, echo.Map{
		"id":        u.ID,
		"email":     u.Email,
		"full_name": u.FullName,
		"role":      u.Role,
		"package": model.PackageState{
			ActiveSessions: u.ActivePackageSessions,
			PackageRef:     u.PackageRef,
			ExpiresAt:      u.PackageExpiresAt,
		},
	})
}

func (h *AuthHandler) issuePair(c echo.Context, userID uint64, role string) error {
	access, err := utils.NewAccessToken(h.JWTSecret, userID, role, h.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("issue access token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token issue failed"})
	}
	refresh, err := utils.NewRefreshToken(h.RefreshTTLDays)
	if err != nil {
		c.Logger().Errorf("issue refresh token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token issue failed"})
	}
	ctx := c.Request().Context()
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		c.Logger().Errorf("store refresh token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token issue failed"})
	}
	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		ExpiresAt:    access.Exp.UTC().Format("2006-01-02 15:04:05"),
	})
}
