package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/staff-console/internal/api/dto"
	"github.com/spec-kit/staff-console/internal/service"
)

// CookieConfig controls the console session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler exposes sign-in, sign-out and the operator's own records.
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Login handles POST /console/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return respond(c, dto.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

// Logout handles POST /console/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), actor(c)); err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return respond(c, fiber.Map{"status": "signed_out"})
}

// Session handles GET /console/auth/session.
func (h *AuthHandler) Session(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	return respond(c, dto.SessionResponse{
		Authenticated: p.Workspace.Session.Authenticated(),
		User:          p.Workspace.Session.User(),
	})
}

// Profile handles GET /console/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	me, err := h.auth.Profile(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, me)
}

// Roles handles GET /console/roles.
func (h *AuthHandler) Roles(c *fiber.Ctx) error {
	roles, err := h.auth.Roles(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, roles)
}
