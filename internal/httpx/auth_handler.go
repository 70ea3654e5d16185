package httpx

import (
	"context"
	"net/http"

	"github.com/flow1h/flow1h-api/internal/backend"
	"github.com/flow1h/flow1h-api/internal/business"
	"github.com/go-chi/chi/v5"
)

// Authenticator is implemented by *backend.AuthClient.
type Authenticator interface {
	CreateUser(ctx context.Context, email, password string, emailConfirm bool) (*backend.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error)
}

type BusinessStore interface {
	Create(ctx context.Context, d business.Draft) (*business.Business, error)
	ByOwner(ctx context.Context, ownerUserID string) (*business.Business, error)
}

type AuthHandler struct {
	Auth       Authenticator
	Businesses BusinessStore
	// DefaultPassword is used when registration omits one. Empty means a
	// password is mandatory.
	DefaultPassword string
}

type registerReq struct {
	Email             string  `json:"email" validate:"required,email"`
	Password          *string `json:"password"`
	Name              string  `json:"name" validate:"required"`
	Type              string  `json:"type" validate:"required,oneof=orders appointments catalog"`
	Phone             *string `json:"phone"`
	WhatsappNumber    *string `json:"whatsapp_number"`
	Address           *string `json:"address"`
	AddressReferences *string `json:"address_references"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerResp struct {
	UserID              string             `json:"user_id"`
	Business            *business.Business `json:"business"`
	DefaultPasswordUsed bool               `json:"default_password_used"`
}

type loginResp struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         backend.User `json:"user"`
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Route("/auth-business", func(r chi.Router) {
		r.Get("/ping", h.ping)
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Get("/business-by-owner/{user_id}", h.businessByOwner)
	})
}

func (h *AuthHandler) ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	password, usedDefault := h.DefaultPassword, true
	if req.Password != nil && *req.Password != "" {
		password, usedDefault = *req.Password, false
	}
	if password == "" {
		writeError(w, badRequest("password is required"))
		return
	}

	user, err := h.Auth.CreateUser(r.Context(), req.Email, password, true)
	if err != nil {
		writeError(w, upstream("error creating user", err))
		return
	}
	if user == nil {
		writeError(w, badRequest("user was not created"))
		return
	}

	b, err := h.Businesses.Create(r.Context(), business.Draft{
		OwnerUserID:       user.ID,
		Name:              req.Name,
		Type:              business.Type(req.Type),
		Phone:             req.Phone,
		WhatsappNumber:    req.WhatsappNumber,
		Address:           req.Address,
		AddressReferences: req.AddressReferences,
	})
	if err != nil {
		writeError(w, upstream("error creating business", err))
		return
	}

	writeJSON(w, http.StatusOK, registerResp{UserID: user.ID, Business: b, DefaultPasswordUsed: usedDefault})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.Auth.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, upstream("login failed", err))
		return
	}
	if s == nil {
		writeError(w, unauthorized("invalid credentials"))
		return
	}
	writeJSON(w, http.StatusOK, loginResp{AccessToken: s.AccessToken, RefreshToken: s.RefreshToken, User: s.User})
}

func (h *AuthHandler) businessByOwner(w http.ResponseWriter, r *http.Request) {
	b, err := h.Businesses.ByOwner(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, upstream("error loading business", err))
		return
	}
	if b == nil {
		writeError(w, notFound("business not found"))
		return
	}
	writeJSON(w, http.StatusOK, b)
}
