package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/studio-portfolio-backend/errs"
	"github.com/rpupo63/studio-portfolio-backend/services"
)

const maxCredentialsBodyBytes = 64 << 10

type authHandler struct {
	responder    Responder
	logger       zerolog.Logger
	auth         *services.AuthService
	secureCookie bool
}

func newAuthHandler(auth *services.AuthService, secureCookie bool) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		auth:         auth,
		secureCookie: secureCookie,
	}
}

func (h authHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsRequest, error) {
	var req CredentialsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCredentialsBodyBytes)).Decode(&req); err != nil {
		return req, errs.NewInvalidJSONError("body", err)
	}
	return req, nil
}

// setup creates the first admin account
// @Summary Create first admin
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "Name and password"
// @Success 201 {object} models.User
// @Failure 400 {object} ErrorResponse "Bad Request - Missing name or short password"
// @Failure 409 {object} ErrorResponse "Conflict - An admin already exists"
// @Router /auth/setup [post]
func (h authHandler) setup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.decodeCredentials(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.auth.Setup(r.Context(), req.Name, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, user)
	}
}

// login exchanges credentials for a session token and cookie
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "Name and password"
// @Success 200 {object} services.Session
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Router /auth/session [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.decodeCredentials(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		session, err := h.auth.Login(r.Context(), req.Name, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    session.Token,
			Path:     "/",
			Expires:  session.ExpiresAt,
			MaxAge:   int(h.auth.TTL().Seconds()),
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})

		h.responder.WriteJSON(w, session)
	}
}

// logout clears the session cookie
// @Summary Sign out
// @Tags Auth
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /auth/session [delete]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})

		h.responder.WriteJSON(w, StatusResponse{Status: "success", Message: "signed out"})
	}
}
