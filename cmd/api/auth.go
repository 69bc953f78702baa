package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"deliveryflow/pkg/auth"
	"deliveryflow/pkg/otel"
	"deliveryflow/pkg/user"
)

type userCtxKey struct{}

// registerHandler creates an account and returns a bearer token for it.
// @Summary Register
// @Accept json
// @Produce json
// @Param creds body auth.RegisterRequest true "Registration"
// @Success 201 {object} auth.Response
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /auth/register [post]
func registerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "registerHandler")
	defer span.End()

	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := authSvc.Register(ctx, req)
	if err != nil {
		respondError(w, authStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, resp)
}

// loginHandler verifies credentials and returns a bearer token.
// @Summary Login
// @Accept json
// @Produce json
// @Param creds body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.Response
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := authSvc.Login(ctx, req)
	if err != nil {
		respondError(w, authStatus(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// getProfileHandler returns the authenticated user's profile.
// @Summary Get profile
// @Produce json
// @Success 200 {object} user.User
// @Security ApiKeyAuth
// @Router /profile [get]
func getProfileHandler(w http.ResponseWriter, r *http.Request) {
	_, span := otel.AddSpan(r.Context(), "getProfileHandler")
	defer span.End()

	respondJSON(w, http.StatusOK, currentUser(r.Context()))
}

// updateProfileHandler applies a partial profile update.
// @Summary Update profile
// @Accept json
// @Produce json
// @Param update body user.Update true "Profile update"
// @Success 200 {object} user.User
// @Security ApiKeyAuth
// @Router /profile [put]
func updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateProfileHandler")
	defer span.End()

	var up user.Update
	if err := json.NewDecoder(r.Body).Decode(&up); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := authSvc.UpdateProfile(ctx, currentUser(ctx).ID, up)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, auth.ErrInvalidName) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error(ctx, "update profile", "error", err)
		respondError(w, http.StatusInternalServerError, "could not update profile")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// authMiddleware validates the bearer token and stores the user in the
// request context.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		u, err := authSvc.ValidateToken(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(ctx context.Context) *user.User {
	u, _ := ctx.Value(userCtxKey{}).(*user.User)
	return u
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrInvalidName),
		errors.Is(err, auth.ErrPasswordMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
