package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"healthrecord-api/internal/auth"
	"healthrecord-api/internal/middleware"
	"healthrecord-api/internal/model"
)

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type sessionResponse struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName,omitempty"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// issueSession mints an access token and a fresh refresh token for uid.
func (h *Handler) issueSession(r *http.Request, uid string) (token, refresh string, err error) {
	token, err = auth.MakeToken(uid, h.secret)
	if err != nil {
		return "", "", err
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return "", "", err
	}
	expiry := h.now().Add(auth.RefreshTokenTTL)
	if _, err := h.store.CreateRefreshToken(r.Context(), uid, hash, expiry); err != nil {
		return "", "", err
	}
	return token, raw, nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password too short")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	u := &model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(r.Context(), u); err != nil {
		writeDomainError(w, err)
		return
	}

	token, refresh, err := h.issueSession(r, u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		UserID:       u.ID,
		DisplayName:  u.DisplayName,
		Token:        token,
		RefreshToken: refresh,
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	u, err := h.store.UserByEmail(r.Context(), req.Email)
	if err != nil {
		// same answer for unknown email and wrong password
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if u.Status == model.StatusDisabled {
		writeError(w, http.StatusUnauthorized, "account disabled")
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, refresh, err := h.issueSession(r, u.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:       u.ID,
		DisplayName:  u.DisplayName,
		Token:        token,
		RefreshToken: refresh,
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken required")
		return
	}

	rt, err := h.store.GetRefreshTokenByHash(r.Context(), auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if rt.Revoked {
		// reuse of a rotated token: assume theft, kill the whole family
		_ = h.store.RevokeAllRefreshTokens(r.Context(), rt.UserID)
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	if h.now().After(rt.ExpiresAt) {
		writeError(w, http.StatusUnauthorized, "refresh token expired")
		return
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	newID := uuid.NewString()
	expiry := h.now().Add(auth.RefreshTokenTTL)
	if err := h.store.RotateRefreshToken(r.Context(), rt.ID, newID, rt.UserID, newHash, expiry); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := auth.MakeToken(rt.UserID, h.secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		UserID:       rt.UserID,
		Token:        token,
		RefreshToken: newRaw,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	if err := h.store.RevokeAllRefreshTokens(r.Context(), uid); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
