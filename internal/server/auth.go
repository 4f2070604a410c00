package server

import (
	"net/http"

	"github.com/aaoeclipse/serverless-qr-manager/internal"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	profile, err := s.users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "User registered successfully",
		"userId":  profile.ID,
	})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	session, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	// Browser clients get the token back as an encrypted httpOnly cookie
	// as well, so they never have to store it themselves.
	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, session.IDToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
	} else {
		http.SetCookie(w, &http.Cookie{
			Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
			Value:    encryptedToken,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(session.ExpiresIn),
			Path:     "/",
		})
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   session.IDToken,
	})
}
