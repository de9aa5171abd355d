package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stormarchive/timeline-service/internal/config"
	"github.com/stormarchive/timeline-service/internal/http/middleware"
	"github.com/stormarchive/timeline-service/internal/storage"
	"github.com/stormarchive/timeline-service/internal/types/admins"
	"github.com/stormarchive/timeline-service/internal/utils/jwt"
	"github.com/stormarchive/timeline-service/internal/utils/password"
	"github.com/stormarchive/timeline-service/internal/utils/response"
)

// Login authenticates an admin. Three outcomes: invalid credentials
// (401), a pending security-answer challenge (200 with the question
// text), or success (200 with the admin and a session cookie).
// @Summary Authenticate an admin
// @Description Authenticate an admin, answering the account's security question when one is set
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body admins.LoginRequest true "Login details"
// @Success 200 {object} admins.LoginResponse "Authenticated, or challenge pending"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Router /login [post]
func Login(store storage.Storage, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req admins.LoginRequest

		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		validate := validator.New()
		err = validate.Struct(req)
		if err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		admin, err := store.GetAdminByUsername(req.Username)
		if err != nil {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid username or password")))
			return
		}

		if !password.CheckPasswordHash(req.Password, admin.PasswordHash) {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("invalid username or password")))
			return
		}

		// Credentials are right; a configured security question still
		// gates the session.
		if admin.SecurityQuestionID != "" && admin.SecurityAnswerHash != "" {
			if strings.TrimSpace(req.SecurityAnswer) == "" {
				question, err := store.GetSecurityQuestion(admin.SecurityQuestionID)
				if err != nil {
					slog.Error("Failed to load security question", slog.String("error", err.Error()), slog.String("admin_id", admin.ID))
					response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to load security question")))
					return
				}

				response.WriteJSON(w, http.StatusOK, admins.LoginResponse{
					RequiresSecurityAnswer: true,
					Question:               question.Question,
				})
				return
			}

			if !password.CheckAnswerHash(req.SecurityAnswer, admin.SecurityAnswerHash) {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("incorrect security answer")))
				return
			}
		}

		ttl := time.Duration(cfg.Auth.SessionTTLHours) * time.Hour
		token, err := jwt.CreateToken(admin.ID, cfg.Auth.JWTSecret, ttl)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to create session")))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(ttl.Seconds()),
		})

		slog.Info("Admin logged in", slog.String("admin_id", admin.ID))

		response.WriteJSON(w, http.StatusOK, admins.LoginResponse{
			Admin: &admin,
			Token: token,
		})
	}
}

// Logout clears the session cookie.
// @Summary Log out
// @Tags auth
// @Success 200 {object} response.Response "Logged out"
// @Router /logout [post]
func Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Logged out", nil))
	}
}
