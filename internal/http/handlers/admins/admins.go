package admins

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/stormarchive/timeline-service/internal/storage"
	admintypes "github.com/stormarchive/timeline-service/internal/types/admins"
	"github.com/stormarchive/timeline-service/internal/utils/password"
	"github.com/stormarchive/timeline-service/internal/utils/response"
)

// List returns all admin accounts (hashes are never serialized).
// @Summary List admin accounts
// @Tags admins
// @Produce json
// @Success 200 {array} admintypes.Admin "Admin accounts"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /admins [get]
func List(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accounts, err := store.ListAdmins()
		if err != nil {
			slog.Error("Failed to list admins", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to list admins")))
			return
		}

		response.WriteJSON(w, http.StatusOK, accounts)
	}
}

// Create registers a new admin account. A security question and its
// answer must be supplied together.
// @Summary Create an admin account
// @Tags admins
// @Accept json
// @Produce json
// @Param admin body admintypes.CreateRequest true "Account details"
// @Success 201 {object} map[string]string "Admin created"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Security BearerAuth
// @Router /admins [post]
func Create(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req admintypes.CreateRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if req.SecurityQuestionID != "" {
			if _, err := store.GetSecurityQuestion(req.SecurityQuestionID); err != nil {
				response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("unknown security question")))
				return
			}
		}

		passwordHash, err := password.HashPassword(req.Password)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to hash password")))
			return
		}

		var answerHash string
		if req.SecurityAnswer != "" {
			answerHash, err = password.HashAnswer(req.SecurityAnswer)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to hash answer")))
				return
			}
		}

		adminID, err := store.CreateAdmin(req.Username, passwordHash, req.SecurityQuestionID, answerHash)
		if err != nil {
			slog.Error("Failed to create admin", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to create admin")))
			return
		}

		slog.Info("Admin created", slog.String("admin_id", adminID))

		response.WriteJSON(w, http.StatusCreated, map[string]string{
			"id": adminID,
		})
	}
}

// Update changes an account's password or security challenge. Refused
// for protected accounts.
// @Summary Update an admin account
// @Tags admins
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param admin body admintypes.UpdateRequest true "Fields to change"
// @Success 200 {object} response.Response "Admin updated"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 403 {object} response.Response "Account is protected"
// @Failure 404 {object} response.Response "Admin not found"
// @Security BearerAuth
// @Router /admins/{id} [put]
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID := r.PathValue("id")
		if adminID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("admin id is required")))
			return
		}

		var req admintypes.UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		var passwordHash string
		var err error
		if req.Password != "" {
			passwordHash, err = password.HashPassword(req.Password)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to hash password")))
				return
			}
		}

		var answerHash string
		if req.SecurityAnswer != "" {
			answerHash, err = password.HashAnswer(req.SecurityAnswer)
			if err != nil {
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to hash answer")))
				return
			}
		}

		err = store.UpdateAdmin(adminID, passwordHash, req.SecurityQuestionID, answerHash)
		if err != nil {
			writeAdminMutationError(w, err, adminID)
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Admin updated", nil))
	}
}

// Delete removes an account. Refused for protected accounts.
// @Summary Delete an admin account
// @Tags admins
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Response "Admin deleted"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 403 {object} response.Response "Account is protected"
// @Failure 404 {object} response.Response "Admin not found"
// @Security BearerAuth
// @Router /admins/{id} [delete]
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID := r.PathValue("id")
		if adminID == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("admin id is required")))
			return
		}

		err := store.DeleteAdmin(adminID)
		if err != nil {
			writeAdminMutationError(w, err, adminID)
			return
		}

		slog.Info("Admin deleted", slog.String("admin_id", adminID))

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Admin deleted", nil))
	}
}

func writeAdminMutationError(w http.ResponseWriter, err error, adminID string) {
	switch {
	case errors.Is(err, storage.ErrProtected):
		response.WriteJSON(w, http.StatusForbidden, response.GeneralError(errors.New("account is protected")))
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("admin not found")))
	default:
		slog.Error("Admin mutation failed", slog.String("error", err.Error()), slog.String("admin_id", adminID))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to update admin")))
	}
}

// SecurityQuestions lists the available security questions for the
// account form.
// @Summary List security questions
// @Tags admins
// @Produce json
// @Success 200 {array} admintypes.SecurityQuestion "Security questions"
// @Security BearerAuth
// @Router /security-questions [get]
func SecurityQuestions(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := store.ListSecurityQuestions()
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to list security questions")))
			return
		}

		response.WriteJSON(w, http.StatusOK, questions)
	}
}
