package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/security/validation"
	"github.com/username/tradejournal/src/utils"
)

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

func (h *UserHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewPassword != req.ConfirmNewPassword {
		utils.SendJSONError(w, "New passwords do not match", http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(h.db, userID)
	if err != nil {
		log.Error("Failed to get user for password change", "error", err)
		utils.SendJSONError(w, "Failed to retrieve user information", http.StatusInternalServerError)
		return
	}
	if err := h.authService.CompareHashAndPassword(user.Password, req.CurrentPassword); err != nil {
		log.Warn("Current password mismatch for password change")
		utils.SendJSONError(w, "Incorrect current password", http.StatusForbidden)
		return
	}

	hashedNewPassword, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		log.Error("Failed to hash new password", "error", err)
		utils.SendJSONError(w, "Failed to process new password", http.StatusInternalServerError)
		return
	}
	if err := model.UpdatePassword(h.db, userID, hashedNewPassword); err != nil {
		log.Error("Failed to update password in DB", "error", err)
		utils.SendJSONError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	log.Info("Password changed successfully")
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully."})
}

// DeleteAccountHandler removes the user after a password check. Their journal goes with them.
func (h *UserHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(h.db, userID)
	if err != nil {
		utils.SendJSONError(w, "user not found", http.StatusNotFound)
		return
	}
	if err := h.authService.CompareHashAndPassword(user.Password, body.Password); err != nil {
		utils.SendJSONError(w, "Incorrect password", http.StatusUnauthorized)
		return
	}

	if err := model.DeleteUser(h.db, userID); err != nil {
		log.Error("Failed to delete user", "error", err)
		utils.SendJSONError(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}
	h.journalService.InvalidateUserCache(userID)
	log.Info("Account deleted successfully")

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

func (h *UserHandler) HandleCheckUserData(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	hasData, err := h.journalService.HasTrades(userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error checking user data", "error", err)
		utils.SendJSONError(w, "failed to check user data", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"hasData": hasData})
}
