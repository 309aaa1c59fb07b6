package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/utils"
)

// DeleteTradesRequest selects trades for bulk removal: everything, by broker, by upload or by year.
type DeleteTradesRequest struct {
	Type   model.DeleteScope `json:"type"`
	Values []string          `json:"values"`
}

func (h *JournalHandler) HandleDeleteTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var req DeleteTradesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	logger.FromContext(r.Context()).Info("Handling DeleteTrades request", "type", req.Type, "values", req.Values)

	deleted, err := h.journalService.DeleteTrades(userID, req.Type, req.Values)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
