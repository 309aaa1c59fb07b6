// backend/src/handlers/journal_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/model"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

type JournalHandler struct {
	journalService services.JournalService
}

func NewJournalHandler(journalService services.JournalService) *JournalHandler {
	return &JournalHandler{journalService: journalService}
}

// HandleGetJournal returns all of the user's trades with tags and notes, honoring If-None-Match.
func (h *JournalHandler) HandleGetJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	log := logger.FromContext(r.Context())

	journal, err := h.journalService.GetJournal(userID)
	if err != nil {
		log.Error("Error retrieving journal", "error", err)
		utils.SendJSONError(w, "failed to retrieve journal", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	currentETag, etagErr := utils.GenerateETag(journal)
	if etagErr != nil {
		log.Warn("Proceeding without ETag check due to ETag generation error", "error", etagErr)
	} else {
		quotedETag := fmt.Sprintf("%q", currentETag)
		w.Header().Set("ETag", quotedETag)
		if utils.ETagMatches(r.Header.Get("If-None-Match"), quotedETag) {
			log.Debug("ETag match for journal", "etag", currentETag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	utils.WriteJSON(w, http.StatusOK, journal)
}

func (h *JournalHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	summary, err := h.journalService.GetSummary(userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

func (h *JournalHandler) HandleGetTrades(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	trades, err := h.journalService.GetTrades(userID, r.URL.Query().Get("asset_type"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if trades == nil {
		trades = []model.Trade{}
	}
	utils.WriteJSON(w, http.StatusOK, trades)
}

func (h *JournalHandler) HandleLookupTrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	trade, err := h.journalService.FindByExternalID(userID, r.URL.Query().Get("external_id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, trade)
}

func (h *JournalHandler) HandleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := userAndID(w, r)
	if !ok {
		return
	}
	var update model.TradeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	trade, err := h.journalService.UpdateTrade(userID, tradeID, update)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, trade)
}

func (h *JournalHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := userAndID(w, r)
	if !ok {
		return
	}
	if err := h.journalService.DeleteTrade(userID, tradeID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JournalHandler) HandleGetTags(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := userAndID(w, r)
	if !ok {
		return
	}
	tags, err := h.journalService.GetTags(userID, tradeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	utils.WriteJSON(w, http.StatusOK, tags)
}

func (h *JournalHandler) HandleAddTag(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := userAndID(w, r)
	if !ok {
		return
	}
	var body struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	tag, err := h.journalService.AddTag(userID, tradeID, body.Tag)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, tag)
}

func (h *JournalHandler) HandleDeleteTag(w http.ResponseWriter, r *http.Request) {
	userID, tagID, ok := userAndID(w, r)
	if !ok {
		return
	}
	if err := h.journalService.DeleteTag(userID, tagID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JournalHandler) HandleGetNote(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := userAndID(w, r)
	if !ok {
		return
	}
	note, err := h.journalService.GetNote(userID, tradeID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, note)
}

func (h *JournalHandler) HandleSaveNote(w http.ResponseWriter, r *http.Request) {
	userID, tradeID, ok := userAndID(w, r)
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	note, err := h.journalService.SaveNote(userID, tradeID, body.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, note)
}

func (h *JournalHandler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, noteID, ok := userAndID(w, r)
	if !ok {
		return
	}
	if err := h.journalService.DeleteNote(userID, noteID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// userAndID reads the authenticated user and the {id} path parameter.
func userAndID(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return "", 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.SendJSONError(w, "invalid id", http.StatusBadRequest)
		return "", 0, false
	}
	return userID, id, true
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrTradeNotFound),
		errors.Is(err, model.ErrTagNotFound),
		errors.Is(err, model.ErrNoteNotFound):
		utils.SendJSONError(w, err.Error(), http.StatusNotFound)
	default:
		logger.FromContext(r.Context()).Error("Journal request failed", "path", r.URL.Path, "error", err)
		utils.SendJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
