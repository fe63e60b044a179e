package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/tradecoach/backend/src/analysis"
	"github.com/username/tradecoach/backend/src/logger"
	"github.com/username/tradecoach/backend/src/models"
	"github.com/username/tradecoach/backend/src/services"
	"github.com/username/tradecoach/backend/src/utils"
)

type ReportHandler struct {
	reportService   services.ReportService
	coachingService services.CoachingService
}

func NewReportHandler(reportService services.ReportService, coachingService services.CoachingService) *ReportHandler {
	return &ReportHandler{
		reportService:   reportService,
		coachingService: coachingService,
	}
}

// HandleGetReport returns the full analysis report. ETag/If-None-Match is
// supported because the report is expensive to serialize and rarely changes
// between requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	report, err := h.getReport(w, userID)
	if err != nil {
		return
	}

	etag, err := utils.GenerateETag(report)
	if err == nil {
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	utils.SendJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) HandleGetRoundTrips(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	report, err := h.getReport(w, userID)
	if err != nil {
		return
	}
	utils.SendJSON(w, http.StatusOK, report.RoundTrips)
}

func (h *ReportHandler) HandleGetOpenPositions(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	report, err := h.getReport(w, userID)
	if err != nil {
		return
	}
	utils.SendJSON(w, http.StatusOK, report.OpenPositions)
}

func (h *ReportHandler) HandleGetMappings(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	mappings, err := h.reportService.GetTickerMappings(userID)
	if err != nil {
		logger.L.Error("Failed to load ticker mappings", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to load ticker mappings", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, http.StatusOK, mappings)
}

// HandleUpdateMapping confirms, edits or skips one ISIN's ticker mapping.
func (h *ReportHandler) HandleUpdateMapping(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	isin := r.PathValue("isin")
	if isin == "" {
		utils.SendJSONError(w, "ISIN path parameter is required", http.StatusBadRequest)
		return
	}

	var body struct {
		Ticker string `json:"ticker"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.Status == "" {
		body.Status = models.MappingConfirmed
	}

	if err := h.reportService.UpdateTickerMapping(userID, isin, body.Ticker, body.Status); err != nil {
		logger.L.Warn("Failed to update ticker mapping", "userID", userID, "isin", isin, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "Mapping updated"})
}

// HandleGetCoaching anonymizes the user's report and forwards it to the
// coaching collaborator.
func (h *ReportHandler) HandleGetCoaching(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	report, err := h.getReport(w, userID)
	if err != nil {
		return
	}

	stats := analysis.Anonymize(*report)
	coaching, err := h.coachingService.GetCoaching(stats)
	if err != nil {
		logger.L.Error("Coaching request failed", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to generate coaching analysis", http.StatusBadGateway)
		return
	}

	utils.SendJSON(w, http.StatusOK, coaching)
}

// getReport loads the user's report, writing the error response itself so
// handlers can simply return on failure.
func (h *ReportHandler) getReport(w http.ResponseWriter, userID int64) (*analysis.Report, error) {
	report, err := h.reportService.GetReport(userID)
	if err != nil {
		if errors.Is(err, services.ErrNoTradesFound) {
			utils.SendJSONError(w, "No trades uploaded yet", http.StatusNotFound)
		} else {
			logger.L.Error("Failed to build report", "userID", userID, "error", err)
			utils.SendJSONError(w, "Failed to build report", http.StatusInternalServerError)
		}
		return nil, err
	}
	return report, nil
}
