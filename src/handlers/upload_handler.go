package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/username/tradecoach/backend/src/config"
	"github.com/username/tradecoach/backend/src/logger"
	"github.com/username/tradecoach/backend/src/services"
	"github.com/username/tradecoach/backend/src/utils"
)

type UploadHandler struct {
	reportService services.ReportService
}

func NewUploadHandler(service services.ReportService) *UploadHandler {
	return &UploadHandler{
		reportService: service,
	}
}

// HandleUpload accepts a broker transaction export ('file' form field),
// parses it and replaces the user's stored history. The optional 'source'
// field selects the parser, defaulting to nordnet.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "userID", userID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".csv" && ext != ".txt" && ext != ".tsv" {
		utils.SendJSONError(w, "Unsupported file type. Expected a .csv, .tsv or .txt transaction export.", http.StatusBadRequest)
		return
	}

	source := r.FormValue("source")
	if source == "" {
		source = "nordnet"
	}

	logger.L.Info("Processing upload request", "userID", userID, "filename", fileHeader.Filename, "source", source)
	summary, err := h.reportService.ProcessUpload(file, userID, source)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrParsingFailed):
			logger.L.Warn("Upload processing failed due to parsing errors", "userID", userID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing file: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrNoTradesFound):
			utils.SendJSONError(w, "No buy or sell transactions found in the file", http.StatusBadRequest)
		default:
			logger.L.Error("Upload processing failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "Failed to process upload", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, http.StatusOK, summary)
}
