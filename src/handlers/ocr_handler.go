package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/username/tradejournal/backend/src/config"
	"github.com/username/tradejournal/backend/src/logger"
	"github.com/username/tradejournal/backend/src/ocr"
	"github.com/username/tradejournal/backend/src/security/validation"
	"github.com/username/tradejournal/backend/src/utils"
)

type OCRHandler struct {
	extractionService *ocr.ExtractionService
}

func NewOCRHandler(extractionService *ocr.ExtractionService) *OCRHandler {
	return &OCRHandler{extractionService: extractionService}
}

// HandleUpload accepts a brokerage screenshot and returns a pre-filled
// trade candidate. Every failure mode collapses into one user-facing
// message; a partial candidate is never returned.
func (h *OCRHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "userID", userID, "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, "Failed to process upload or file too large", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("image")
	if err != nil {
		logger.L.Warn("Failed to retrieve image from request", "userID", userID, "error", err)
		utils.SendJSONError(w, "No image uploaded. Ensure 'image' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file header reports size too large", "userID", userID, "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, "File too large", http.StatusBadRequest)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientImageType(clientContentType); err != nil {
		logger.L.Warn("Invalid client-declared file type", "userID", userID, "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateImageContentByMagicBytes(file)
	if err != nil {
		logger.L.Warn("Server-side image content validation failed", "userID", userID, "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger.L.Info("Image content validated", "userID", userID, "filename", fileHeader.Filename, "detectedType", detectedContentType)

	image, err := io.ReadAll(file)
	if err != nil {
		logger.L.Error("Failed to read uploaded image", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to read uploaded image", http.StatusInternalServerError)
		return
	}

	candidate, err := h.extractionService.ExtractFromImage(r.Context(), image)
	if err != nil {
		if errors.Is(err, ocr.ErrExtraction) {
			logger.L.Info("Trade extraction failed", "userID", userID, "error", err)
			utils.SendJSONError(w, ocr.UserFacingMessage, http.StatusUnprocessableEntity)
			return
		}
		logger.L.Error("Unexpected extraction failure", "userID", userID, "error", err)
		utils.SendJSONError(w, ocr.UserFacingMessage, http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"trade":   candidate,
	})
}
