package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/oraculo/stats-api/internal/betting"
	"github.com/oraculo/stats-api/internal/logic"
	"github.com/oraculo/stats-api/internal/models"
	"github.com/oraculo/stats-api/internal/ocr"
)

// ProcessText handles POST /api/v1/process/text
// @Summary Analyse Odds Text
// @Description Parses odds pasted from a bookmaker, predicts the match and returns value bets
// @Tags Processing
// @Accept json
// @Produce json
// @Param body body models.ProcessTextRequest true "Odds text"
// @Success 200 {object} models.Analysis
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} map[string]string "No markets recognised"
// @Router /process/text [post]
func (h *Handler) ProcessText(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessTextRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	a, err := h.processing.ProcessText(r.Context(), req)
	if err != nil {
		h.processError(w, err, "text")
		return
	}
	h.jsonResponse(w, http.StatusOK, a)
}

// ProcessImage handles POST /api/v1/process/image
// @Summary Analyse Betting Slip Screenshot
// @Description Runs OCR over an uploaded image and analyses the recognised odds
// @Tags Processing
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Screenshot (max 5MB)"
// @Param bookmaker formData string false "Bookmaker name"
// @Success 200 {object} models.Analysis
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 413 {object} map[string]string "Image too large"
// @Failure 422 {object} map[string]string "No markets recognised"
// @Router /process/image [post]
func (h *Handler) ProcessImage(w http.ResponseWriter, r *http.Request) {
	// multipart overhead on top of the image itself
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+64<<10)
	if err := r.ParseMultipartForm(MaxImageSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Image too large")
			return
		}
		h.errorResponse(w, http.StatusBadRequest, "Expected multipart form with an image field")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()
	if header.Size > MaxImageSize {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	a, err := h.processing.ProcessImage(r.Context(), image, r.FormValue("bookmaker"))
	if err != nil {
		h.processError(w, err, "image")
		return
	}
	h.jsonResponse(w, http.StatusOK, a)
}

// ProcessForm handles POST /api/v1/process/form
// @Summary Analyse Structured Slip
// @Description Analyses teams, drafts and markets entered by hand
// @Tags Processing
// @Accept json
// @Produce json
// @Param body body models.ProcessFormRequest true "Form"
// @Success 200 {object} models.Analysis
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /process/form [post]
func (h *Handler) ProcessForm(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessFormRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	a, err := h.processing.ProcessForm(r.Context(), req)
	if err != nil {
		h.processError(w, err, "form")
		return
	}
	h.jsonResponse(w, http.StatusOK, a)
}

func (h *Handler) processError(w http.ResponseWriter, err error, source string) {
	switch {
	case errors.Is(err, betting.ErrNoMarkets):
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, logic.ErrEmptyImage), errors.Is(err, ocr.ErrEmptyImage):
		h.errorResponse(w, http.StatusUnprocessableEntity, "No text recognised in image")
	case errors.Is(err, logic.ErrNoOCR):
		h.errorResponse(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Errorw("Failed to process analysis", "error", err, "source", source)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to process analysis")
	}
}
