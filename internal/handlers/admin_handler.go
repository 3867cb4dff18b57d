package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecoclean/backend/internal/middleware"
	"github.com/ecoclean/backend/internal/models"
	"github.com/ecoclean/backend/internal/services"
)

// AdminHandler covers the review queue, bin QR issuance and bin
// relocation.
type AdminHandler struct {
	submissions *services.SubmissionService
	users       *services.UserService
	verify      *services.VerifyService
}

func NewAdminHandler(
	submissions *services.SubmissionService,
	users *services.UserService,
	verify *services.VerifyService,
) *AdminHandler {
	return &AdminHandler{
		submissions: submissions,
		users:       users,
		verify:      verify,
	}
}

// ListSubmissions returns the full queue, optionally filtered by
// ?status= and ?kind=.
func (h *AdminHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load submissions"))
		return
	}

	status := r.URL.Query().Get("status")
	kind := r.URL.Query().Get("kind")

	filtered := make([]models.Submission, 0, len(subs))
	for _, sub := range subs {
		if status != "" && sub.Status != status {
			continue
		}
		if kind != "" && sub.Kind != kind {
			continue
		}
		filtered = append(filtered, sub)
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(filtered))
}

func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusApproved)
}

func (h *AdminHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusRejected)
}

func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request, status string) {
	id := chi.URLParam(r, "submissionId")
	if err := h.submissions.SetStatus(r.Context(), id, status); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update submission"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{
		"id":     id,
		"status": status,
	}))
}

// RelocateBin overwrites a bin's registered coordinate, typically to match
// the admin's current position after a failed proximity check.
func (h *AdminHandler) RelocateBin(w http.ResponseWriter, r *http.Request) {
	var req models.RelocateBinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	id := chi.URLParam(r, "binId")
	err := h.submissions.RelocateBin(r.Context(), id, models.Coordinate{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		if errors.Is(err, services.ErrSubmissionNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Submission not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to relocate bin"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"id": id}))
}

// CreateBin registers a bin directly in approved state.
func (h *AdminHandler) CreateBin(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	admin, err := h.users.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
		return
	}

	var coords *models.Coordinate
	if req.Lat != nil && req.Lng != nil {
		coords = &models.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	}

	bin, err := h.submissions.CreateApprovedBin(r.Context(), admin, req.Location, coords)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create bin"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(bin))
}

// BinQR returns the QR payload and a printable image URL for an approved
// bin.
func (h *AdminHandler) BinQR(w http.ResponseWriter, r *http.Request) {
	bin, err := h.submissions.GetVerifiedBin(r.Context(), chi.URLParam(r, "binId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Bin not found or not approved"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{
		"code":      services.EncodeBinCode(bin.ID),
		"image_url": services.QRImageURL(bin.ID),
	}))
}

// Stats summarizes the review queue and surfaces the classifier fallback
// counter so a silent classifier outage is detectable.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load submissions"))
		return
	}

	pendingBins := 0
	pendingReports := 0
	for _, sub := range subs {
		if sub.Status != models.StatusPending {
			continue
		}
		if sub.Kind == models.KindBinSuggestion {
			pendingBins++
		} else {
			pendingReports++
		}
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"pending_bin_suggestions": pendingBins,
		"pending_litter_reports":  pendingReports,
		"total_submissions":       len(subs),
		"classifier_fallbacks":    h.verify.FallbackCount(),
	}))
}
