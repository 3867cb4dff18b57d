package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/ecoclean/backend/internal/middleware"
	"github.com/ecoclean/backend/internal/models"
	"github.com/ecoclean/backend/internal/services"
)

// ScanHandler drives the disposal workflow: QR decode, proximity check,
// photo verification, award.
type ScanHandler struct {
	submissions *services.SubmissionService
	users       *services.UserService
	verify      *services.VerifyService
	progression *services.ProgressionService
}

func NewScanHandler(
	submissions *services.SubmissionService,
	users *services.UserService,
	verify *services.VerifyService,
	progression *services.ProgressionService,
) *ScanHandler {
	return &ScanHandler{
		submissions: submissions,
		users:       users,
		verify:      verify,
		progression: progression,
	}
}

// DecodeBin resolves a scanned QR payload to a verified bin.
func (h *ScanHandler) DecodeBin(w http.ResponseWriter, r *http.Request) {
	var req models.DecodeBinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	id, err := services.DecodeBinCode(req.Code)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid QR code format. Please scan an official EcoClean bin."))
		return
	}

	bin, err := h.submissions.GetVerifiedBin(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("This QR code belongs to an invalid or unapproved bin."))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(bin))
}

// Geofence checks the caller is physically near the scanned bin. Force
// skips the check; it exists as a demo escape hatch and is logged as such.
func (h *ScanHandler) Geofence(w http.ResponseWriter, r *http.Request) {
	var req models.GeofenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	bin, err := h.submissions.GetVerifiedBin(r.Context(), req.BinID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("This QR code belongs to an invalid or unapproved bin."))
		return
	}

	if req.Force {
		log.Printf("[scan] operator override: forced geofence accept for bin %s by user %s", bin.ID, middleware.GetUserID(r.Context()))
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{"accepted": true, "forced": true}))
		return
	}

	if err := services.CheckProximity(req.Lat, req.Lng, bin); err != nil {
		var geoErr *services.GeofenceError
		if errors.As(err, &geoErr) {
			writeJSON(w, http.StatusUnprocessableEntity, models.APIResponse{
				Success: false,
				Error:   fmt.Sprintf("You are too far from the bin (%.2f km away). Please be physically present.", geoErr.DistanceKm),
				Errors:  map[string]float64{"distance_km": geoErr.DistanceKm},
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Proximity check failed"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{"accepted": true}))
}

// Disposal verifies a disposal photo and awards experience. Disposals are
// not stored as submissions; only the award and its log entry persist.
func (h *ScanHandler) Disposal(w http.ResponseWriter, r *http.Request) {
	var req models.DisposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	bin, err := h.submissions.GetVerifiedBin(r.Context(), req.BinID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("This QR code belongs to an invalid or unapproved bin."))
		return
	}

	user, err := h.users.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
		return
	}

	verification := h.verify.Verify(r.Context(), req.Image, services.IntentDisposal)
	if !verification.IsWasteAction {
		writeJSON(w, http.StatusUnprocessableEntity, models.APIResponse{
			Success: false,
			Error:   "Image does not match requirement. Please try again.",
			Data:    verification,
		})
		return
	}

	progress, err := h.progression.AddExperience(r.Context(), user, verification.Points,
		models.ActionDisposal, fmt.Sprintf("Bin Disposal @ %s", bin.Location))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to award experience"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]interface{}{
		"verification": verification,
		"progress":     progress,
	}))
}
