package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecoclean/backend/internal/middleware"
	"github.com/ecoclean/backend/internal/models"
	"github.com/ecoclean/backend/internal/services"
)

// SubmissionHandler covers the litter-report and suggest-bin flows plus
// the public verified-bin directory.
type SubmissionHandler struct {
	submissions *services.SubmissionService
	users       *services.UserService
	verify      *services.VerifyService
	progression *services.ProgressionService
	screener    *services.SafeSearchScreener // nil disables the screen
}

func NewSubmissionHandler(
	submissions *services.SubmissionService,
	users *services.UserService,
	verify *services.VerifyService,
	progression *services.ProgressionService,
	screener *services.SafeSearchScreener,
) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		users:       users,
		verify:      verify,
		progression: progression,
		screener:    screener,
	}
}

// Report handles a litter report: classify, screen, store, award.
func (h *SubmissionHandler) Report(w http.ResponseWriter, r *http.Request) {
	h.handleCapture(w, r, captureFlow{
		intent:        services.IntentReport,
		kind:          models.KindLitterReport,
		action:        models.ActionReport,
		description:   "Litter Reported",
		rejectMessage: "Could not identify litter in this image. Please try again.",
		locatedLabel:  "Litter Report (Detected: %.4f, %.4f)",
		unknownLabel:  "Public Spot (No GPS)",
	})
}

// SuggestBin handles a new-bin suggestion: classify, screen, store, award.
func (h *SubmissionHandler) SuggestBin(w http.ResponseWriter, r *http.Request) {
	h.handleCapture(w, r, captureFlow{
		intent:        services.IntentBinCheck,
		kind:          models.KindBinSuggestion,
		action:        models.ActionSuggestion,
		description:   "New Bin Suggested",
		rejectMessage: "AI could not confirm this is a permanent trash bin.",
		locatedLabel:  "Bin Loc: %.4f, %.4f",
		unknownLabel:  "Suggested Bin (No GPS)",
	})
}

// ListBins returns the verified-bin directory.
func (h *SubmissionHandler) ListBins(w http.ResponseWriter, r *http.Request) {
	bins, err := h.submissions.VerifiedBins(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load bins"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(bins))
}

// BinMapLink builds an external map URL for a verified bin's coordinate.
func (h *SubmissionHandler) BinMapLink(w http.ResponseWriter, r *http.Request) {
	bin, err := h.submissions.GetVerifiedBin(r.Context(), chi.URLParam(r, "binId"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Bin not found"))
		return
	}
	if bin.Coordinates == nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Bin has no registered coordinates"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{
		"url": services.MapLinkURL(*bin.Coordinates),
	}))
}

type captureFlow struct {
	intent        services.Intent
	kind          string
	action        string
	description   string
	rejectMessage string
	locatedLabel  string
	unknownLabel  string
}

func (h *SubmissionHandler) handleCapture(w http.ResponseWriter, r *http.Request, flow captureFlow) {
	var req models.CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	user, err := h.users.GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
		return
	}

	verification := h.verify.Verify(r.Context(), req.Image, flow.intent)
	if !verification.IsWasteAction {
		// Rejected classifications are surfaced with the model's
		// description and the submission is discarded.
		writeJSON(w, http.StatusUnprocessableEntity, models.APIResponse{
			Success: false,
			Error:   flow.rejectMessage,
			Data:    verification,
		})
		return
	}

	if h.screener != nil {
		ss, err := h.screener.Screen(r.Context(), req.Image)
		if err != nil {
			// Same availability stance as the classifier: a screening
			// outage never blocks the submission.
			log.Printf("[submission] safesearch screen failed, skipping: %v", err)
		} else if ss.IsUnsafe() {
			writeJSON(w, http.StatusUnprocessableEntity, models.NewErrorResponse("Image rejected: violates community guidelines"))
			return
		}
	}

	var coords *models.Coordinate
	location := flow.unknownLabel
	if req.Lat != nil && req.Lng != nil {
		coords = &models.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
		location = fmt.Sprintf(flow.locatedLabel, *req.Lat, *req.Lng)
	}

	// Two independent whole-record writes, submission first: a crash in
	// between loses only the award, never a reviewed claim.
	sub, err := h.submissions.Create(r.Context(), models.Submission{
		UserID:       user.ID,
		UserName:     user.Name,
		ImageURL:     req.Image,
		Status:       models.StatusPending,
		Location:     location,
		AIConfidence: verification.Confidence,
		Kind:         flow.kind,
		Coordinates:  coords,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to store submission"))
		return
	}

	progress, err := h.progression.AddExperience(r.Context(), user, verification.Points, flow.action, flow.description)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to award experience"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(map[string]interface{}{
		"submission":   sub,
		"verification": verification,
		"progress":     progress,
	}))
}
