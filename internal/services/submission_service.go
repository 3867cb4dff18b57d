package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecoclean/backend/internal/models"
	"github.com/ecoclean/backend/internal/storage"
)

var (
	ErrBinNotFound        = errors.New("bin not found or not approved")
	ErrInvalidBinCode     = errors.New("invalid bin code format")
	ErrSubmissionNotFound = errors.New("submission not found")
)

// BinCodePrefix is the wire contract between the QR-producing admin flow
// and the QR-consuming user flow: a bin is addressed as
// "ecoclean:bin:<submission-id>".
const BinCodePrefix = "ecoclean:bin:"

// SubmissionService owns the submission collection: photographic claims
// (bin suggestions, litter reports) and the verified-bin directory, which
// is just the approved bin-suggestion subset.
type SubmissionService struct {
	mu    sync.Mutex
	store storage.Store
}

func NewSubmissionService(store storage.Store) *SubmissionService {
	return &SubmissionService{store: store}
}

// Seed writes the demo submissions if the collection is absent.
func (s *SubmissionService) Seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.loadSubmissions(ctx)
	if err != nil {
		return err
	}
	if len(subs) > 0 {
		return nil
	}

	return s.saveSubmissions(ctx, seedSubmissions())
}

// List returns all submissions, newest first (creates prepend).
func (s *SubmissionService) List(ctx context.Context) ([]models.Submission, error) {
	return s.loadSubmissions(ctx)
}

// Create prepends the submission. Callers are responsible for populating a
// well-formed record; there is no dedup here.
func (s *SubmissionService) Create(ctx context.Context, sub models.Submission) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.Timestamp.IsZero() {
		sub.Timestamp = time.Now()
	}
	if sub.Status == "" {
		sub.Status = models.StatusPending
	}

	subs, err := s.loadSubmissions(ctx)
	if err != nil {
		return nil, err
	}

	subs = append([]models.Submission{sub}, subs...)
	if err := s.saveSubmissions(ctx, subs); err != nil {
		return nil, err
	}

	return &sub, nil
}

// SetStatus applies an admin decision. No-op on an unknown id; an already
// resolved record is overwritten, not rejected.
func (s *SubmissionService) SetStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.loadSubmissions(ctx)
	if err != nil {
		return err
	}

	for i := range subs {
		if subs[i].ID == id {
			subs[i].Status = status
			return s.saveSubmissions(ctx, subs)
		}
	}

	return nil
}

/// VerifiedBins is the bin directory: approved bin suggestions only.
func (s *SubmissionService) VerifiedBins(ctx context.Context) ([]models.Submission, error) {
	subs, err := s.loadSubmissions(ctx)
	if err != nil {
		return nil, err
	}

	bins := make([]models.Submission, 0)
	for _, sub := range subs {
		if sub.Kind == models.KindBinSuggestion && sub.Status == models.StatusApproved {
			bins = append(bins, sub)
		}
	}
	return bins, nil
}

// GetVerifiedBin resolves a bin id scanned from a QR code. Pending and
// rejected suggestions are invisible here.
func (s *SubmissionService) GetVerifiedBin(ctx context.Context, id string) (*models.Submission, error) {
	bins, err := s.VerifiedBins(ctx)
	if err != nil {
		return nil, err
	}

	for i := range bins {
		if bins[i].ID == id {
			b := bins[i]
			return &b, nil
		}
	}

	return nil, ErrBinNotFound
}

// RelocateBin overwrites a submission's coordinate in place. Used by
// admins to correct a bin's registered position after a failed proximity
// check; identity and submission history are preserved.
func (s *SubmissionService) RelocateBin(ctx context.Context, id string, coord models.Coordinate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.loadSubmissions(ctx)
	if err != nil {
		return err
	}

	for i := range subs {
		if subs[i].ID == id {
			subs[i].Coordinates = &coord
			return s.saveSubmissions(ctx, subs)
		}
	}

	return ErrSubmissionNotFound
}

// CreateApprovedBin registers a bin directly in approved state. Admin
// shortcut for bins that never went through a user suggestion.
func (s *SubmissionService) CreateApprovedBin(ctx context.Context, admin *models.User, location string, coord *models.Coordinate) (*models.Submission, error) {
	if coord == nil {
		coord = &models.Coordinate{Lat: 28.6139, Lng: 77.2090}
	}

	return s.Create(ctx, models.Submission{
		UserID:       admin.ID,
		UserName:     admin.Name,
		ImageURL:     "https://images.unsplash.com/photo-1528323273322-d81458248d40?auto=format&fit=crop&w=300&q=80",
		Status:       models.StatusApproved,
		Location:     location,
		AIConfidence: 1.0,
		Kind:         models.KindBinSuggestion,
		Coordinates:  coord,
	})
}

// EncodeBinCode builds the QR payload for a bin.
func EncodeBinCode(id string) string {
	return BinCodePrefix + id
}

// DecodeBinCode extracts the submission id from a scanned QR payload.
func DecodeBinCode(code string) (string, error) {
	if !strings.HasPrefix(code, BinCodePrefix) {
		return "", ErrInvalidBinCode
	}
	id := strings.TrimPrefix(code, BinCodePrefix)
	if id == "" {
		return "", ErrInvalidBinCode
	}
	return id, nil
}

// QRImageURL points at a rendered QR image for printing on the bin panel.
func QRImageURL(id string) string {
	return "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=" + url.QueryEscape(EncodeBinCode(id))
}

// MapLinkURL builds an external map link for a coordinate.
func MapLinkURL(coord models.Coordinate) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", coord.Lat, coord.Lng)
}

func (s *SubmissionService) loadSubmissions(ctx context.Context) ([]models.Submission, error) {
	var subs []models.Submission
	if err := s.store.Load(ctx, storage.KeySubmissions, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *SubmissionService) saveSubmissions(ctx context.Context, subs []models.Submission) error {
	return s.store.Save(ctx, storage.KeySubmissions, subs)
}

func seedSubmissions() []models.Submission {
	now := time.Now()
	return []models.Submission{
		{
			ID: "b1", UserID: "u2", UserName: "Priya S.",
			ImageURL:     "https://images.unsplash.com/photo-1605600659908-0ef719419d41?auto=format&fit=crop&w=300",
			Timestamp:    now.Add(-24 * time.Hour),
			Status:       models.StatusPending,
			Location:     "Sector 4 Market (Lat: 28.5355, Lng: 77.3910)",
			AIConfidence: 0.92,
			Kind:         models.KindBinSuggestion,
			Coordinates:  &models.Coordinate{Lat: 28.5355, Lng: 77.3910},
		},
		{
			ID: "b2", UserID: "u3", UserName: "Rohan G.",
			ImageURL:     "https://images.unsplash.com/photo-1503596476-1c12a8ab9a86?auto=format&fit=crop&w=300",
			Timestamp:    now.Add(-12 * time.Hour),
			Status:       models.StatusPending,
			Location:     "Central Park Gate 2 (Lat: 28.6139, Lng: 77.2090)",
			AIConfidence: 0.88,
			Kind:         models.KindBinSuggestion,
			Coordinates:  &models.Coordinate{Lat: 28.6139, Lng: 77.2090},
		},
		{
			ID: "b3", UserID: "u1", UserName: "Aarav Patel",
			ImageURL:     "https://images.unsplash.com/photo-1528323273322-d81458248d40?auto=format&fit=crop&w=300",
			Timestamp:    now.Add(-28 * time.Hour),
			Status:       models.StatusApproved,
			Location:     "Metro Station Exit 1",
			AIConfidence: 0.95,
			Kind:         models.KindBinSuggestion,
			Coordinates:  &models.Coordinate{Lat: 28.6139, Lng: 77.2090},
		},
		{
			ID: "l1", UserID: "u4", UserName: "Ananya Singh",
			ImageURL:     "https://images.unsplash.com/photo-1530587191325-3fdbfd2d6284?auto=format&fit=crop&w=300",
			Timestamp:    now.Add(-20 * time.Minute),
			Status:       models.StatusPending,
			Location:     "Main Road Junction, Koramangala",
			AIConfidence: 0.94,
			Kind:         models.KindLitterReport,
		},
	}
}
