package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoclean/backend/internal/models"
	"github.com/ecoclean/backend/internal/storage"
)

func newTestSubmissionService(t *testing.T) *SubmissionService {
	t.Helper()
	store, err := storage.NewJSONStore(t.TempDir())
	require.NoError(t, err)
	return NewSubmissionService(store)
}

func TestCreate_PrependsNewestFirst(t *testing.T) {
	svc := newTestSubmissionService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, models.Submission{UserID: "u1", Kind: models.KindLitterReport})
	require.NoError(t, err)
	second, err := svc.Create(ctx, models.Submission{UserID: "u2", Kind: models.KindBinSuggestion})
	require.NoError(t, err)

	subs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, second.ID, subs[0].ID)
	assert.Equal(t, first.ID, subs[1].ID)
}

func TestCreate_FillsDefaults(t *testing.T) {
	svc := newTestSubmissionService(t)

	sub, err := svc.Create(context.Background(), models.Submission{UserID: "u1", Kind: models.KindLitterReport})
	require.NoError(t, err)

	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.Timestamp.IsZero())
	assert.Equal(t, models.StatusPending, sub.Status)
}

func TestSetStatus_ApprovedBinAppearsInDirectory(t *testing.T) {
	svc := newTestSubmissionService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, models.Submission{UserID: "u1", Kind: models.KindBinSuggestion})
	require.NoError(t, err)

	bins, err := svc.VerifiedBins(ctx)
	require.NoError(t, err)
	assert.Empty(t, bins)

	require.NoError(t, svc.SetStatus(ctx, sub.ID, models.StatusApproved))

	bins, err = svc.VerifiedBins(ctx)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, sub.ID, bins[0].ID)
}

func TestSetStatus_RejectAfterApproveRemovesFromDirectory(t *testing.T) {
	svc := newTestSubmissionService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, models.Submission{UserID: "u1", Kind: models.KindBinSuggestion})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, sub.ID, models.StatusApproved))
	require.NoError(t, svc.SetStatus(ctx, sub.ID, models.StatusRejected))

	bins, err := svc.VerifiedBins(ctx)
	require.NoError(t, err)
	assert.Empty(t, bins)

	_, err = svc.GetVerifiedBin(ctx, sub.ID)
	assert.ErrorIs(t, err, ErrBinNotFound)
}

func TestSetStatus_UnknownIDIsNoOp(t *testing.T) {
	svc := newTestSubmissionService(t)
	assert.NoError(t, svc.SetStatus(context.Background(), "no-such-id", models.StatusApproved))
}

func TestVerifiedBins_ExcludesLitterReports(t *testing.T) {
	svc := newTestSubmissionService(t)
	ctx := context.Background()

	report, err := svc.Create(ctx, models.Submission{UserID: "u1", Kind: models.KindLitterReport})
	require.NoError(t, err)
	require.NoError(t, svc.SetStatus(ctx, report.ID, models.StatusApproved))

	bins, err := svc.VerifiedBins(ctx)
	require.NoError(t, err)
	assert.Empty(t, bins, "approved litter reports are not bins")
}

func TestRelocateBin_OverwritesCoordinate(t *testing.T) {
	svc := newTestSubmissionService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, models.Submission{
		UserID:      "u1",
		Kind:        models.KindBinSuggestion,
		Status:      models.StatusApproved,
		Coordinates: &models.Coordinate{Lat: 28.6139, Lng: 77.2090},
	})
	require.NoError(t, err)

	moved := models.Coordinate{Lat: 19.0760, Lng: 72.8777}
	require.NoError(t, svc.RelocateBin(ctx, sub.ID, moved))

	bin, err := svc.GetVerifiedBin(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, bin.Coordinates)
	assert.Equal(t, moved, *bin.Coordinates)
}

func TestRelocateBin_UnknownIDFails(t *testing.T) {
	svc := newTestSubmissionService(t)
	err := svc.RelocateBin(context.Background(), "no-such-id", models.Coordinate{})
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestCreateApprovedBin_IsImmediatelyVerified(t *testing.T) {
	svc := newTestSubmissionService(t)
	ctx := context.Background()
	admin := &models.User{ID: "admin", Name: "EcoClean Admin"}

	bin, err := svc.CreateApprovedBin(ctx, admin, "Metro Station Exit 1", &models.Coordinate{Lat: 28.6139, Lng: 77.2090})
	require.NoError(t, err)

	got, err := svc.GetVerifiedBin(ctx, bin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, "Metro Station Exit 1", got.Location)
}

func TestSeed_WritesOnceOnly(t *testing.T) {
	svc := newTestSubmissionService(t)
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, svc.Seed(ctx))
	second, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, second, len(first))
}

func TestBinCodeRoundTrip(t *testing.T) {
	code := EncodeBinCode("b3")
	assert.Equal(t, "ecoclean:bin:b3", code)

	id, err := DecodeBinCode(code)
	require.NoError(t, err)
	assert.Equal(t, "b3", id)
}

func TestDecodeBinCode_RejectsForeignPayloads(t *testing.T) {
	for _, code := range []string{"", "ecoclean:bin:", "https://example.com", "ecoclean:user:u1"} {
		_, err := DecodeBinCode(code)
		assert.ErrorIs(t, err, ErrInvalidBinCode, "code=%q", code)
	}
}

func TestQRImageURL_EmbedsBinCode(t *testing.T) {
	assert.Contains(t, QRImageURL("b3"), "ecoclean%3Abin%3Ab3")
}

func TestMapLinkURL_Format(t *testing.T) {
	url := MapLinkURL(models.Coordinate{Lat: 28.6139, Lng: 77.2090})
	assert.Contains(t, url, "https://www.google.com/maps/search/?api=1&query=")
	assert.Contains(t, url, "28.6139")
	assert.Contains(t, url, "77.2090")
}
