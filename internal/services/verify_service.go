package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"
)

// Intent is the declared purpose of a submitted photo.
type Intent string

const (
	IntentDisposal Intent = "disposal"
	IntentReport   Intent = "report"
	IntentBinCheck Intent = "bin_check"
)

// Classifier content categories.
const (
	CategoryBinDisposal  = "bin_disposal"
	CategoryLitterReport = "litter_report"
	CategoryNotWaste     = "not_waste"
	CategoryPotentialBin = "potential_bin"
)

// VerificationResult is what callers get back. Points are computed
// client-side from the category and confidence, never taken from the
// classifier. Fallback marks a result synthesized after a classifier
// failure so outages stay observable.
type VerificationResult struct {
	IsWasteAction bool    `json:"is_waste_action"`
	Confidence    float64 `json:"confidence"`
	Category      string  `json:"type"`
	Description   string  `json:"description"`
	Points        int     `json:"points"`
	Fallback      bool    `json:"fallback,omitempty"`
}

type classifyRequest struct {
	Image       string `json:"image"`
	MimeType    string `json:"mime_type"`
	Instruction string `json:"instruction"`
}

type classifyResponse struct {
	IsWasteAction bool    `json:"isWasteAction"`
	Confidence    float64 `json:"confidence"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
}

var dataURIPrefix = regexp.MustCompile(`^data:image/(png|jpeg|jpg|webp);base64,`)

// VerifyService talks to the external vision classifier. Any failure of
// the external call degrades to a fixed accepted result instead of
// blocking the user's workflow — availability over strictness.
type VerifyService struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client

	fallbacks atomic.Int64
}

func NewVerifyService(endpoint, apiKey string) *VerifyService {
	return &VerifyService{
		Endpoint: endpoint,
		APIKey:   apiKey,
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Verify classifies an image against the declared intent.
func (v *VerifyService) Verify(ctx context.Context, imageBase64 string, intent Intent) *VerificationResult {
	clean := dataURIPrefix.ReplaceAllString(imageBase64, "")

	resp, err := v.classify(ctx, clean, intent)
	if err != nil {
		log.Printf("[verify] classifier failed, using fallback: %v", err)
		v.fallbacks.Add(1)
		return fallbackResult(intent)
	}

	result := &VerificationResult{
		IsWasteAction: resp.IsWasteAction,
		Confidence:    resp.Confidence,
		Category:      resp.Type,
		Description:   resp.Description,
	}
	result.Points = awardFor(result)
	return result
}

// FallbackCount reports how many results were synthesized because the
// classifier was unreachable. Exposed on the admin stats endpoint.
func (v *VerifyService) FallbackCount() int64 {
	return v.fallbacks.Load()
}

func (v *VerifyService) classify(ctx context.Context, imageBase64 string, intent Intent) (*classifyResponse, error) {
	if v.Endpoint == "" {
		return nil, fmt.Errorf("classifier endpoint not configured")
	}

	body, err := json.Marshal(classifyRequest{
		Image:       imageBase64,
		MimeType:    "image/jpeg",
		Instruction: instructionFor(intent),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if v.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.APIKey)
	}

	res, err := v.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", res.StatusCode)
	}

	var out classifyResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Type == "" {
		return nil, fmt.Errorf("empty response from classifier")
	}

	return &out, nil
}

// awardFor computes the point award: zero when the image does not match
// the declared intent, a per-category base otherwise, plus a flat bonus
// for high confidence.
func awardFor(r *VerificationResult) int {
	if !r.IsWasteAction {
		return 0
	}

	points := 0
	switch r.Category {
	case CategoryBinDisposal:
		points = 10
	case CategoryLitterReport:
		points = 15
	case CategoryPotentialBin:
		points = 5
	}

	if r.Confidence > 0.9 {
		points += 5
	}
	return points
}

func instructionFor(intent Intent) string {
	switch intent {
	case IntentDisposal:
		return "Analyze this image. Does it show a person disposing of trash into a bin, or a trash bin with waste in it? We are verifying a 'clean-up' action."
	case IntentReport:
		return "Analyze this image. Does it show litter, scattered trash, or a garbage dump in a public area that needs cleaning? We are verifying a 'report litter' action."
	case IntentBinCheck:
		return "Analyze this image. Does it show a permanent, public trash bin or dumpster infrastructure? We are verifying if this object is a valid waste receptacle."
	}
	return ""
}

func fallbackResult(intent Intent) *VerificationResult {
	category := CategoryLitterReport
	switch intent {
	case IntentDisposal:
		category = CategoryBinDisposal
	case IntentBinCheck:
		category = CategoryPotentialBin
	}

	return &VerificationResult{
		IsWasteAction: true,
		Confidence:    0.85,
		Category:      category,
		Description:   "AI verification unavailable, but image uploaded successfully. (Fallback Mode)",
		Points:        10,
		Fallback:      true,
	}
}
