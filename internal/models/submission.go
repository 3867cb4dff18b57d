package models

import (
	"time"
)

// Submission statuses. Transitions are one-way: pending -> approved or
// rejected; an admin decision is never walked back to pending.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

const (
	KindBinSuggestion = "bin_suggestion"
	KindLitterReport  = "litter_report"
)

type Coordinate struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Submission is a user-created claim awaiting administrative review. A
// "verified bin" is not a separate entity: it is any bin_suggestion
// submission with status approved.
type Submission struct {
	ID           string      `json:"id" bson:"id"`
	UserID       string      `json:"user_id" bson:"user_id"`
	UserName     string      `json:"user_name" bson:"user_name"`
	ImageURL     string      `json:"image_url" bson:"image_url"`
	Timestamp    time.Time   `json:"timestamp" bson:"timestamp"`
	Status       string      `json:"status" bson:"status"`
	Location     string      `json:"location" bson:"location"`
	AIConfidence float64     `json:"ai_confidence" bson:"ai_confidence"`
	Kind         string      `json:"type" bson:"type"`
	Coordinates  *Coordinate `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// CaptureRequest carries a photo submission for the report and suggest-bin
// flows. Coordinates are optional; without them the submission degrades to
// an "unknown location" label.
type CaptureRequest struct {
	Image string   `json:"image"`
	Lat   *float64 `json:"lat,omitempty"`
	Lng   *float64 `json:"lng,omitempty"`
}

type DecodeBinRequest struct {
	Code string `json:"code"`
}

type GeofenceRequest struct {
	BinID string  `json:"bin_id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	// Force skips the proximity check. Debug/demo escape hatch, not
	// production policy.
	Force bool `json:"force,omitempty"`
}

type DisposalRequest struct {
	BinID string `json:"bin_id"`
	Image string `json:"image"`
}

type RelocateBinRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type CreateBinRequest struct {
	Location string   `json:"location"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

func (r *CaptureRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Image == "" {
		errors["image"] = "Image is required"
	}

	return errors
}

func (r *DisposalRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.BinID == "" {
		errors["bin_id"] = "Bin ID is required"
	}
	if r.Image == "" {
		errors["image"] = "Image is required"
	}

	return errors
}

func (r *CreateBinRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Location == "" {
		errors["location"] = "Location is required"
	}

	return errors
}
