package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            string      `json:"id" bson:"id"`
	Email         string      `json:"email" bson:"email"`
	PasswordHash  string      `json:"-" bson:"password_hash,omitempty"`
	Name          string      `json:"name" bson:"name"`
	Avatar        string      `json:"avatar" bson:"avatar"`
	Role          string      `json:"role" bson:"role"` // "user" or "admin"
	TotalExp      int         `json:"total_exp" bson:"total_exp"`
	Level         int         `json:"level" bson:"level"`
	Streak        int         `json:"streak" bson:"streak"`
	Rank          int         `json:"rank" bson:"rank"`
	RecentActions []ActionLog `json:"recent_actions" bson:"recent_actions"`
	CreatedAt     time.Time   `json:"created_at" bson:"created_at"`
}

// Action log kinds. Entries are immutable and prepended, newest first.
const (
	ActionDisposal    = "DISPOSAL"
	ActionReport      = "REPORT"
	ActionStreakBonus = "STREAK_BONUS"
	ActionSuggestion  = "SUGGESTION"
)

type ActionLog struct {
	ID          string    `json:"id" bson:"id"`
	Type        string    `json:"type" bson:"type"`
	Points      int       `json:"points" bson:"points"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	Description string    `json:"description" bson:"description"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Name == "" {
		errors["name"] = "Name is required"
	}

	return errors
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}

	return errors
}

func (r *UpdateProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}

	return errors
}
