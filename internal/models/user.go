package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account stored in the MongoDB users collection.
// Posts is a denormalized index of the posts the user owns; the Post
// document is the owning side of the relationship.
type User struct {
	ID                  primitive.ObjectID   `json:"id"         bson:"_id,omitempty"`
	Name                string               `json:"name"       bson:"name"`
	Email               string               `json:"email"      bson:"email"`
	Password            string               `json:"-"          bson:"password"` // bcrypt hash, never serialized
	ResetToken          string               `json:"-"          bson:"reset_token,omitempty"`
	ResetTokenExpiresAt time.Time            `json:"-"          bson:"reset_token_expires_at,omitempty"`
	Posts               []primitive.ObjectID `json:"posts"      bson:"posts"`
	CreatedAt           time.Time            `json:"created_at" bson:"created_at"`
}

// RegisterRequest is the JSON body for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is the JSON body for POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the JSON body for POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token              string `json:"token"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}
