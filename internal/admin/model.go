// Package admin holds the back-office identity: password login, OTP-based
// password reset, and the permission grants gating the patient views. Admins
// live in their own table and never share a namespace with patients.
package admin

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// Roles. A full admin bypasses permission checks; a sub-admin needs an
// explicit grant per permission.
const (
	RoleAdmin    = "admin"
	RoleSubAdmin = "sub-admin"
)

// Permission is one named grant with separate view/edit bits.
type Permission struct {
	Name string `json:"name"`
	View bool   `json:"view"`
	Edit bool   `json:"edit"`
}

// Admin is a back-office identity.
type Admin struct {
	ID             string
	FullName       string
	Email          string
	PasswordHash   []byte
	Role           string
	IsActive       bool
	IsDeleted      bool
	ProfilePicture *string
	Permissions    []Permission
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HashPassword derives a salted adaptive hash for storage.
func HashPassword(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
}

// VerifyPassword compares plaintext against the stored hash.
func (a Admin) VerifyPassword(plaintext string) bool {
	if len(a.PasswordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(plaintext)) == nil
}

// View is the sanitized representation served to clients.
type View struct {
	ID             string       `json:"id"`
	FullName       string       `json:"fullName"`
	Email          string       `json:"email"`
	Role           string       `json:"role"`
	IsActive       bool         `json:"isActive"`
	ProfilePicture *string      `json:"profilePicture"`
	Permissions    []Permission `json:"permissions"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// Sanitized projects the admin into its client-safe view.
func (a Admin) Sanitized() View {
	return View{
		ID:             a.ID,
		FullName:       a.FullName,
		Email:          a.Email,
		Role:           a.Role,
		IsActive:       a.IsActive,
		ProfilePicture: a.ProfilePicture,
		Permissions:    a.Permissions,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
