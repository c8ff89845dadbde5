package patient

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost the rest of the platform has always used.
const bcryptCost = 10

// Patient is a registered identity. It is created only after OTP
// verification; the password hash stays nil until set-password runs.
type Patient struct {
	ID                 string
	FullName           string
	Email              string
	Phone              string
	PasswordHash       []byte
	IsVerified         bool
	IsActive           bool
	IsProfileCompleted bool
	StepCount          int
	Profile            Profile
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HashPassword derives a salted adaptive hash for storage.
func HashPassword(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
}

// VerifyPassword compares plaintext against the stored hash. It returns
// false, never an error, when no password has been set yet.
func (p Patient) VerifyPassword(plaintext string) bool {
	if len(p.PasswordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(p.PasswordHash, []byte(plaintext)) == nil
}

// View is the sanitized representation served to clients. The password hash
// never crosses this boundary.
type View struct {
	ID                 string    `json:"id"`
	FullName           string    `json:"fullName"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	IsVerified         bool      `json:"isVerified"`
	IsActive           bool      `json:"isActive"`
	IsProfileCompleted bool      `json:"isProfileCompleted"`
	StepCount          int       `json:"stepCount"`
	Profile            Profile   `json:"profile"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Sanitized projects the identity into its client-safe view.
func (p Patient) Sanitized() View {
	return View{
		ID:                 p.ID,
		FullName:           p.FullName,
		Email:              p.Email,
		Phone:              p.Phone,
		IsVerified:         p.IsVerified,
		IsActive:           p.IsActive,
		IsProfileCompleted: p.IsProfileCompleted,
		StepCount:          p.StepCount,
		Profile:            p.Profile,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// Summary is the compact projection used by the admin patient list.
type Summary struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	ProfilePicture *string   `json:"profilePicture"`
	IsActive       bool      `json:"isActive"`
	IsVerified     bool      `json:"isVerified"`
	StepCount      int       `json:"stepCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Summarize projects the identity into its list entry.
func (p Patient) Summarize() Summary {
	return Summary{
		ID:             p.ID,
		FullName:       p.FullName,
		Email:          p.Email,
		Phone:          p.Phone,
		ProfilePicture: p.Profile.ProfilePicture,
		IsActive:       p.IsActive,
		IsVerified:     p.IsVerified,
		StepCount:      p.StepCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
