package patients

import (
	"strings"
	"time"
)

// Patient represents a registered patient record.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	BirthDate string    `json:"birthDate"`
	Memo      string    `json:"memo"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreatePatientRequest represents the request body for registering a patient
type CreatePatientRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"`
	Memo      string `json:"memo"`
}

// Validate validates the create patient request
func (r *CreatePatientRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	return nil
}
