package prescription

import (
	"time"

	"github.com/haniwon/clinic-platform/internal/parser"
)

// Prescription is the persisted record produced by a successful workflow run.
type Prescription struct {
	ID             string        `json:"id"`
	PatientID      string        `json:"patientId"`
	PatientName    string        `json:"patientName"`
	Herbs          []parser.Herb `json:"herbs"`
	WaterVolume    string        `json:"waterVolume"`
	Memo           string        `json:"memo"`
	DurationDays   int           `json:"durationDays"`
	PrescribedDate time.Time     `json:"prescribedDate"`
	FollowUpDate   time.Time     `json:"followUpDate"`
	Format         parser.Format `json:"format"`
	RawText        string        `json:"rawText"`
	CreatedAt      time.Time     `json:"createdAt"`
}
