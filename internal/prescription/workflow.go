package prescription

import (
	"time"

	"github.com/google/uuid"

	"github.com/haniwon/clinic-platform/internal/parser"
	"github.com/haniwon/clinic-platform/internal/patients"
	"github.com/haniwon/clinic-platform/internal/schedule"
)

// Status is the outcome class of a workflow run.
type Status string

const (
	// StatusSuccess means a prescription record, follow-up appointment, and
	// confirmation notice were all produced.
	StatusSuccess Status = "success"
	// StatusError means the text could not be turned into a usable
	// prescription. Message carries the operator-facing reason.
	StatusError Status = "error"
	// StatusNeedsRegistration means the named patient is not on the roster.
	// Nothing is produced; the operator registers the patient and resubmits.
	StatusNeedsRegistration Status = "needs_registration"
)

// Result is the full outcome of one workflow run. Exactly one of the three
// shapes is populated, selected by Status.
type Result struct {
	Status       Status          `json:"status"`
	Prescription *Prescription   `json:"prescription,omitempty"`
	Appointment  *schedule.Event `json:"appointment,omitempty"`
	Notification string          `json:"notification,omitempty"`
	Message      string          `json:"message,omitempty"`
	PatientName  string          `json:"patientName,omitempty"`
}

// Process turns prescription text into a complete result against a roster
// snapshot. It is pure: no I/O, no clock reads (prescribedDate is passed in),
// no mutation of its inputs. Persisting the artifacts is the service's job.
//
// durationDays is the operator-chosen dispensing period and wins over the
// memo; zero falls back to the memo's 일분 pattern, then to the 15-day
// default.
//
// Ambiguity is not checked here; callers gate the text before invoking.
func Process(text string, prescribedDate time.Time, durationDays int, roster []patients.Patient) Result {
	parsed := parser.Parse(text)

	name := parser.CleanPatientName(parsed.PatientName)
	if name == "" {
		return Result{Status: StatusError, Message: "처방전에서 환자 성함을 찾을 수 없습니다."}
	}
	if len(parsed.Herbs) == 0 {
		return Result{Status: StatusError, Message: "처방전에서 약재를 찾을 수 없습니다."}
	}

	patient := patients.FindByName(roster, name)
	if patient == nil {
		return Result{Status: StatusNeedsRegistration, PatientName: name}
	}

	if durationDays <= 0 {
		durationDays = parser.DurationFromMemo(parsed.MetaData[1])
	}
	followUp := prescribedDate.AddDate(0, 0, durationDays)

	p := &Prescription{
		ID:             uuid.New().String(),
		PatientID:      patient.ID,
		PatientName:    patient.Name,
		Herbs:          parsed.Herbs,
		WaterVolume:    parsed.MetaData[0],
		Memo:           parsed.MetaData[1],
		DurationDays:   durationDays,
		PrescribedDate: prescribedDate,
		FollowUpDate:   followUp,
		Format:         parsed.Format,
		RawText:        parsed.RawText,
		CreatedAt:      time.Now().UTC(),
	}

	appointment := schedule.BuildFollowUp(p.ID, patient.ID, patient.Name, followUp)

	return Result{
		Status:       StatusSuccess,
		Prescription: p,
		Appointment:  &appointment,
		Notification: ConfirmationMessage(p),
	}
}
