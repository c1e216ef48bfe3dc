package schedule

import (
	"fmt"
	"time"
)

// EventTypeFollowUp marks auto-generated re-consultation entries.
const EventTypeFollowUp = "prescription_followup"

// followUpColor is the fixed visual marker for auto-generated follow-ups on
// the calendar.
const followUpColor = "#8b5cf6"

// Event is a calendar entry.
type Event struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	AllDay          bool      `json:"allDay"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	Type            string    `json:"type"`
	PrescriptionID  string    `json:"prescriptionId,omitempty"`
	PatientID       string    `json:"patientId,omitempty"`
	PatientName     string    `json:"patientName,omitempty"`
}

// BuildFollowUp constructs the auto-generated re-consultation event for a
// prescription. The title carries the marker text so operators can tell it
// apart from hand-entered appointments.
func BuildFollowUp(prescriptionID, patientID, patientName string, followUpDate time.Time) Event {
	return Event{
		ID:              "prescription-" + prescriptionID,
		Title:           fmt.Sprintf("재처방 상담(자동생성) - %s", patientName),
		Start:           followUpDate,
		AllDay:          true,
		BackgroundColor: followUpColor,
		BorderColor:     followUpColor,
		Type:            EventTypeFollowUp,
		PrescriptionID:  prescriptionID,
		PatientID:       patientID,
		PatientName:     patientName,
	}
}
