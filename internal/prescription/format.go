package prescription

import (
	"fmt"
	"strings"

	"github.com/haniwon/clinic-platform/internal/parser"
)

// DetailString renders an herb list as "당귀 10g, 천궁 8g" in extraction order.
func DetailString(herbs []parser.Herb) string {
	parts := make([]string, 0, len(herbs))
	for _, herb := range herbs {
		parts = append(parts, fmt.Sprintf("%s %dg", herb.Name, herb.AmountGrams))
	}
	return strings.Join(parts, ", ")
}

// ConfirmationMessage builds the system notice posted to the prescription
// room after a successful registration. The labeled layout intentionally
// mirrors the paste format so the notice itself reparses as a system-format
// prescription.
func ConfirmationMessage(p *Prescription) string {
	var b strings.Builder
	b.WriteString("📋 [처방 등록 완료]\n")
	fmt.Fprintf(&b, "성함: %s\n", p.PatientName)
	fmt.Fprintf(&b, "약재: %s\n", DetailString(p.Herbs))
	if p.WaterVolume != "" {
		fmt.Fprintf(&b, "물량: %s\n", p.WaterVolume)
	}
	if p.Memo != "" {
		fmt.Fprintf(&b, "비고: %s\n", p.Memo)
	}
	fmt.Fprintf(&b, "복용 기간: %d일\n", p.DurationDays)
	fmt.Fprintf(&b, "재처방 예정일: %d월 %d일", int(p.FollowUpDate.Month()), p.FollowUpDate.Day())
	return b.String()
}
