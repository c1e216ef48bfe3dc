package prescription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/haniwon/clinic-platform/internal/ambiguity"
	"github.com/haniwon/clinic-platform/internal/observability/metrics"
	"github.com/haniwon/clinic-platform/internal/parser"
	"github.com/haniwon/clinic-platform/internal/patients"
	"github.com/haniwon/clinic-platform/internal/schedule"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

// Notifier posts a system notice to a chat room. Implemented by the chat
// service; kept as a local interface so this package never imports chat.
type Notifier interface {
	PostSystem(ctx context.Context, roomID, text string) error
}

// Service runs the full registration pipeline: ambiguity gate, pure workflow,
// then sequential emission of the artifacts (record, appointment, notice).
type Service struct {
	repo        Repository
	patientRepo patients.Repository
	events      schedule.Repository
	notifier    Notifier
	runs        RunRecorder
	gate        *ambiguity.Gate
	metrics     *metrics.PrescriptionMetrics
	logger      *logging.Logger
	tracer      trace.Tracer
	roomID      string
}

// NewService wires the pipeline. notifier, runs, and metrics may be nil; the
// corresponding step is then skipped.
func NewService(
	repo Repository,
	patientRepo patients.Repository,
	events schedule.Repository,
	notifier Notifier,
	runs RunRecorder,
	gate *ambiguity.Gate,
	m *metrics.PrescriptionMetrics,
	logger *logging.Logger,
	roomID string,
) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:        repo,
		patientRepo: patientRepo,
		events:      events,
		notifier:    notifier,
		runs:        runs,
		gate:        gate,
		metrics:     m,
		logger:      logger,
		tracer:      otel.Tracer("clinic-platform/prescription"),
		roomID:      roomID,
	}
}

// ProcessText runs one prescription submission end to end.
//
// The ambiguity gate runs first, before any roster lookup or side effect. A
// blocked text returns *ambiguity.BlockedError and nothing is persisted,
// deducted, scheduled, or posted.
//
// On success the artifacts are emitted sequentially without a transaction:
// prescription record, follow-up appointment, confirmation notice. A failure
// mid-sequence propagates; the run record names the artifacts already
// produced so operators can reconcile.
func (s *Service) ProcessText(ctx context.Context, text string, prescribedDate time.Time, durationDays int) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "prescription.process")
	defer span.End()

	start := time.Now()

	parsed := parser.Parse(text)
	s.metrics.ObserveParse(string(parsed.Format))
	span.SetAttributes(attribute.String("prescription.format", string(parsed.Format)))

	if finding := s.gate.Check(parsed.Herbs); finding.Blocked {
		s.metrics.ObserveGateBlocked()
		s.logger.Warn("prescription blocked by ambiguity gate", "matches", finding.Matches)
		s.recordRun(ctx, &RunRecord{RunID: uuid.New().String(), RawText: text}, RunStatusBlocked,
			fmt.Sprintf("ambiguous herb names: %v", finding.Matches))
		return Result{}, &ambiguity.BlockedError{Matches: finding.Matches, RawText: text}
	}

	roster, err := s.patientRepo.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load patient roster: %w", err)
	}

	result := Process(text, prescribedDate, durationDays, roster)
	s.metrics.ObserveWorkflow(string(result.Status), time.Since(start).Seconds())

	switch result.Status {
	case StatusError:
		s.recordRun(ctx, &RunRecord{RunID: uuid.New().String(), RawText: text}, RunStatusFailed, result.Message)
		return result, nil
	case StatusNeedsRegistration:
		s.logger.Info("prescription needs patient registration", "patient", result.PatientName)
		s.recordRun(ctx, &RunRecord{RunID: uuid.New().String(), RawText: text, PatientName: result.PatientName},
			RunStatusFailed, "patient not registered: "+result.PatientName)
		return result, nil
	}

	run := &RunRecord{
		RunID:          uuid.New().String(),
		RawText:        text,
		PrescriptionID: result.Prescription.ID,
		PatientName:    result.Prescription.PatientName,
	}
	s.putPendingRun(ctx, run)

	if err := s.repo.Create(ctx, result.Prescription); err != nil {
		s.recordRun(ctx, run, RunStatusFailed, err.Error())
		return Result{}, fmt.Errorf("failed to persist prescription: %w", err)
	}
	s.addArtifact(ctx, run, "prescription")

	if err := s.events.Create(ctx, result.Appointment); err != nil {
		s.recordRun(ctx, run, RunStatusFailed, err.Error())
		return Result{}, fmt.Errorf("failed to schedule follow-up: %w", err)
	}
	s.addArtifact(ctx, run, "appointment")

	if s.notifier != nil {
		if err := s.notifier.PostSystem(ctx, s.roomID, result.Notification); err != nil {
			s.recordRun(ctx, run, RunStatusFailed, err.Error())
			return Result{}, fmt.Errorf("failed to post confirmation notice: %w", err)
		}
		s.addArtifact(ctx, run, "notification")
	}

	s.recordRun(ctx, run, RunStatusCompleted, "")
	s.logger.Info("prescription registered",
		"id", result.Prescription.ID,
		"patient", result.Prescription.PatientName,
		"herbs", len(result.Prescription.Herbs),
		"followUp", result.Prescription.FollowUpDate.Format("2006-01-02"))
	return result, nil
}

// Run-log writes are best effort. The audit trail must never block clinical
// flow, so failures are logged and swallowed.
func (s *Service) putPendingRun(ctx context.Context, run *RunRecord) {
	if s.runs == nil {
		return
	}
	if err := s.runs.PutPending(ctx, run); err != nil {
		s.logger.Warn("failed to record workflow run", "runId", run.RunID, "error", err)
	}
}

func (s *Service) addArtifact(ctx context.Context, run *RunRecord, artifact string) {
	if s.runs == nil {
		return
	}
	if err := s.runs.AddArtifact(ctx, run.RunID, artifact); err != nil {
		s.logger.Warn("failed to record run artifact", "runId", run.RunID, "artifact", artifact, "error", err)
	}
}

func (s *Service) recordRun(ctx context.Context, run *RunRecord, status RunStatus, errMsg string) {
	if s.runs == nil {
		return
	}
	if status == RunStatusBlocked || status == RunStatusFailed {
		if run.CreatedAt == "" {
			if err := s.runs.PutPending(ctx, run); err != nil {
				s.logger.Warn("failed to record workflow run", "runId", run.RunID, "error", err)
				return
			}
		}
	}
	if err := s.runs.MarkStatus(ctx, run.RunID, status, errMsg); err != nil {
		s.logger.Warn("failed to finalize workflow run", "runId", run.RunID, "status", status, "error", err)
	}
}
