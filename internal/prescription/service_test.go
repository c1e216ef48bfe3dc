package prescription

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haniwon/clinic-platform/internal/ambiguity"
	"github.com/haniwon/clinic-platform/internal/patients"
	"github.com/haniwon/clinic-platform/internal/schedule"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

type fakeNotifier struct {
	posts []string
	rooms []string
	err   error
}

func (f *fakeNotifier) PostSystem(ctx context.Context, roomID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.rooms = append(f.rooms, roomID)
	f.posts = append(f.posts, text)
	return nil
}

type fakeRunRecorder struct {
	pending   []RunRecord
	artifacts []string
	statuses  []RunStatus
}

func (f *fakeRunRecorder) PutPending(ctx context.Context, run *RunRecord) error {
	run.CreatedAt = "recorded"
	f.pending = append(f.pending, *run)
	return nil
}

func (f *fakeRunRecorder) AddArtifact(ctx context.Context, runID, artifact string) error {
	f.artifacts = append(f.artifacts, artifact)
	return nil
}

func (f *fakeRunRecorder) MarkStatus(ctx context.Context, runID string, status RunStatus, errMsg string) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeRunRecorder) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	return nil, ErrRunNotFound
}

type pipeline struct {
	service  *Service
	repo     *InMemoryRepository
	patients *patients.InMemoryRepository
	events   *schedule.InMemoryRepository
	notifier *fakeNotifier
	runs     *fakeRunRecorder
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	p := &pipeline{
		repo:     NewInMemoryRepository(),
		patients: patients.NewInMemoryRepository(),
		events:   schedule.NewInMemoryRepository(),
		notifier: &fakeNotifier{},
		runs:     &fakeRunRecorder{},
	}

	_, err := p.patients.Create(context.Background(), &patients.CreatePatientRequest{Name: "김철수"})
	require.NoError(t, err)

	p.service = NewService(
		p.repo, p.patients, p.events, p.notifier, p.runs,
		ambiguity.NewGate([]string{"작약", "복령"}),
		nil, logging.Default(), "prescription",
	)
	return p
}

func TestServiceProcessTextSuccess(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	text := "김철수님\n당귀 10g 천궁 8g\n물 1000ml\n식후 1시간"
	result, err := p.service.ProcessText(ctx, text, date("2024-03-01"), 0)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, result.Status)

	stored, err := p.repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "김철수", stored[0].PatientName)

	events, err := p.events.ListRange(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, date("2024-03-16"), events[0].Start)

	require.Len(t, p.notifier.posts, 1)
	assert.Contains(t, p.notifier.posts[0], "처방 등록 완료")
	assert.Equal(t, []string{"prescription"}, p.notifier.rooms)

	assert.Equal(t, []string{"prescription", "appointment", "notification"}, p.runs.artifacts)
	assert.Equal(t, []RunStatus{RunStatusCompleted}, p.runs.statuses)
}

// An ambiguous herb name blocks everything: no record, no appointment, no
// notice, no run artifacts.
func TestServiceProcessTextBlocked(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	text := "김철수님\n복령 10g 당귀 8g\n물 1000ml\n"
	_, err := p.service.ProcessText(ctx, text, date("2024-03-01"), 0)

	var blocked *ambiguity.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{"복령"}, blocked.Matches)
	assert.Equal(t, text, blocked.RawText)

	stored, _ := p.repo.List(ctx)
	assert.Empty(t, stored)
	events, _ := p.events.ListRange(ctx, "", "")
	assert.Empty(t, events)
	assert.Empty(t, p.notifier.posts)
	assert.Empty(t, p.runs.artifacts)
	assert.Equal(t, []RunStatus{RunStatusBlocked}, p.runs.statuses)
}

// The gate runs before the roster lookup: an ambiguous text for an
// unregistered patient reports the block, not the missing registration.
func TestServiceGateRunsBeforeRosterLookup(t *testing.T) {
	p := newPipeline(t)

	text := "이지은님\n작약 10g\n물\n"
	_, err := p.service.ProcessText(context.Background(), text, date("2024-03-01"), 0)

	var blocked *ambiguity.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{"작약"}, blocked.Matches)
}

func TestServiceProcessTextNeedsRegistration(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	result, err := p.service.ProcessText(ctx, "이지은님\n당귀 10g\n물\n", date("2024-03-01"), 0)
	require.NoError(t, err)
	assert.Equal(t, StatusNeedsRegistration, result.Status)
	assert.Equal(t, "이지은", result.PatientName)

	stored, _ := p.repo.List(ctx)
	assert.Empty(t, stored)
	events, _ := p.events.ListRange(ctx, "", "")
	assert.Empty(t, events)
	assert.Empty(t, p.notifier.posts)
}

// A notice failure after the record and appointment were written leaves a
// failed run naming the artifacts that did land.
func TestServiceNotifierFailureLeavesPartialRun(t *testing.T) {
	p := newPipeline(t)
	p.notifier.err = errors.New("redis down")
	ctx := context.Background()

	_, err := p.service.ProcessText(ctx, "김철수님\n당귀 10g\n물\n", date("2024-03-01"), 0)
	require.Error(t, err)

	stored, _ := p.repo.List(ctx)
	assert.Len(t, stored, 1)
	assert.Equal(t, []string{"prescription", "appointment"}, p.runs.artifacts)
	assert.Equal(t, []RunStatus{RunStatusFailed}, p.runs.statuses)
}

func TestServiceNilOptionalDependencies(t *testing.T) {
	p := newPipeline(t)
	svc := NewService(
		p.repo, p.patients, p.events, nil, nil,
		ambiguity.NewGate(nil), nil, nil, "prescription",
	)

	result, err := svc.ProcessText(context.Background(), "김철수님\n당귀 10g\n물\n", date("2024-03-01"), 0)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
}
