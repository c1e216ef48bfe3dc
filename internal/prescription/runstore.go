package prescription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/haniwon/clinic-platform/pkg/logging"
)

const runTTL = 30 * 24 * time.Hour

// RunStatus represents the lifecycle of a workflow run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusPartial   RunStatus = "partial"
	RunStatusCompleted RunStatus = "completed"
	RunStatusBlocked   RunStatus = "blocked"
	RunStatusFailed    RunStatus = "failed"
)

// ErrRunNotFound indicates the requested run ID does not exist.
var ErrRunNotFound = errors.New("prescription: run not found")

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// RunRecord captures what a workflow run did and how far it got. Side effects
// happen sequentially without a transaction, so a run that dies mid-way leaves
// a partial record naming the artifacts already produced.
type RunRecord struct {
	RunID          string    `dynamodbav:"runId" json:"runId"`
	Status         RunStatus `dynamodbav:"status" json:"status"`
	PrescriptionID string    `dynamodbav:"prescriptionId,omitempty" json:"prescriptionId,omitempty"`
	PatientName    string    `dynamodbav:"patientName,omitempty" json:"patientName,omitempty"`
	RawText        string    `dynamodbav:"rawText" json:"rawText"`
	Artifacts      []string  `dynamodbav:"artifacts,omitempty" json:"artifacts,omitempty"`
	ErrorMessage   string    `dynamodbav:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt      string    `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      string    `dynamodbav:"updatedAt" json:"updatedAt"`
	ExpiresAt      int64     `dynamodbav:"expiresAt,omitempty" json:"-"`
}

// RunRecorder persists workflow run records for after-the-fact auditing.
type RunRecorder interface {
	PutPending(ctx context.Context, run *RunRecord) error
	AddArtifact(ctx context.Context, runID, artifact string) error
	MarkStatus(ctx context.Context, runID string, status RunStatus, errMsg string) error
	GetRun(ctx context.Context, runID string) (*RunRecord, error)
}

// RunStore persists run records to DynamoDB.
type RunStore struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

var _ RunRecorder = (*RunStore)(nil)

// NewRunStore builds a store backed by the provided DynamoDB client.
func NewRunStore(client dynamoAPI, tableName string, logger *logging.Logger) *RunStore {
	if client == nil {
		panic("prescription: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("prescription: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RunStore{client: client, tableName: tableName, logger: logger}
}

// PutPending inserts a new pending run record.
func (s *RunStore) PutPending(ctx context.Context, run *RunRecord) error {
	if run == nil {
		return errors.New("prescription: run cannot be nil")
	}
	now := time.Now().UTC()
	run.Status = RunStatusPending
	run.CreatedAt = now.Format(time.RFC3339Nano)
	run.UpdatedAt = run.CreatedAt
	if run.ExpiresAt == 0 {
		run.ExpiresAt = now.Add(runTTL).Unix()
	}

	item, err := attributevalue.MarshalMap(run)
	if err != nil {
		return fmt.Errorf("prescription: failed to marshal run: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(runId)"),
	})
	if err != nil {
		return fmt.Errorf("prescription: failed to persist run: %w", err)
	}
	return nil
}

// AddArtifact appends an artifact name (e.g. "prescription", "appointment",
// "notification") and moves the run to partial.
func (s *RunStore) AddArtifact(ctx context.Context, runID, artifact string) error {
	if runID == "" {
		return errors.New("prescription: runID required")
	}
	return s.updateRun(
		ctx,
		runID,
		map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(RunStatusPartial)},
			":artifact": &types.AttributeValueMemberL{Value: []types.AttributeValue{
				&types.AttributeValueMemberS{Value: artifact},
			}},
			":empty":   &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		map[string]string{
			"#status":    "status",
			"#artifacts": "artifacts",
			"#updated":   "updatedAt",
		},
		"SET #status = :status, #artifacts = list_append(if_not_exists(#artifacts, :empty), :artifact), #updated = :updated",
	)
}

// MarkStatus sets the final status of a run.
func (s *RunStore) MarkStatus(ctx context.Context, runID string, status RunStatus, errMsg string) error {
	if runID == "" {
		return errors.New("prescription: runID required")
	}
	return s.updateRun(
		ctx,
		runID,
		map[string]types.AttributeValue{
			":status":  &types.AttributeValueMemberS{Value: string(status)},
			":error":   &types.AttributeValueMemberS{Value: errMsg},
			":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		map[string]string{
			"#status":  "status",
			"#error":   "errorMessage",
			"#updated": "updatedAt",
		},
		"SET #status = :status, #error = :error, #updated = :updated",
	)
}

// GetRun fetches a run by ID.
func (s *RunStore) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	if runID == "" {
		return nil, errors.New("prescription: runID required")
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"runId": &types.AttributeValueMemberS{Value: runID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("prescription: failed to fetch run: %w", err)
	}
	if out.Item == nil {
		return nil, ErrRunNotFound
	}

	var run RunRecord
	if err := attributevalue.UnmarshalMap(out.Item, &run); err != nil {
		return nil, fmt.Errorf("prescription: failed to decode run: %w", err)
	}
	return &run, nil
}

func (s *RunStore) updateRun(ctx context.Context, runID string, values map[string]types.AttributeValue, names map[string]string, expression string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"runId": &types.AttributeValueMemberS{Value: runID},
		},
		UpdateExpression:          aws.String(expression),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ConditionExpression:       aws.String("attribute_exists(runId)"),
	})
	if err != nil {
		return fmt.Errorf("prescription: failed to update run %s: %w", runID, err)
	}
	return nil
}
