package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haniwon/clinic-platform/internal/parser"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

func seededService(t *testing.T) (*Service, Repository) {
	t.Helper()
	repo := NewInMemoryRepository()
	ctx := context.Background()
	seeds := []Item{
		{Name: "당귀", CurrentStock: 50, TargetStock: 100, Unit: "g"},
		{Name: "천궁", CurrentStock: 30, TargetStock: 80, Unit: "g"},
		{Name: "백작약", CurrentStock: 120, TargetStock: 100, Unit: "g"},
	}
	for i := range seeds {
		require.NoError(t, repo.Save(ctx, &seeds[i]))
	}
	return NewService(repo, logging.Default(), nil), repo
}

func TestDeduct(t *testing.T) {
	svc, repo := seededService(t)
	ctx := context.Background()

	require.NoError(t, svc.Deduct(ctx, "당귀", 10))

	item, err := repo.GetByName(ctx, "당귀")
	require.NoError(t, err)
	assert.Equal(t, 40, item.CurrentStock)
}

func TestDeductClampsAtZero(t *testing.T) {
	svc, repo := seededService(t)
	ctx := context.Background()

	require.NoError(t, svc.Deduct(ctx, "천궁", 999))

	item, err := repo.GetByName(ctx, "천궁")
	require.NoError(t, err)
	assert.Equal(t, 0, item.CurrentStock)
}

func TestDeductUnknownItem(t *testing.T) {
	svc, _ := seededService(t)

	err := svc.Deduct(context.Background(), "없는약재", 5)
	assert.True(t, errors.Is(err, ErrItemNotFound))
}

// A missing item must not stop deduction of the remaining herbs.
func TestDeductHerbsBestEffort(t *testing.T) {
	svc, repo := seededService(t)
	ctx := context.Background()

	svc.DeductHerbs(ctx, []parser.Herb{
		{Name: "당귀", AmountGrams: 10},
		{Name: "없는약재", AmountGrams: 5},
		{Name: "천궁", AmountGrams: 8},
	})

	danggui, err := repo.GetByName(ctx, "당귀")
	require.NoError(t, err)
	assert.Equal(t, 40, danggui.CurrentStock)

	cheongung, err := repo.GetByName(ctx, "천궁")
	require.NoError(t, err)
	assert.Equal(t, 22, cheongung.CurrentStock)
}

// Duplicate herb entries each deduct separately.
func TestDeductHerbsDuplicates(t *testing.T) {
	svc, repo := seededService(t)
	ctx := context.Background()

	svc.DeductHerbs(ctx, []parser.Herb{
		{Name: "당귀", AmountGrams: 10},
		{Name: "당귀", AmountGrams: 5},
	})

	item, err := repo.GetByName(ctx, "당귀")
	require.NoError(t, err)
	assert.Equal(t, 35, item.CurrentStock)
}
