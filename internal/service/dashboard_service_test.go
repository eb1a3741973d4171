package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/securohelp/case-service/internal/domain"
)

func TestDashboardStatsWithoutCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c := f.createCase(t)
	f.createCase(t)
	_, err := f.service.ApplyTransition(ctx, c.ID, f.statusID(t, domain.StatusCodeDocuments), "", f.actorID)
	require.NoError(t, err)

	dashboard := NewDashboardService(f.store, nil, time.Minute, zap.NewNop())
	stats, err := dashboard.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalCases)
	assert.Equal(t, 1, stats.TotalClients)

	counts := make(map[string]int)
	for _, row := range stats.CasesByStatus {
		counts[row.Code] = row.Count
	}
	assert.Equal(t, 1, counts["NEW"])
	assert.Equal(t, 1, counts["DOCUMENTS"])
}

func TestDashboardRecentCasesNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createCase(t)
	second := f.createCase(t)

	dashboard := NewDashboardService(f.store, nil, time.Minute, zap.NewNop())
	recent, err := dashboard.RecentCases(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Insertion order ties on CreatedAt are possible with a coarse clock, so
	// only membership and shape are asserted.
	ids := map[string]bool{recent[0].ID: true, recent[1].ID: true}
	assert.True(t, ids[first.ID])
	assert.True(t, ids[second.ID])
	assert.NotEmpty(t, recent[0].CaseNumber)
	assert.NotEmpty(t, recent[0].StatusName)
}
