package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilp-connect/internal/access"
	"tilp-connect/internal/domain"
	"tilp-connect/internal/repository"
)

func seedDashboard(t *testing.T) *repository.MemoryStore {
	st := newTestStore(t)
	mustAppend(t, st, "2024-01-01", "Tony Smith", "Regulation", domain.StatusProgress)
	mustAppend(t, st, "2024-01-02", "Tony Smith", "Regulation", domain.StatusStable)
	mustAppend(t, st, "2024-01-03", "Tony Smith", "Communication", domain.StatusProgress)
	mustAppend(t, st, "2024-01-05", "Tony Smith", "Communication", domain.StatusProgress)
	mustAppend(t, st, "2024-01-04", "Tony Smith", "Fine Motor", domain.StatusRegression)
	mustAppend(t, st, "2024-01-02", "Sara Jones", "Social Play", domain.StatusStable)
	mustAppend(t, st, "2024-01-03", "Sara Jones", "Social Play", domain.StatusStable)
	mustAppend(t, st, "2024-01-04", "Sara Jones", "Social Play", domain.StatusRegression)
	return st
}

func TestDashboard_Parent(t *testing.T) {
	svc := NewDashboardService(seedDashboard(t), nopLogger)

	resp, err := svc.Dashboard(ctxBg, tonyID, "Sara Jones")

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Outcome)
	assert.Equal(t, "Tony Smith", resp.SelectedChild)
	assert.Nil(t, resp.ChildOptions)
	assert.Equal(t, 5, resp.Summary.Total)
	assert.Equal(t, 60, resp.Summary.ProgressRate)
	assert.Equal(t, domain.StatusProgress, resp.Summary.LatestStatus)
	require.Len(t, resp.Entries, 5)
	assert.Equal(t, "2024-01-05", resp.Entries[0].Date)
	assert.Equal(t, "2024-01-01", resp.Entries[4].Date)
	for _, e := range resp.Entries {
		assert.Equal(t, "Tony Smith", e.ChildName)
	}
	assert.Len(t, resp.Trend, 5)
	assert.Equal(t, "2024-01-01", resp.Trend[0].Date)
	require.Len(t, resp.Distribution, 3)
	assert.Equal(t, "Regulation", resp.Distribution[0].GoalArea)
}

func TestDashboard_StaffFilter(t *testing.T) {
	svc := NewDashboardService(seedDashboard(t), nopLogger)

	all, err := svc.Dashboard(ctxBg, otID, access.AllChildren)
	require.NoError(t, err)
	assert.Equal(t, 8, all.Summary.Total)
	assert.Equal(t, []string{access.AllChildren, "Sara Jones", "Tony Smith"}, all.ChildOptions)

	sara, err := svc.Dashboard(ctxBg, otID, "Sara Jones")
	require.NoError(t, err)
	assert.Equal(t, 3, sara.Summary.Total)
	assert.Equal(t, 0, sara.Summary.ProgressRate)
	assert.Equal(t, domain.StatusRegression, sara.Summary.LatestStatus)
}

func TestDashboard_NoData(t *testing.T) {
	svc := NewDashboardService(newTestStore(t), nopLogger)

	resp, err := svc.Dashboard(ctxBg, tonyID, "")

	require.NoError(t, err)
	assert.Equal(t, "no_data", resp.Outcome)
	assert.Equal(t, MessageNoData, resp.Message)
	assert.Empty(t, resp.Entries)
	assert.Equal(t, 0, resp.Summary.ProgressRate)
}

func TestDashboard_NoChildData(t *testing.T) {
	st := newTestStore(t)
	mustAppend(t, st, "2024-01-02", "Sara Jones", "Social Play", domain.StatusStable)
	svc := NewDashboardService(st, nopLogger)

	resp, err := svc.Dashboard(ctxBg, tonyID, "")

	require.NoError(t, err)
	assert.Equal(t, "no_child_data", resp.Outcome)
	assert.Equal(t, MessageNoChildData, resp.Message)
	assert.Empty(t, resp.Entries)
}

func TestCanViewMedia(t *testing.T) {
	st := newTestStore(t)
	for _, e := range []domain.ProgressEntry{
		{ChildName: "Tony Smith", GoalArea: "Regulation", Status: domain.StatusStable, MediaPath: "media/tony.png"},
		{ChildName: "Sara Jones", GoalArea: "Regulation", Status: domain.StatusStable, MediaPath: "media/sara.png"},
	} {
		e := e
		require.NoError(t, st.AppendProgressEntry(ctxBg, &e))
	}
	svc := NewDashboardService(st, nopLogger)

	ok, err := svc.CanViewMedia(ctxBg, tonyID, "media/tony.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanViewMedia(ctxBg, tonyID, "media/sara.png")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanViewMedia(ctxBg, otID, "media/sara.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanViewMedia(ctxBg, otID, "")
	require.NoError(t, err)
	assert.False(t, ok)
}
