package service

import (
	"context"
	"fmt"

	"tilp-connect/internal/access"
	"tilp-connect/internal/aggregator"
	"tilp-connect/internal/domain"
	"tilp-connect/internal/repository"

	"go.uber.org/zap"
)

// Empty-state messages shown instead of charts.
const (
	MessageNoData      = "No progress data recorded yet."
	MessageNoChildData = "No data found for this child."
)

// DashboardService progress dashboard for staff and parents.
type DashboardService struct {
	progress repository.ProgressRepository
	logger   *zap.Logger
}

// NewDashboardService creates the dashboard service.
func NewDashboardService(progress repository.ProgressRepository, logger *zap.Logger) *DashboardService {
	return &DashboardService{progress: progress, logger: logger}
}

// EntryItem progress entry for the API.
type EntryItem struct {
	ID         int64  `json:"id,omitempty"`
	Date       string `json:"date"`
	ChildName  string `json:"child_name"`
	Discipline string `json:"discipline"`
	GoalArea   string `json:"goal_area"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
	MediaPath  string `json:"media_path"`
}

func toEntryItem(e *domain.ProgressEntry) EntryItem {
	return EntryItem{
		ID:         e.ID,
		Date:       e.Date.Format(domain.DateLayout),
		ChildName:  e.ChildName,
		Discipline: e.Discipline,
		GoalArea:   e.GoalArea,
		Status:     string(e.Status),
		Notes:      e.Notes,
		MediaPath:  e.MediaPath,
	}
}

// DashboardResponse everything the dashboard page renders.
type DashboardResponse struct {
	Outcome       string                      `json:"outcome"`
	Message       string                      `json:"message,omitempty"`
	SelectedChild string                      `json:"selected_child,omitempty"`
	ChildOptions  []string                    `json:"child_options,omitempty"` // staff only
	Summary       aggregator.Summary          `json:"summary"`
	Entries       []EntryItem                 `json:"entries"` // newest first
	Trend         []aggregator.TrendPoint     `json:"trend"`
	Distribution  []aggregator.GoalAreaCounts `json:"distribution"`
}

// Dashboard builds the dashboard of identity. selectedChild is honoured for
// staff only.
func (s *DashboardService) Dashboard(ctx context.Context, identity domain.Identity, selectedChild string) (*DashboardResponse, error) {
	all, err := s.progress.ListProgressEntries(ctx)
	if err != nil {
		s.logger.Error("Failed to load progress entries", zap.String("username", identity.Username), zap.Error(err))
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	view := access.Visible(identity, all, selectedChild)
	resp := &DashboardResponse{
		Outcome:       view.Outcome.String(),
		SelectedChild: view.Child,
		Entries:       []EntryItem{},
		Trend:         []aggregator.TrendPoint{},
		Distribution:  []aggregator.GoalAreaCounts{},
	}
	if !identity.Scoped() {
		resp.ChildOptions = access.ChildOptions(all)
	}

	switch view.Outcome {
	case access.OutcomeNoData:
		resp.Message = MessageNoData
		return resp, nil
	case access.OutcomeNoChildData:
		resp.Message = MessageNoChildData
		return resp, nil
	}

	resp.Summary = aggregator.Summarize(view.Entries)
	for _, e := range aggregator.SortByDateDesc(view.Entries) {
		resp.Entries = append(resp.Entries, toEntryItem(e))
	}
	if resp.Trend, err = aggregator.Trend(view.Entries); err != nil {
		return nil, fmt.Errorf("failed to build trend: %w", err)
	}
	if resp.Distribution, err = aggregator.Distribution(view.Entries); err != nil {
		return nil, fmt.Errorf("failed to build distribution: %w", err)
	}
	return resp, nil
}

// CanViewMedia reports whether path is attached to an entry identity can see.
func (s *DashboardService) CanViewMedia(ctx context.Context, identity domain.Identity, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	all, err := s.progress.ListProgressEntries(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load progress: %w", err)
	}
	for _, e := range access.Visible(identity, all, access.AllChildren).Entries {
		if e.MediaPath == path {
			return true, nil
		}
	}
	return false, nil
}
