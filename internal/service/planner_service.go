package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tilp-connect/internal/domain"
	"tilp-connect/internal/repository"

	"go.uber.org/zap"
)

// PlannerService daily session plans.
type PlannerService struct {
	plans  repository.SessionPlansRepository
	logger *zap.Logger
}

// NewPlannerService creates the planner service.
func NewPlannerService(plans repository.SessionPlansRepository, logger *zap.Logger) *PlannerService {
	return &PlannerService{plans: plans, logger: logger}
}

// PlannerOptions staff choices offered by the plan form.
type PlannerOptions struct {
	LeadStaff    []string `json:"lead_staff"`
	SupportStaff []string `json:"support_staff"`
}

// Options returns the fixed staff choices.
func (s *PlannerService) Options(identity domain.Identity) (*PlannerOptions, error) {
	if err := requireStaff(identity); err != nil {
		return nil, err
	}
	return &PlannerOptions{
		LeadStaff:    domain.LeadStaffOptions,
		SupportStaff: domain.SupportStaffOptions,
	}, nil
}

// SavePlanRequest the plan form.
type SavePlanRequest struct {
	Date            string   `json:"date"`
	LeadStaff       string   `json:"lead_staff"`
	SupportStaff    []string `json:"support_staff"`
	WarmUp          string   `json:"warm_up"`
	LearningBlock   string   `json:"learning_block"`
	RegulationBreak string   `json:"regulation_break"`
	SocialPlay      string   `json:"social_play"`
	ClosingRoutine  string   `json:"closing_routine"`
	MaterialsNeeded string   `json:"materials_needed"`
	InternalNotes   string   `json:"internal_notes"`
}

// PlanItem session plan for the API.
type PlanItem struct {
	ID              int64  `json:"id,omitempty"`
	Date            string `json:"date"`
	LeadStaff       string `json:"lead_staff"`
	SupportStaff    string `json:"support_staff"`
	WarmUp          string `json:"warm_up"`
	LearningBlock   string `json:"learning_block"`
	RegulationBreak string `json:"regulation_break"`
	SocialPlay      string `json:"social_play"`
	ClosingRoutine  string `json:"closing_routine"`
	MaterialsNeeded string `json:"materials_needed"`
	InternalNotes   string `json:"internal_notes"`
}

func toPlanItem(p *domain.SessionPlan) PlanItem {
	return PlanItem{
		ID:              p.ID,
		Date:            p.Date.Format(domain.DateLayout),
		LeadStaff:       p.LeadStaff,
		SupportStaff:    p.SupportStaff,
		WarmUp:          p.WarmUp,
		LearningBlock:   p.LearningBlock,
		RegulationBreak: p.RegulationBreak,
		SocialPlay:      p.SocialPlay,
		ClosingRoutine:  p.ClosingRoutine,
		MaterialsNeeded: p.MaterialsNeeded,
		InternalNotes:   p.InternalNotes,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// SavePlan validates and appends a session plan. Support staff are stored as
// one ", "-joined string.
func (s *PlannerService) SavePlan(ctx context.Context, identity domain.Identity, req SavePlanRequest) (*PlanItem, error) {
	if err := requireStaff(identity); err != nil {
		return nil, err
	}
	date, err := time.Parse(domain.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", req.Date, domain.ErrInvalidArgument)
	}
	if !contains(domain.LeadStaffOptions, req.LeadStaff) {
		return nil, fmt.Errorf("unknown lead staff %q: %w", req.LeadStaff, domain.ErrInvalidArgument)
	}
	for _, st := range req.SupportStaff {
		if !contains(domain.SupportStaffOptions, st) {
			return nil, fmt.Errorf("unknown support staff %q: %w", st, domain.ErrInvalidArgument)
		}
	}

	plan := &domain.SessionPlan{
		Date:            date,
		LeadStaff:       req.LeadStaff,
		SupportStaff:    strings.Join(req.SupportStaff, ", "),
		WarmUp:          req.WarmUp,
		LearningBlock:   req.LearningBlock,
		RegulationBreak: req.RegulationBreak,
		SocialPlay:      req.SocialPlay,
		ClosingRoutine:  req.ClosingRoutine,
		MaterialsNeeded: req.MaterialsNeeded,
		InternalNotes:   req.InternalNotes,
	}
	if err := s.plans.AppendSessionPlan(ctx, plan); err != nil {
		s.logger.Error("Failed to save session plan", zap.String("date", req.Date), zap.Error(err))
		return nil, fmt.Errorf("failed to save session plan: %w", err)
	}

	s.logger.Info("Session plan saved",
		zap.String("username", identity.Username),
		zap.String("date", req.Date),
		zap.String("lead_staff", plan.LeadStaff),
	)
	item := toPlanItem(plan)
	return &item, nil
}

// ListPlans returns every stored plan in insertion order.
func (s *PlannerService) ListPlans(ctx context.Context, identity domain.Identity) ([]PlanItem, error) {
	if err := requireStaff(identity); err != nil {
		return nil, err
	}
	plans, err := s.plans.ListSessionPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list session plans: %w", err)
	}
	items := make([]PlanItem, 0, len(plans))
	for _, p := range plans {
		items = append(items, toPlanItem(p))
	}
	return items, nil
}
