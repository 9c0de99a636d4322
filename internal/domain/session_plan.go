package domain

import "time"

// SessionPlan maps the session_plans table. Rows are append-only.
type SessionPlan struct {
	ID              int64     `db:"id"`
	Date            time.Time `db:"date"`
	LeadStaff       string    `db:"lead_staff"`
	SupportStaff    string    `db:"support_staff"` // comma-joined
	WarmUp          string    `db:"warm_up"`
	LearningBlock   string    `db:"learning_block"`
	RegulationBreak string    `db:"regulation_break"`
	SocialPlay      string    `db:"social_play"`
	ClosingRoutine  string    `db:"closing_routine"`
	MaterialsNeeded string    `db:"materials_needed"`
	InternalNotes   string    `db:"internal_notes"`
}

// Choices offered by the daily planner form.
var (
	LeadStaffOptions    = []string{"ECE - Lead", "Lead OT", "SLP - Lead", "BC - Lead", "Assistant/BI"}
	SupportStaffOptions = []string{"Assistant/BI", "Volunteer", "OT-Assistant", "SLP-Assistant", "None"}
)
