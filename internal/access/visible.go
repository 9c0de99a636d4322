// Package access decides which progress entries an identity may see.
package access

import (
	"sort"

	"tilp-connect/internal/domain"
)

// AllChildren is the staff filter value meaning "no child selected".
const AllChildren = "All Children"

// Outcome classifies a View so callers can pick the right empty-state message.
type Outcome int

const (
	OutcomeOK          Outcome = iota
	OutcomeNoData              // the store holds no progress rows at all
	OutcomeNoChildData         // rows exist but none for this child
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoData:
		return "no_data"
	case OutcomeNoChildData:
		return "no_child_data"
	default:
		return "ok"
	}
}

// View is the visible subset plus how it was derived.
type View struct {
	Entries []*domain.ProgressEntry
	Outcome Outcome
	// Child is the child the subset was narrowed to, "" when unrestricted.
	Child string
}

// Visible filters entries for identity.
//
// A scoped identity (child_link other than "All") sees only rows whose
// child_name equals its child_link; selectedChild is ignored. Staff see every
// row, narrowed to selectedChild unless it is "" or AllChildren. Matching is
// exact and input order is preserved.
func Visible(identity domain.Identity, entries []*domain.ProgressEntry, selectedChild string) View {
	if len(entries) == 0 {
		return View{Entries: []*domain.ProgressEntry{}, Outcome: OutcomeNoData}
	}

	child := ""
	if identity.Scoped() {
		child = identity.ChildLink
	} else if selectedChild != "" && selectedChild != AllChildren {
		child = selectedChild
	}

	if child == "" {
		out := make([]*domain.ProgressEntry, len(entries))
		copy(out, entries)
		return View{Entries: out, Outcome: OutcomeOK}
	}

	out := []*domain.ProgressEntry{}
	for _, e := range entries {
		if e.ChildName == child {
			out = append(out, e)
		}
	}
	v := View{Entries: out, Outcome: OutcomeOK, Child: child}
	if len(out) == 0 {
		v.Outcome = OutcomeNoChildData
	}
	return v
}

// ChildOptions returns the staff child filter: AllChildren followed by the
// sorted distinct child names found in entries.
func ChildOptions(entries []*domain.ProgressEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ChildName]; ok {
			continue
		}
		seen[e.ChildName] = struct{}{}
		names = append(names, e.ChildName)
	}
	sort.Strings(names)
	return append([]string{AllChildren}, names...)
}

// IsStaff reports whether role may use the tracker and planner.
func IsStaff(role string) bool {
	return role != "" && role != domain.RoleParent
}

// IsAdmin reports whether role may use the admin tools.
func IsAdmin(role string) bool {
	return role == domain.RoleAdmin
}
