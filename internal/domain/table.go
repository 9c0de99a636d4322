package domain

import "fmt"

// Table is the closed set of table names that may appear in query text.
type Table string

const (
	TableUsers        Table = "users"
	TableChildren     Table = "children"
	TableDisciplines  Table = "disciplines"
	TableGoalAreas    Table = "goal_areas"
	TableProgress     Table = "progress"
	TableSessionPlans Table = "session_plans"
)

// Tables lists every member of the allow-list in schema order.
var Tables = []Table{
	TableUsers,
	TableChildren,
	TableDisciplines,
	TableGoalAreas,
	TableProgress,
	TableSessionPlans,
}

// Valid reports whether t is in the allow-list.
func (t Table) Valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

// ParseTable converts caller text into a Table, rejecting anything outside the allow-list.
func ParseTable(s string) (Table, error) {
	t := Table(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTable, s)
	}
	return t, nil
}

// LookupList is one of the two uniqueness-constrained lookup sets.
type LookupList string

const (
	ListDisciplines LookupList = LookupList(TableDisciplines)
	ListGoalAreas   LookupList = LookupList(TableGoalAreas)
)

// Valid reports whether l is disciplines or goal_areas.
func (l LookupList) Valid() bool {
	return l == ListDisciplines || l == ListGoalAreas
}

// Table returns the backing table of the list.
func (l LookupList) Table() Table {
	return Table(l)
}

// ParseLookupList converts caller text into a LookupList.
func ParseLookupList(s string) (LookupList, error) {
	l := LookupList(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownList, s)
	}
	return l, nil
}

// Seed rows inserted at startup with insert-if-absent semantics.
var (
	SeedDisciplines = []string{"OT", "SLP", "BC", "ECE", "Assistant"}
	SeedGoalAreas   = []string{"Regulation", "Communication", "Fine Motor", "Social Play"}
)
