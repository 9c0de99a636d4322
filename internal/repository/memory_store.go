package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"tilp-connect/internal/domain"
)

// MemoryStore keeps the clinic schema in process memory.
// Used when DB is disabled (local runs) and as the fake store in tests.
type MemoryStore struct {
	mu sync.RWMutex

	users       map[string]domain.User
	children    []domain.Child
	lists       map[domain.LookupList]map[string]struct{}
	progress    []domain.ProgressEntry
	plans       []domain.SessionPlan
	nextChildID int64
	nextEntryID int64
	nextPlanID  int64
}

// NewMemoryStore returns an empty store; call Seed to load the default rows.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: map[string]domain.User{},
		lists: map[domain.LookupList]map[string]struct{}{
			domain.ListDisciplines: {},
			domain.ListGoalAreas:   {},
		},
	}
}

var _ Store = (*MemoryStore)(nil)

// Seed inserts the same rows as InitSchema, insert-if-absent.
func (s *MemoryStore) Seed(opts SeedOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Admin {
		s.insertUserIfAbsent(DefaultAdmin)
	}
	for _, name := range domain.SeedDisciplines {
		s.lists[domain.ListDisciplines][name] = struct{}{}
	}
	for _, name := range domain.SeedGoalAreas {
		s.lists[domain.ListGoalAreas][name] = struct{}{}
	}
	if opts.Demo {
		for _, u := range DemoUsers {
			s.insertUserIfAbsent(u)
		}
		for _, c := range DemoChildren {
			if s.childIndex(c.ChildName) >= 0 {
				continue
			}
			s.nextChildID++
			child := domain.Child{ID: s.nextChildID, ChildName: c.ChildName}
			child.ParentUsername.String, child.ParentUsername.Valid = c.Parent, true
			s.children = append(s.children, child)
		}
	}
}

func (s *MemoryStore) insertUserIfAbsent(u domain.User) {
	if _, ok := s.users[u.Username]; !ok {
		s.users[u.Username] = u
	}
}

func (s *MemoryStore) childIndex(name string) int {
	for i := range s.children {
		if s.children[i].ChildName == name {
			return i
		}
	}
	return -1
}

// --- users ---

func (s *MemoryStore) Authenticate(_ context.Context, username, password string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok || username == "" || password == "" || u.Password != password {
		return nil, fmt.Errorf("authenticate: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) GetUser(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return nil, fmt.Errorf("get user: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *MemoryStore) UpsertUser(_ context.Context, user *domain.User) error {
	if user == nil || user.Username == "" {
		return fmt.Errorf("upsert user: username is required: %w", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.Username] = *user
	return nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return fmt.Errorf("delete user %q: %w", username, domain.ErrNotFound)
	}
	delete(s.users, username)
	return nil
}

// --- children ---

func (s *MemoryStore) GetChild(_ context.Context, childName string) (*domain.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.childIndex(childName)
	if i < 0 || childName == "" {
		return nil, fmt.Errorf("get child: %w", domain.ErrNotFound)
	}
	c := s.children[i]
	return &c, nil
}

func (s *MemoryStore) ListChildren(ctx context.Context) ([]*domain.Child, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Child, 0, len(s.children))
	for _, c := range s.children {
		c := c
		out = append(out, &c)
	}
	return out, nil
}

func (s *MemoryStore) UpsertChild(_ context.Context, child *domain.Child) error {
	if child == nil || child.ChildName == "" {
		return fmt.Errorf("upsert child: child_name is required: %w", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.childIndex(child.ChildName); i >= 0 {
		s.children[i].ParentUsername = child.ParentUsername
		s.children[i].DateOfBirth = child.DateOfBirth
		return nil
	}
	s.nextChildID++
	c := *child
	c.ID = s.nextChildID
	s.children = append(s.children, c)
	return nil
}

func (s *MemoryStore) SaveChildWithParent(_ context.Context, child *domain.Child, parent *domain.User) error {
	if child == nil || child.ChildName == "" {
		return fmt.Errorf("save child: child_name is required: %w", domain.ErrInvalidArgument)
	}
	if parent == nil || parent.Username == "" {
		return fmt.Errorf("save child: parent username is required: %w", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.childIndex(child.ChildName); i >= 0 {
		s.children[i].ParentUsername = child.ParentUsername
		s.children[i].DateOfBirth = child.DateOfBirth
	} else {
		s.nextChildID++
		c := *child
		c.ID = s.nextChildID
		s.children = append(s.children, c)
	}
	s.users[parent.Username] = *parent
	return nil
}

func (s *MemoryStore) DeleteChild(_ context.Context, childName string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.childIndex(childName)
	if i < 0 || childName == "" {
		return nil, fmt.Errorf("delete child %q: %w", childName, domain.ErrNotFound)
	}

	var unlinked []string
	for name, u := range s.users {
		if u.ChildLink == childName {
			u.ChildLink = domain.ChildLinkNone
			s.users[name] = u
			unlinked = append(unlinked, name)
		}
	}
	sort.Strings(unlinked)

	s.children = append(s.children[:i], s.children[i+1:]...)
	return unlinked, nil
}

// --- lookup lists ---

func (s *MemoryStore) ListItems(ctx context.Context, list domain.LookupList) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !list.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownList, string(list))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.lists[list]))
	for name := range s.lists[list] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) UpsertListItem(_ context.Context, list domain.LookupList, name string) error {
	if !list.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownList, string(list))
	}
	if name == "" {
		return fmt.Errorf("upsert %s item: name is required: %w", list, domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lists[list][name] = struct{}{}
	return nil
}

func (s *MemoryStore) DeleteListItem(_ context.Context, list domain.LookupList, name string) error {
	if !list.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownList, string(list))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[list][name]; !ok {
		return fmt.Errorf("delete %s item %q: %w", list, name, domain.ErrNotFound)
	}
	delete(s.lists[list], name)
	return nil
}

// --- history ---

func (s *MemoryStore) AppendProgressEntry(_ context.Context, entry *domain.ProgressEntry) error {
	if entry == nil {
		return fmt.Errorf("append progress entry: %w", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEntryID++
	e := *entry
	e.ID = s.nextEntryID
	s.progress = append(s.progress, e)
	return nil
}

func (s *MemoryStore) ListProgressEntries(ctx context.Context) ([]*domain.ProgressEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ProgressEntry, 0, len(s.progress))
	for _, e := range s.progress {
		e := e
		out = append(out, &e)
	}
	return out, nil
}

func (s *MemoryStore) AppendSessionPlan(_ context.Context, plan *domain.SessionPlan) error {
	if plan == nil {
		return fmt.Errorf("append session plan: %w", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPlanID++
	p := *plan
	p.ID = s.nextPlanID
	s.plans = append(s.plans, p)
	return nil
}

func (s *MemoryStore) ListSessionPlans(ctx context.Context) ([]*domain.SessionPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.SessionPlan, 0, len(s.plans))
	for _, p := range s.plans {
		p := p
		out = append(out, &p)
	}
	return out, nil
}

// --- raw tables ---

func (s *MemoryStore) ReadAll(ctx context.Context, table domain.Table) ([]Record, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTable, string(table))
	}

	out := []Record{}
	switch table {
	case domain.TableUsers:
		users, err := s.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			out = append(out, Record{
				"username":   u.Username,
				"password":   u.Password,
				"role":       u.Role,
				"child_link": u.ChildLink,
			})
		}
	case domain.TableChildren:
		children, err := s.ListChildren(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			rec := Record{"id": c.ID, "child_name": c.ChildName, "parent_username": nil, "date_of_birth": nil}
			if c.ParentUsername.Valid {
				rec["parent_username"] = c.ParentUsername.String
			}
			if c.DateOfBirth.Valid {
				rec["date_of_birth"] = c.DateOfBirth.Time.Format(domain.DateLayout)
			}
			out = append(out, rec)
		}
	case domain.TableDisciplines, domain.TableGoalAreas:
		names, err := s.ListItems(ctx, domain.LookupList(table))
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			out = append(out, Record{"name": name})
		}
	case domain.TableProgress:
		entries, err := s.ListProgressEntries(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out = append(out, Record{
				"id":         e.ID,
				"date":       e.Date.Format(domain.DateLayout),
				"child_name": e.ChildName,
				"discipline": e.Discipline,
				"goal_area":  e.GoalArea,
				"status":     string(e.Status),
				"notes":      e.Notes,
				"media_path": e.MediaPath,
			})
		}
	case domain.TableSessionPlans:
		plans, err := s.ListSessionPlans(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range plans {
			out = append(out, Record{
				"id":               p.ID,
				"date":             p.Date.Format(domain.DateLayout),
				"lead_staff":       p.LeadStaff,
				"support_staff":    p.SupportStaff,
				"warm_up":          p.WarmUp,
				"learning_block":   p.LearningBlock,
				"regulation_break": p.RegulationBreak,
				"social_play":      p.SocialPlay,
				"closing_routine":  p.ClosingRoutine,
				"materials_needed": p.MaterialsNeeded,
				"internal_notes":   p.InternalNotes,
			})
		}
	}
	return out, nil
}
