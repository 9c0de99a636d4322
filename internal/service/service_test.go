package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"tilp-connect/internal/domain"
	"tilp-connect/internal/repository"
	"tilp-connect/internal/store"
)

var (
	adminID   = domain.Identity{Username: "adminuser", Role: domain.RoleAdmin, ChildLink: domain.ChildLinkAll}
	otID      = domain.Identity{Username: "lead_ot", Role: domain.RoleOT, ChildLink: domain.ChildLinkAll}
	tonyID    = domain.Identity{Username: "parent_tony", Role: domain.RoleParent, ChildLink: "Tony Smith"}
	saraID    = domain.Identity{Username: "parent_sara", Role: domain.RoleParent, ChildLink: "Sara Jones"}
	ctxBg     = context.Background()
	testTTL   = time.Hour
	nopLogger = zap.NewNop()
)

func newTestStore(t *testing.T) *repository.MemoryStore {
	t.Helper()
	s := repository.NewMemoryStore()
	s.Seed(repository.SeedOptions{Admin: true, Demo: true})
	return s
}

func newTestAuth(t *testing.T, users repository.UsersRepository) (AuthService, *store.MemoryKV) {
	t.Helper()
	kv := store.NewMemoryKV()
	return NewAuthService(users, kv, testTTL, nopLogger), kv
}

func mustAppend(t *testing.T, s repository.ProgressRepository, date, child, goal string, st domain.Status) {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AppendProgressEntry(ctxBg, &domain.ProgressEntry{
		Date: d, ChildName: child, Discipline: "OT", GoalArea: goal, Status: st,
	}); err != nil {
		t.Fatal(err)
	}
}
