package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tilp-connect/internal/access"
	"tilp-connect/internal/domain"
	"tilp-connect/internal/repository"

	"go.uber.org/zap"
)

// AdminService user, child and lookup list management. Every method requires
// an admin identity.
type AdminService struct {
	store  repository.Store
	auth   AuthService
	logger *zap.Logger
}

// NewAdminService creates the admin service. auth may be nil when sessions
// are not in use (migration tooling).
func NewAdminService(store repository.Store, auth AuthService, logger *zap.Logger) *AdminService {
	return &AdminService{store: store, auth: auth, logger: logger}
}

func requireAdmin(identity domain.Identity) error {
	if !access.IsAdmin(identity.Role) {
		return fmt.Errorf("admin role required: %w", domain.ErrForbidden)
	}
	return nil
}

// revoke ends the sessions of usernames; failures are logged, not returned,
// because the row change itself already succeeded.
func (s *AdminService) revoke(ctx context.Context, usernames ...string) {
	if s.auth == nil {
		return
	}
	for _, u := range usernames {
		if err := s.auth.RevokeUser(ctx, u); err != nil {
			s.logger.Warn("Failed to revoke sessions", zap.String("username", u), zap.Error(err))
		}
	}
}

// ---- users ----

// UserItem users row without the password.
type UserItem struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	ChildLink string `json:"child_link"`
}

func toUserItem(u *domain.User) UserItem {
	return UserItem{Username: u.Username, Role: u.Role, ChildLink: u.ChildLink}
}

// ListUsers returns every user ordered by username.
func (s *AdminService) ListUsers(ctx context.Context, identity domain.Identity) ([]UserItem, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	items := make([]UserItem, 0, len(users))
	for _, u := range users {
		items = append(items, toUserItem(u))
	}
	return items, nil
}

// SaveUserRequest create or update a user. Empty fields keep the stored
// value on update.
type SaveUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	ChildLink string `json:"child_link"`
}

// SaveUser merges req into the stored user (or creates it) and writes the
// whole row back. Staff always get child_link "All"; a parent's child_link
// must name an existing child or be "None".
func (s *AdminService) SaveUser(ctx context.Context, identity domain.Identity, req SaveUserRequest) (*UserItem, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Role = strings.TrimSpace(req.Role)
	req.ChildLink = strings.TrimSpace(req.ChildLink)
	if req.Username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrInvalidArgument)
	}

	user, err := s.store.GetUser(ctx, req.Username)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		if req.Password == "" || req.Role == "" {
			return nil, fmt.Errorf("password and role are required for a new user: %w", domain.ErrInvalidArgument)
		}
		user = &domain.User{Username: req.Username}
	default:
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Password != "" {
		user.Password = req.Password
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if req.ChildLink != "" {
		user.ChildLink = req.ChildLink
	}

	if access.IsStaff(user.Role) {
		user.ChildLink = domain.ChildLinkAll
	} else {
		if user.ChildLink == "" || user.ChildLink == domain.ChildLinkAll {
			user.ChildLink = domain.ChildLinkNone
		}
		if user.ChildLink != domain.ChildLinkNone {
			if _, err := s.store.GetChild(ctx, user.ChildLink); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					s.logger.Warn("Rejected parent link to unknown child",
						zap.String("username", user.Username),
						zap.String("child_link", user.ChildLink),
					)
					return nil, fmt.Errorf("child %q does not exist: %w", user.ChildLink, domain.ErrDanglingReference)
				}
				return nil, fmt.Errorf("failed to check child: %w", err)
			}
		}
	}

	if err := s.store.UpsertUser(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.String("username", user.Username), zap.Error(err))
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	s.revoke(ctx, user.Username)

	s.logger.Info("User saved",
		zap.String("admin", identity.Username),
		zap.String("username", user.Username),
		zap.String("role", user.Role),
		zap.String("child_link", user.ChildLink),
	)
	item := toUserItem(user)
	return &item, nil
}

// DeleteUser removes a user and ends their sessions.
func (s *AdminService) DeleteUser(ctx context.Context, identity domain.Identity, username string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	if username == identity.Username {
		return fmt.Errorf("cannot delete the signed-in account: %w", domain.ErrInvalidArgument)
	}
	if err := s.store.DeleteUser(ctx, username); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.revoke(ctx, username)
	s.logger.Info("User deleted", zap.String("admin", identity.Username), zap.String("username", username))
	return nil
}

// ---- children ----

// ChildItem children row for the API.
type ChildItem struct {
	ID             int64  `json:"id"`
	ChildName      string `json:"child_name"`
	ParentUsername string `json:"parent_username,omitempty"`
	DateOfBirth    string `json:"date_of_birth,omitempty"`
}

func toChildItem(c *domain.Child) ChildItem {
	item := ChildItem{ID: c.ID, ChildName: c.ChildName}
	if c.ParentUsername.Valid {
		item.ParentUsername = c.ParentUsername.String
	}
	if c.DateOfBirth.Valid {
		item.DateOfBirth = c.DateOfBirth.Time.Format(domain.DateLayout)
	}
	return item
}

// ListChildren returns every child in id order.
func (s *AdminService) ListChildren(ctx context.Context, identity domain.Identity) ([]ChildItem, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	children, err := s.store.ListChildren(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	items := make([]ChildItem, 0, len(children))
	for _, c := range children {
		items = append(items, toChildItem(c))
	}
	return items, nil
}

// SaveChildRequest create or update a child.
type SaveChildRequest struct {
	ChildName      string `json:"child_name"`
	ParentUsername string `json:"parent_username"`
	DateOfBirth    string `json:"date_of_birth"` // YYYY-MM-DD or empty
}

// SaveChild upserts the child. A named parent is linked to the child in the
// same write; the parent account is created without a password when it does
// not exist yet.
func (s *AdminService) SaveChild(ctx context.Context, identity domain.Identity, req SaveChildRequest) (*ChildItem, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	req.ChildName = strings.TrimSpace(req.ChildName)
	req.ParentUsername = strings.TrimSpace(req.ParentUsername)
	if req.ChildName == "" {
		return nil, fmt.Errorf("child_name is required: %w", domain.ErrInvalidArgument)
	}

	child := &domain.Child{ChildName: req.ChildName}
	if req.ParentUsername != "" {
		child.ParentUsername = sql.NullString{String: req.ParentUsername, Valid: true}
	}
	if dob := strings.TrimSpace(req.DateOfBirth); dob != "" {
		t, err := time.Parse(domain.DateLayout, dob)
		if err != nil {
			return nil, fmt.Errorf("invalid date_of_birth %q: %w", dob, domain.ErrInvalidArgument)
		}
		child.DateOfBirth = sql.NullTime{Time: t, Valid: true}
	}

	var parent *domain.User
	if req.ParentUsername != "" {
		existing, err := s.store.GetUser(ctx, req.ParentUsername)
		switch {
		case err == nil:
			if access.IsStaff(existing.Role) {
				return nil, fmt.Errorf("user %q is not a parent account: %w", existing.Username, domain.ErrInvalidArgument)
			}
			parent = existing
		case errors.Is(err, domain.ErrNotFound):
			parent = &domain.User{Username: req.ParentUsername}
		default:
			return nil, fmt.Errorf("failed to get parent: %w", err)
		}
	}

	if parent == nil {
		if err := s.store.UpsertChild(ctx, child); err != nil {
			s.logger.Error("Failed to save child", zap.String("child_name", child.ChildName), zap.Error(err))
			return nil, fmt.Errorf("failed to save child: %w", err)
		}
	} else {
		parent.Role = domain.RoleParent
		parent.ChildLink = child.ChildName
		if err := s.store.SaveChildWithParent(ctx, child, parent); err != nil {
			s.logger.Error("Failed to save child with parent",
				zap.String("child_name", child.ChildName),
				zap.String("parent_username", parent.Username),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to save child: %w", err)
		}
		s.revoke(ctx, parent.Username)
	}

	saved, err := s.store.GetChild(ctx, child.ChildName)
	if err != nil {
		return nil, fmt.Errorf("failed to reload child: %w", err)
	}
	s.logger.Info("Child saved",
		zap.String("admin", identity.Username),
		zap.String("child_name", saved.ChildName),
		zap.String("parent_username", req.ParentUsername),
	)
	item := toChildItem(saved)
	return &item, nil
}

// DeleteChild deletes the child after unlinking its users. Progress history
// is kept.
func (s *AdminService) DeleteChild(ctx context.Context, identity domain.Identity, childName string) ([]string, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	unlinked, err := s.store.DeleteChild(ctx, childName)
	if err != nil {
		return nil, fmt.Errorf("failed to delete child: %w", err)
	}
	s.revoke(ctx, unlinked...)
	s.logger.Info("Child deleted",
		zap.String("admin", identity.Username),
		zap.String("child_name", childName),
		zap.Strings("unlinked_users", unlinked),
	)
	if unlinked == nil {
		unlinked = []string{}
	}
	return unlinked, nil
}

// ---- lookup lists ----

// ListItems returns the names of a lookup list.
func (s *AdminService) ListItems(ctx context.Context, identity domain.Identity, list string) ([]string, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	l, err := domain.ParseLookupList(list)
	if err != nil {
		return nil, err
	}
	names, err := s.store.ListItems(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", l, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// AddItem inserts name into a lookup list if absent.
func (s *AdminService) AddItem(ctx context.Context, identity domain.Identity, list, name string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	l, err := domain.ParseLookupList(list)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if err := s.store.UpsertListItem(ctx, l, name); err != nil {
		return fmt.Errorf("failed to add %s item: %w", l, err)
	}
	s.logger.Info("Lookup item added", zap.String("list", string(l)), zap.String("name", name))
	return nil
}

// DeleteItem removes name from a lookup list. Existing progress rows keep
// the name they were recorded with.
func (s *AdminService) DeleteItem(ctx context.Context, identity domain.Identity, list, name string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	l, err := domain.ParseLookupList(list)
	if err != nil {
		return err
	}
	if err := s.store.DeleteListItem(ctx, l, name); err != nil {
		return fmt.Errorf("failed to delete %s item: %w", l, err)
	}
	s.logger.Info("Lookup item deleted", zap.String("list", string(l)), zap.String("name", name))
	return nil
}

// ---- raw tables ----

// ReadTable returns every row of an allow-listed table.
func (s *AdminService) ReadTable(ctx context.Context, identity domain.Identity, table string) ([]repository.Record, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	t, err := domain.ParseTable(table)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ReadAll(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t, err)
	}
	return rows, nil
}
