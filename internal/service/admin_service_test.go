package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilp-connect/internal/domain"
	"tilp-connect/internal/repository"
)

func newTestAdmin(t *testing.T) (*AdminService, *repository.MemoryStore, AuthService) {
	t.Helper()
	st := newTestStore(t)
	auth, _ := newTestAuth(t, st)
	return NewAdminService(st, auth, nopLogger), st, auth
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	svc, _, _ := newTestAdmin(t)

	_, err := svc.ListUsers(ctxBg, otID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.ReadTable(ctxBg, tonyID, "users")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, svc.AddItem(ctxBg, otID, "disciplines", "Music"), domain.ErrForbidden)
}

func TestSaveUser_CreateStaffForcesAll(t *testing.T) {
	svc, st, _ := newTestAdmin(t)

	item, err := svc.SaveUser(ctxBg, adminID, SaveUserRequest{
		Username: "bc_staff", Password: "bc123", Role: "BC", ChildLink: "Tony Smith",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.ChildLinkAll, item.ChildLink)
	u, err := st.GetUser(ctxBg, "bc_staff")
	require.NoError(t, err)
	assert.Equal(t, "bc123", u.Password)
}

func TestSaveUser_NewUserNeedsPasswordAndRole(t *testing.T) {
	svc, _, _ := newTestAdmin(t)

	_, err := svc.SaveUser(ctxBg, adminID, SaveUserRequest{Username: "x", Role: "OT"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.SaveUser(ctxBg, adminID, SaveUserRequest{Username: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSaveUser_PartialUpdateKeepsPassword(t *testing.T) {
	svc, st, _ := newTestAdmin(t)

	_, err := svc.SaveUser(ctxBg, adminID, SaveUserRequest{Username: "parent_tony", ChildLink: "Sara Jones"})
	require.NoError(t, err)

	u, err := st.GetUser(ctxBg, "parent_tony")
	require.NoError(t, err)
	assert.Equal(t, "tonypass", u.Password)
	assert.Equal(t, domain.RoleParent, u.Role)
	assert.Equal(t, "Sara Jones", u.ChildLink)
}

func TestSaveUser_DanglingParentLink(t *testing.T) {
	svc, st, _ := newTestAdmin(t)

	_, err := svc.SaveUser(ctxBg, adminID, SaveUserRequest{Username: "parent_tony", ChildLink: "Nobody"})

	assert.ErrorIs(t, err, domain.ErrDanglingReference)
	u, err := st.GetUser(ctxBg, "parent_tony")
	require.NoError(t, err)
	assert.Equal(t, "Tony Smith", u.ChildLink, "rejected save must not change the row")
}

func TestSaveUser_ParentDefaultsToNone(t *testing.T) {
	svc, _, _ := newTestAdmin(t)

	item, err := svc.SaveUser(ctxBg, adminID, SaveUserRequest{Username: "new_parent", Password: "pw", Role: "parent"})

	require.NoError(t, err)
	assert.Equal(t, domain.ChildLinkNone, item.ChildLink)
}

func TestSaveUser_RevokesSessions(t *testing.T) {
	svc, _, auth := newTestAdmin(t)
	login, err := auth.Login(ctxBg, LoginRequest{Username: "parent_tony", Password: "tonypass"})
	require.NoError(t, err)

	_, err = svc.SaveUser(ctxBg, adminID, SaveUserRequest{Username: "parent_tony", ChildLink: "Sara Jones"})
	require.NoError(t, err)

	_, err = auth.Resolve(ctxBg, login.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDeleteUser(t *testing.T) {
	svc, st, _ := newTestAdmin(t)

	require.NoError(t, svc.DeleteUser(ctxBg, adminID, "assistant"))
	_, err := st.GetUser(ctxBg, "assistant")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteUser(ctxBg, adminID, "assistant"), domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctxBg, adminID, "adminuser"), domain.ErrInvalidArgument)
}

func TestSaveChild_CreatesAndLinksParent(t *testing.T) {
	svc, st, auth := newTestAdmin(t)

	item, err := svc.SaveChild(ctxBg, adminID, SaveChildRequest{
		ChildName: "Mia Chen", ParentUsername: "parent_mia", DateOfBirth: "2020-06-15",
	})

	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "2020-06-15", item.DateOfBirth)
	assert.Equal(t, "parent_mia", item.ParentUsername)

	parent, err := st.GetUser(ctxBg, "parent_mia")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleParent, parent.Role)
	assert.Equal(t, "Mia Chen", parent.ChildLink)

	_, err = auth.Login(ctxBg, LoginRequest{Username: "parent_mia", Password: ""})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "auto-created parent has no password yet")
}

// linkFailStore fails every combined child and parent write.
type linkFailStore struct {
	*repository.MemoryStore
}

func (linkFailStore) SaveChildWithParent(context.Context, *domain.Child, *domain.User) error {
	return domain.ErrStoreUnavailable
}

func TestSaveChild_ParentFailureLeavesNoChild(t *testing.T) {
	st := newTestStore(t)
	auth, _ := newTestAuth(t, st)
	svc := NewAdminService(linkFailStore{st}, auth, nopLogger)

	_, err := svc.SaveChild(ctxBg, adminID, SaveChildRequest{
		ChildName: "Mia Chen", ParentUsername: "parent_mia",
	})

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = st.GetChild(ctxBg, "Mia Chen")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = st.GetUser(ctxBg, "parent_mia")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveChild_UpdateKeepsID(t *testing.T) {
	svc, st, _ := newTestAdmin(t)
	before, err := st.GetChild(ctxBg, "Tony Smith")
	require.NoError(t, err)

	item, err := svc.SaveChild(ctxBg, adminID, SaveChildRequest{
		ChildName: "Tony Smith", ParentUsername: "parent_tony", DateOfBirth: "2019-01-01",
	})

	require.NoError(t, err)
	assert.Equal(t, before.ID, item.ID)
	parent, err := st.GetUser(ctxBg, "parent_tony")
	require.NoError(t, err)
	assert.Equal(t, "tonypass", parent.Password)
}

func TestSaveChild_Validation(t *testing.T) {
	svc, _, _ := newTestAdmin(t)

	_, err := svc.SaveChild(ctxBg, adminID, SaveChildRequest{ChildName: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.SaveChild(ctxBg, adminID, SaveChildRequest{ChildName: "A", DateOfBirth: "15/06/2020"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = svc.SaveChild(ctxBg, adminID, SaveChildRequest{ChildName: "A", ParentUsername: "lead_ot"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDeleteChild_UnlinksParentAndKeepsHistory(t *testing.T) {
	svc, st, auth := newTestAdmin(t)
	mustAppend(t, st, "2024-01-01", "Tony Smith", "Regulation", domain.StatusStable)
	login, err := auth.Login(ctxBg, LoginRequest{Username: "parent_tony", Password: "tonypass"})
	require.NoError(t, err)

	unlinked, err := svc.DeleteChild(ctxBg, adminID, "Tony Smith")

	require.NoError(t, err)
	assert.Equal(t, []string{"parent_tony"}, unlinked)
	u, err := st.GetUser(ctxBg, "parent_tony")
	require.NoError(t, err)
	assert.Equal(t, domain.ChildLinkNone, u.ChildLink)

	entries, err := st.ListProgressEntries(ctxBg)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = auth.Resolve(ctxBg, login.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.DeleteChild(ctxBg, adminID, "Tony Smith")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLookupItems(t *testing.T) {
	svc, _, _ := newTestAdmin(t)

	require.NoError(t, svc.AddItem(ctxBg, adminID, "disciplines", " Music "))
	names, err := svc.ListItems(ctxBg, adminID, "disciplines")
	require.NoError(t, err)
	assert.Contains(t, names, "Music")

	require.NoError(t, svc.DeleteItem(ctxBg, adminID, "disciplines", "Music"))
	assert.ErrorIs(t, svc.DeleteItem(ctxBg, adminID, "disciplines", "Music"), domain.ErrNotFound)

	_, err = svc.ListItems(ctxBg, adminID, "users")
	assert.ErrorIs(t, err, domain.ErrUnknownList)
	assert.ErrorIs(t, svc.AddItem(ctxBg, adminID, "progress", "x"), domain.ErrUnknownList)
}

func TestReadTable(t *testing.T) {
	svc, _, _ := newTestAdmin(t)

	rows, err := svc.ReadTable(ctxBg, adminID, "goal_areas")
	require.NoError(t, err)
	assert.Len(t, rows, len(domain.SeedGoalAreas))

	_, err = svc.ReadTable(ctxBg, adminID, "users; DROP TABLE users")
	assert.ErrorIs(t, err, domain.ErrUnknownTable)
}
