package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilp-connect/internal/domain"
)

func TestLogin_ResolveLogout(t *testing.T) {
	auth, _ := newTestAuth(t, newTestStore(t))

	resp, err := auth.Login(ctxBg, LoginRequest{Username: " parent_tony ", Password: "tonypass"})
	require.NoError(t, err)
	assert.Equal(t, tonyID, resp.Identity)
	assert.Equal(t, "/dashboard", resp.HomePath)

	identity, err := auth.Resolve(ctxBg, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, tonyID, identity)

	require.NoError(t, auth.Logout(ctxBg, resp.Token))
	_, err = auth.Resolve(ctxBg, resp.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_StaffHomePath(t *testing.T) {
	auth, _ := newTestAuth(t, newTestStore(t))

	resp, err := auth.Login(ctxBg, LoginRequest{Username: "lead_ot", Password: "ot123"})

	require.NoError(t, err)
	assert.Equal(t, "/tracker", resp.HomePath)
	assert.Equal(t, domain.ChildLinkAll, resp.Identity.ChildLink)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	auth, _ := newTestAuth(t, newTestStore(t))

	for _, req := range []LoginRequest{
		{Username: "parent_tony", Password: "wrong"},
		{Username: "nobody", Password: "x"},
		{Username: "", Password: "x"},
		{Username: "parent_tony", Password: ""},
	} {
		_, err := auth.Login(ctxBg, req)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, req.Username)
	}
}

func TestResolve_RejectsNonUUIDTokens(t *testing.T) {
	auth, kv := newTestAuth(t, newTestStore(t))
	require.NoError(t, kv.Set(ctxBg, sessionKeyPrefix+"*", `{"username":"adminuser","role":"admin","child_link":"All"}`, 0))

	for _, token := range []string{"", "*", "abc"} {
		_, err := auth.Resolve(ctxBg, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, token)
	}
}

func TestResolve_CorruptSessionIsDropped(t *testing.T) {
	auth, kv := newTestAuth(t, newTestStore(t))
	token := uuid.NewString()
	require.NoError(t, kv.Set(ctxBg, sessionKeyPrefix+token, "not json", 0))

	_, err := auth.Resolve(ctxBg, token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	keys, err := kv.ScanKeys(ctxBg, sessionKeyPrefix+"*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRevokeUser(t *testing.T) {
	auth, _ := newTestAuth(t, newTestStore(t))

	tony1, err := auth.Login(ctxBg, LoginRequest{Username: "parent_tony", Password: "tonypass"})
	require.NoError(t, err)
	tony2, err := auth.Login(ctxBg, LoginRequest{Username: "parent_tony", Password: "tonypass"})
	require.NoError(t, err)
	sara, err := auth.Login(ctxBg, LoginRequest{Username: "parent_sara", Password: "sarapass"})
	require.NoError(t, err)

	require.NoError(t, auth.RevokeUser(ctxBg, "parent_tony"))

	_, err = auth.Resolve(ctxBg, tony1.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = auth.Resolve(ctxBg, tony2.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = auth.Resolve(ctxBg, sara.Token)
	assert.NoError(t, err)
}
