package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount() Account {
	return Account{
		ID:    "acct-1",
		Email: "front.desk@example.com",
		Name:  "Front Desk",
		Role:  RoleStaff,
	}
}

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue(testAccount(), "stem-management", "secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := Parse(pair.AccessToken, "secret", "stem-management")
	require.NoError(t, err)
	assert.Equal(t, "acct-1", claims.Subject)
	assert.Equal(t, "front.desk@example.com", claims.Email)
	assert.Equal(t, RoleStaff, claims.Role)

	t.Run("wrong key rejected", func(t *testing.T) {
		_, err := Parse(pair.AccessToken, "other-secret", "stem-management")
		assert.Error(t, err)
	})

	t.Run("issuer mismatch rejected", func(t *testing.T) {
		_, err := Parse(pair.AccessToken, "secret", "someone-else")
		assert.Error(t, err)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired, err := Issue(testAccount(), "stem-management", "secret", -time.Minute, time.Hour)
		require.NoError(t, err)
		_, err = Parse(expired.AccessToken, "secret", "stem-management")
		assert.Error(t, err)
	})
}

func TestCan(t *testing.T) {
	tests := []struct {
		role Role
		op   Operation
		want bool
	}{
		{RoleAdmin, OpCheckIn, true},
		{RoleAdmin, OpExport, true},
		{RoleStaff, OpCheckIn, true},
		{RoleStaff, OpCheckOut, true},
		{RoleStaff, OpExport, false},
		{RoleSecurity, OpCheckOut, true},
		{RoleSecurity, OpViewRecords, true},
		{RoleSecurity, OpCheckIn, false},
		{RoleSecurity, OpUpload, false},
		{Role("visitor"), OpViewRecords, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Can(tt.role, tt.op), "%s/%s", tt.role, tt.op)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	accounts := NewMemoryAccounts()
	require.NoError(t, accounts.Seed(testAccount(), "hunter2"))

	t.Run("valid credentials", func(t *testing.T) {
		acct, err := Authenticate(ctx, accounts, "Front.Desk@example.com ", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, "acct-1", acct.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := Authenticate(ctx, accounts, "front.desk@example.com", "hunter3")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := Authenticate(ctx, accounts, "nobody@example.com", "hunter2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
