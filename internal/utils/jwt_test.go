package utils

import (
	"testing"
	"time"

	"github.com/bitnshop/bitnshop/internal/authz"
	"github.com/bitnshop/bitnshop/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func testUser() *models.User {
	return &models.User{
		ID:       42,
		Email:    "shopper@example.com",
		Username: "shopper",
		Roles: []models.Role{
			{ID: 1, Name: authz.RoleCustomer, Slug: "customer"},
			{ID: 2, Name: authz.RoleModerator, Slug: "moderator"},
		},
	}
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken(testUser(), testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "shopper@example.com", claims.Email)
	assert.Equal(t, "shopper", claims.Username)
	assert.Equal(t, []authz.RoleName{authz.RoleCustomer, authz.RoleModerator}, claims.Roles)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "some-other-secret")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken(testUser(), testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", testSecret)
	assert.Error(t, err)
}

func TestClaims_Principal(t *testing.T) {
	token, err := GenerateToken(testUser(), testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	principal := claims.Principal()
	require.NotNil(t, principal)
	assert.Equal(t, uint(42), principal.ID)
	assert.True(t, principal.HasRole(authz.RoleModerator))
	assert.False(t, principal.HasRole(authz.RoleAdmin))
}
