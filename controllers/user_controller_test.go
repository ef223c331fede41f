package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmwise/models"
)

func TestRegisterLoginAndMe(t *testing.T) {
	f := setup(t)

	w := f.doJSON(t, http.MethodPost, "/api/farmwise/users/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@farmwise.test",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	assert.True(t, env.Success)

	var registered struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &registered))
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)
	assert.Equal(t, models.RoleFarmer, registered.User.Role)

	w = f.doJSON(t, http.MethodPost, "/api/farmwise/users/login", "", map[string]string{
		"username": "alice",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var logged struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &logged))

	w = f.do(t, http.MethodGet, "/api/farmwise/users/me", logged.Token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
	assert.NotContains(t, w.Body.String(), "secret123")
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	f := setup(t)
	f.createUser(t, "alice", models.RoleFarmer)

	w := f.doJSON(t, http.MethodPost, "/api/farmwise/users/register", "", map[string]string{
		"username": "alice",
		"email":    "other@farmwise.test",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := setup(t)
	f.createUser(t, "alice", models.RoleFarmer)

	w := f.doJSON(t, http.MethodPost, "/api/farmwise/users/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidatesInput(t *testing.T) {
	f := setup(t)

	w := f.doJSON(t, http.MethodPost, "/api/farmwise/users/register", "", map[string]string{
		"username": "al",
		"email":    "not-an-email",
		"password": "123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
