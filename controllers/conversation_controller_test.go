package controllers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmwise/models"
	"farmwise/services"
)

func TestCreateConversationIdempotent(t *testing.T) {
	f := setup(t)
	_, aliceToken := f.createUser(t, "alice", models.RoleFarmer)
	bob, bobToken := f.createUser(t, "bob", models.RoleFarmer)

	w := f.doJSON(t, http.MethodPost, "/api/farmwise/conversations", aliceToken, map[string]uint{"receiver_id": bob.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var first struct {
		ConversationID string `json:"conversation_id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &first))
	assert.NotEmpty(t, first.ConversationID)

	// The same pair from the other side resolves to the same conversation.
	var aliceUser models.User
	require.NoError(t, f.db.Where("username = ?", "alice").First(&aliceUser).Error)

	w = f.doJSON(t, http.MethodPost, "/api/farmwise/conversations", bobToken, map[string]uint{"receiver_id": aliceUser.ID})
	require.Equal(t, http.StatusOK, w.Code)
	var second struct {
		ConversationID string `json:"conversation_id"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &second))
	assert.Equal(t, first.ConversationID, second.ConversationID)
}

func TestCreateConversationRejectsSelf(t *testing.T) {
	f := setup(t)
	alice, token := f.createUser(t, "alice", models.RoleFarmer)

	w := f.doJSON(t, http.MethodPost, "/api/farmwise/conversations", token, map[string]uint{"receiver_id": alice.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateConversationUnknownReceiver(t *testing.T) {
	f := setup(t)
	_, token := f.createUser(t, "alice", models.RoleFarmer)

	w := f.doJSON(t, http.MethodPost, "/api/farmwise/conversations", token, map[string]uint{"receiver_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListConversationsResolvesPeer(t *testing.T) {
	f := setup(t)
	alice, aliceToken := f.createUser(t, "alice", models.RoleFarmer)
	bob, _ := f.createUser(t, "bob", models.RoleFarmer)

	_, err := services.NewConversationService(f.db).GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/api/farmwise/conversations", aliceToken, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var views []services.ConversationView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, "bob", views[0].Peer.Username)
}
