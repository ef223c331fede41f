package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmwise/models"
)

func TestGetOrCreateIsNormalizedAndIdempotent(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	svc := NewConversationService(db)

	first, err := svc.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)
	// Reversed pair resolves to the same conversation.
	second, err := svc.GetOrCreate(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.True(t, first.ParticipantA < first.ParticipantB)
}

func TestGetOrCreateWritesBothParticipantRows(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	svc := NewConversationService(db)

	conv, err := svc.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ?", conv.ConversationID).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestConversationPairIsUnique(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	svc := NewConversationService(db)

	conv, err := svc.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)

	dup := models.Conversation{
		ConversationID: uuid.New().String(),
		ParticipantA:   conv.ParticipantA,
		ParticipantB:   conv.ParticipantB,
	}
	assert.Error(t, db.Create(&dup).Error, "second row for the same pair must hit the unique index")

	// A writer that loses the creation race still gets the winning row.
	again, err := svc.GetOrCreate(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ConversationID, again.ConversationID)
}

func TestGetOrCreateRejectsSelfAndUnknownReceiver(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	svc := NewConversationService(db)

	_, err := svc.GetOrCreate(alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfConversation)

	_, err = svc.GetOrCreate(alice.ID, 9999)
	assert.ErrorIs(t, err, ErrReceiverNotFound)
}

func TestListForResolvesPeer(t *testing.T) {
	db := newTestDB(t)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	svc := NewConversationService(db)

	_, err := svc.GetOrCreate(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.GetOrCreate(carol.ID, alice.ID)
	require.NoError(t, err)

	views, err := svc.ListFor(alice.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	peers := map[string]bool{}
	for _, v := range views {
		peers[v.Peer.Username] = true
	}
	assert.True(t, peers["bob"])
	assert.True(t, peers["carol"])

	none, err := svc.ListFor(9999)
	require.NoError(t, err)
	assert.Empty(t, none)
}
