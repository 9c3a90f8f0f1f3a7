package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotification_MarkAccepted(t *testing.T) {
	n := Notification{Type: NotificationInvitation}

	require.NoError(t, n.MarkAccepted())
	assert.True(t, n.Accepted)
	assert.True(t, n.Resolved())

	assert.ErrorIs(t, n.MarkAccepted(), ErrInvitationResolved)
	assert.ErrorIs(t, n.MarkDeclined(), ErrInvitationResolved)
	assert.False(t, n.Declined)
}

func TestNotification_MarkDeclined(t *testing.T) {
	n := Notification{Type: NotificationInvitation}

	require.NoError(t, n.MarkDeclined())
	assert.True(t, n.Declined)

	assert.ErrorIs(t, n.MarkAccepted(), ErrInvitationResolved)
	assert.False(t, n.Accepted)
}

func TestNotification_MarkStayed(t *testing.T) {
	n := Notification{Type: NotificationNotSelected}

	require.NoError(t, n.MarkStayed())
	assert.True(t, n.Stayed)

	assert.ErrorIs(t, n.MarkStayed(), ErrInvitationResolved)
	assert.ErrorIs(t, n.MarkDeclined(), ErrInvitationResolved)
}

func TestNotification_ReadDoesNotResolve(t *testing.T) {
	n := Notification{Type: NotificationInvitation, Read: true}

	assert.False(t, n.Resolved())
	require.NoError(t, n.MarkAccepted())
}
