package shop

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShop(t *testing.T) {
	ownerID := uuid.New()

	tests := []struct {
		name      string
		ownerID   uuid.UUID
		shopName  string
		expectErr bool
	}{
		{"valid shop", ownerID, "Mama Njeri Electronics", false},
		{"empty name", ownerID, "", true},
		{"whitespace name", ownerID, "   ", true},
		{"missing owner", uuid.Nil, "Some Shop", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewShop(tt.ownerID, tt.shopName, "desc")
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusActive, s.Status)
			assert.True(t, s.IsActive())
			assert.NotEqual(t, uuid.Nil, s.ID)
		})
	}
}

func TestShop_Freeze(t *testing.T) {
	s, err := NewShop(uuid.New(), "Test Shop", "")
	require.NoError(t, err)

	s.Freeze("High dispute rate: 15.0%")

	assert.Equal(t, StatusFrozen, s.Status)
	assert.False(t, s.IsActive())
	assert.Len(t, s.GetDomainEvents(), 1)

	event, ok := s.GetDomainEvents()[0].(*ShopFrozenEvent)
	require.True(t, ok)
	assert.Equal(t, "High dispute rate: 15.0%", event.Reason)
}

func TestShop_Freeze_NotRepeatable(t *testing.T) {
	s, err := NewShop(uuid.New(), "Test Shop", "")
	require.NoError(t, err)

	s.Freeze("first")
	s.Freeze("second")

	assert.Equal(t, StatusFrozen, s.Status)
	assert.Len(t, s.GetDomainEvents(), 1)
}

func TestShop_Suspend(t *testing.T) {
	s, err := NewShop(uuid.New(), "Test Shop", "")
	require.NoError(t, err)

	s.Suspend("Repeated contact sharing violations")

	assert.Equal(t, StatusSuspended, s.Status)
	assert.False(t, s.IsActive())
}

func TestShop_SuspendOverridesFrozen(t *testing.T) {
	s, err := NewShop(uuid.New(), "Test Shop", "")
	require.NoError(t, err)

	s.Freeze("dispute rate")
	s.Suspend("severe violation")

	assert.Equal(t, StatusSuspended, s.Status)
}
