package booking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	stay := mustRange(t, date(2024, 6, 10), date(2024, 6, 13))
	bk, err := NewBooking(uuid.New(), uuid.New(), uuid.New(), stay, 2, 300_00)
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	stay := mustRange(t, date(2024, 6, 10), date(2024, 6, 13))
	propertyID := uuid.New()
	travelerID := uuid.New()
	ownerID := uuid.New()

	t.Run("valid booking starts pending at version 1", func(t *testing.T) {
		bk, err := NewBooking(propertyID, travelerID, ownerID, stay, 2, 300_00)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, bk.ID())
		assert.Equal(t, StatusPending, bk.Status())
		assert.Equal(t, int64(1), bk.Version())
		assert.Equal(t, 3, bk.Nights())
		assert.Equal(t, int64(300_00), bk.TotalPriceCents())
		assert.Nil(t, bk.CancelledBy())
	})

	tests := []struct {
		name       string
		propertyID uuid.UUID
		travelerID uuid.UUID
		ownerID    uuid.UUID
		numGuests  int
		price      int64
	}{
		{"missing property ID", uuid.Nil, travelerID, ownerID, 2, 300_00},
		{"missing traveler ID", propertyID, uuid.Nil, ownerID, 2, 300_00},
		{"missing owner ID", propertyID, travelerID, uuid.Nil, 2, 300_00},
		{"zero guests", propertyID, travelerID, ownerID, 0, 300_00},
		{"negative guests", propertyID, travelerID, ownerID, -1, 300_00},
		{"zero price", propertyID, travelerID, ownerID, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBooking(tt.propertyID, tt.travelerID, tt.ownerID, stay, tt.numGuests, tt.price)
			require.Error(t, err)
			assert.Equal(t, domain.CodeInvalidInput, domain.CodeOf(err))
		})
	}
}

func TestBookingAccept(t *testing.T) {
	t.Run("pending booking can be accepted", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Accept())
		assert.Equal(t, StatusAccepted, bk.Status())
	})

	t.Run("accepted booking cannot be accepted again", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Accept())
		err := bk.Accept()
		require.Error(t, err)
		assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
	})

	t.Run("cancelled booking cannot be accepted", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Cancel(bk.TravelerID(), "changed plans"))
		err := bk.Accept()
		require.Error(t, err)
		assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
	})
}

func TestBookingCancel(t *testing.T) {
	t.Run("pending booking cancelled by traveler", func(t *testing.T) {
		bk := newTestBooking(t)
		travelerID := bk.TravelerID()
		require.NoError(t, bk.Cancel(travelerID, "changed plans"))
		assert.Equal(t, StatusCancelled, bk.Status())
		require.NotNil(t, bk.CancelledBy())
		assert.Equal(t, travelerID, *bk.CancelledBy())
		assert.Equal(t, "changed plans", bk.CancellationReason())
	})

	t.Run("accepted booking cancelled by owner", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Accept())
		ownerID := bk.OwnerID()
		require.NoError(t, bk.Cancel(ownerID, ""))
		assert.Equal(t, StatusCancelled, bk.Status())
		require.NotNil(t, bk.CancelledBy())
		assert.Equal(t, ownerID, *bk.CancelledBy())
	})

	t.Run("cancelling twice is a conflict", func(t *testing.T) {
		bk := newTestBooking(t)
		require.NoError(t, bk.Cancel(bk.TravelerID(), "first"))
		err := bk.Cancel(bk.OwnerID(), "second")
		require.Error(t, err)
		assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
		assert.Equal(t, "first", bk.CancellationReason(), "first cancellation is preserved")
	})
}

func TestBookingIsParty(t *testing.T) {
	bk := newTestBooking(t)
	assert.True(t, bk.IsParty(bk.TravelerID()))
	assert.True(t, bk.IsParty(bk.OwnerID()))
	assert.False(t, bk.IsParty(uuid.New()))
}

func TestBookingIncrementVersion(t *testing.T) {
	bk := newTestBooking(t)
	assert.Equal(t, int64(1), bk.Version())
	bk.IncrementVersion()
	assert.Equal(t, int64(2), bk.Version())
	bk.IncrementVersion()
	assert.Equal(t, int64(3), bk.Version())
}
