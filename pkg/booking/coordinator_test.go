package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unireserva/unireserva/internal/event_bus"
	"github.com/unireserva/unireserva/pkg/remote"
)

var ctx = context.Background()

var clientStub = remote.NewClientStub()

var coordinator *Coordinator
var bus *event_bus.EventBus

func setup(t *testing.T) func() {
	bus = event_bus.NewEventBus()
	coordinator = NewCoordinator(func() remote.Client { return clientStub }, bus)
	return func() {
		t.Log("Teardown after test")
		clientStub.Cleanup()
	}
}

func completeDraft(t *testing.T) {
	t.Helper()
	coordinator.SelectRoom("101")
	require.NoError(t, coordinator.SelectDate("2024-06-01"))
	require.NoError(t, coordinator.SelectSlot("09:45-11:15"))
	coordinator.SetHolder("Bia")
}

func TestCoordinator_Book(t *testing.T) {
	t.Run("should confirm booking, clear draft and bump refresh counter once", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.SetRooms("101")
		completeDraft(t)

		// when
		err := coordinator.Book(ctx)

		// then
		assert.NoError(t, err)
		assert.Equal(t, StateSucceeded, coordinator.State())
		assert.Equal(t, Draft{}, coordinator.Draft())
		assert.Equal(t, uint64(1), coordinator.RefreshCount())
	})

	t.Run("should keep the whole draft when the authority rejects", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.SetRooms("101")
		clientStub.AddReservation("101", remote.Reservation{User: "Ana", Date: "2024-06-01", TimeSlot: "09:45-11:15"})
		completeDraft(t)

		// when
		err := coordinator.Book(ctx)

		// then
		var rejected *remote.RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, StateFailed, coordinator.State())
		assert.Equal(t, Draft{RoomID: "101", Date: "2024-06-01", TimeSlot: "09:45-11:15", Holder: "Bia"}, coordinator.Draft())
		assert.Equal(t, uint64(0), coordinator.RefreshCount())
	})

	t.Run("should keep the draft when the authority is unreachable", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.SetRooms("101")
		clientStub.FailSubmitBooking(remote.ErrUnreachable)
		completeDraft(t)

		// when
		err := coordinator.Book(ctx)

		// then
		assert.ErrorIs(t, err, remote.ErrUnreachable)
		assert.Equal(t, StateFailed, coordinator.State())
		assert.Equal(t, "Bia", coordinator.Draft().Holder)
		assert.Equal(t, uint64(0), coordinator.RefreshCount())
	})

	t.Run("should reject an incomplete draft without transitioning or calling out", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.FailSubmitBooking(remote.ErrUnreachable) // would surface if the call went out
		coordinator.SelectRoom("101")
		require.NoError(t, coordinator.SelectDate("2024-06-01"))

		// when
		err := coordinator.Book(ctx)

		// then
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
		assert.Equal(t, StateIdle, coordinator.State())
	})

	t.Run("should reject a draft without holder name", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		coordinator.SelectRoom("101")
		require.NoError(t, coordinator.SelectDate("2024-06-01"))
		require.NoError(t, coordinator.SelectSlot("09:45-11:15"))

		// when
		err := coordinator.Book(ctx)

		// then
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("should publish a confirmation event strictly after the counter increment", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.SetRooms("101")
		completeDraft(t)
		var countAtDelivery uint64
		var payload event_bus.BookingConfirmed
		unsubscribe := bus.Subscribe(event_bus.BookingConfirmedEvent, func(e event_bus.Event) error {
			countAtDelivery = coordinator.RefreshCount()
			payload = e.Data.(event_bus.BookingConfirmed)
			return nil
		})
		defer unsubscribe()

		// when
		err := coordinator.Book(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, uint64(1), countAtDelivery)
		assert.Equal(t, "101", payload.RoomID)
		assert.Equal(t, "2024-06-01", payload.Date)
		assert.Equal(t, "09:45-11:15", payload.TimeSlot)
		assert.Equal(t, "Bia", payload.Holder)
	})
}

func TestCoordinator_Check(t *testing.T) {
	t.Run("should report a free slot without mutating anything", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.SetRooms("101")
		completeDraft(t)

		// when
		available, err := coordinator.Check(ctx)

		// then
		assert.NoError(t, err)
		assert.True(t, available)
		assert.Equal(t, StateIdle, coordinator.State())
		assert.Equal(t, uint64(0), coordinator.RefreshCount())
	})

	t.Run("slot reported taken by check must also be rejected at booking", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.SetRooms("101")
		clientStub.AddReservation("101", remote.Reservation{User: "Ana", Date: "2024-06-01", TimeSlot: "09:45-11:15"})
		completeDraft(t)

		// when
		available, checkErr := coordinator.Check(ctx)
		bookErr := coordinator.Book(ctx)

		// then
		require.NoError(t, checkErr)
		assert.False(t, available)
		var rejected *remote.RejectedError
		assert.ErrorAs(t, bookErr, &rejected)
		assert.Equal(t, uint64(0), coordinator.RefreshCount())
	})

	t.Run("should reject an incomplete draft synchronously", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := coordinator.Check(ctx)

		// then
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
		assert.Equal(t, StateIdle, coordinator.State())
	})

	t.Run("should return to idle after a failed check", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.FailCheckAvailability(remote.ErrUnreachable)
		completeDraft(t)

		// when
		_, err := coordinator.Check(ctx)

		// then
		assert.ErrorIs(t, err, remote.ErrUnreachable)
		assert.Equal(t, StateIdle, coordinator.State())
	})
}

func TestCoordinator_Cancel(t *testing.T) {
	t.Run("should cancel an existing reservation and bump the refresh counter", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.SetRooms("101")
		clientStub.AddReservation("101", remote.Reservation{User: "Bia", Date: "2024-06-01", TimeSlot: "09:45-11:15"})
		completeDraft(t)
		delivered := false
		unsubscribe := bus.Subscribe(event_bus.BookingCancelledEvent, func(e event_bus.Event) error {
			delivered = true
			return nil
		})
		defer unsubscribe()

		// when
		err := coordinator.Cancel(ctx)

		// then
		assert.NoError(t, err)
		assert.Equal(t, StateSucceeded, coordinator.State())
		assert.Equal(t, uint64(1), coordinator.RefreshCount())
		assert.True(t, delivered)
	})

	t.Run("should fail when no matching reservation exists", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		clientStub.SetRooms("101")
		completeDraft(t)

		// when
		err := coordinator.Cancel(ctx)

		// then
		var rejected *remote.RejectedError
		assert.ErrorAs(t, err, &rejected)
		assert.Equal(t, StateFailed, coordinator.State())
		assert.Equal(t, uint64(0), coordinator.RefreshCount())
	})
}

func TestCoordinator_DraftSelection(t *testing.T) {
	t.Run("changing room should clear the selected slot", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		completeDraft(t)

		// when
		coordinator.SelectRoom("102")

		// then
		draft := coordinator.Draft()
		assert.Equal(t, "102", draft.RoomID)
		assert.Empty(t, draft.TimeSlot)
		assert.Equal(t, "Bia", draft.Holder)
	})

	t.Run("changing date should clear the selected slot", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		completeDraft(t)

		// when
		require.NoError(t, coordinator.SelectDate("2024-06-02"))

		// then
		draft := coordinator.Draft()
		assert.Equal(t, "2024-06-02", draft.Date)
		assert.Empty(t, draft.TimeSlot)
	})

	t.Run("re-selecting the same room should keep the slot", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		completeDraft(t)

		// when
		coordinator.SelectRoom("101")

		// then
		assert.Equal(t, "09:45-11:15", coordinator.Draft().TimeSlot)
	})

	t.Run("should reject a non-zero-padded date before any remote call", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		err := coordinator.SelectDate("2024-6-1")

		// then
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
		assert.Empty(t, coordinator.Draft().Date)
	})

	t.Run("should reject a slot outside the fixed calendar", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		coordinator.SelectRoom("101")
		require.NoError(t, coordinator.SelectDate("2024-06-01"))

		// when
		err := coordinator.SelectSlot("22:30-23:59")

		// then
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("should reject slot selection before room and date are chosen", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		err := coordinator.SelectSlot("09:45-11:15")

		// then
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
	})
}
