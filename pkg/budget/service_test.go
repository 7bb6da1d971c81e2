package budget

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gestorweb/gestor/internal/event_bus"
	"github.com/gestorweb/gestor/internal/notify"
	"github.com/gestorweb/gestor/internal/poll"
	"github.com/gestorweb/gestor/internal/utils"
	"github.com/gestorweb/gestor/pkg/client"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var repoStub = NewRepositoryStub()

var clock = &utils.MockClock{FixedNow: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)}

var eventBus *event_bus.EventBus

var service Service

var testPollOptions = poll.Options{Interval: 5 * time.Millisecond, Timeout: 100 * time.Millisecond}

func setup(t *testing.T) func() {
	eventBus = event_bus.NewEventBus()
	service = NewService(repoStub, eventBus, clock, testPollOptions)
	return func() {
		t.Log("Teardown after test")
		repoStub.Reset()
	}
}

func captureApproved() *[]event_bus.BudgetApproved {
	var received []event_bus.BudgetApproved
	event_bus.SubscribeTyped[event_bus.BudgetApproved](eventBus, event_bus.BudgetApprovedEvent,
		func(e event_bus.EventT[event_bus.BudgetApproved]) error {
			received = append(received, e.Data)
			return nil
		})
	return &received
}

func captureClientChanged() *[]event_bus.BudgetClientChanged {
	var received []event_bus.BudgetClientChanged
	event_bus.SubscribeTyped[event_bus.BudgetClientChanged](eventBus, event_bus.BudgetClientChangedEvent,
		func(e event_bus.EventT[event_bus.BudgetClientChanged]) error {
			received = append(received, e.Data)
			return nil
		})
	return &received
}

func createBudget(t *testing.T, b Budget) Budget {
	t.Helper()
	created, err := service.Create(ctx, b)
	require.NoError(t, err)
	return created
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should store budget as pending", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		collector := notify.NewCollector()
		reqCtx := notify.WithNotifier(ctx, collector)

		// when
		created, err := service.Create(reqCtx, Budget{
			Number:   "42",
			ClientId: 3,
			Status:   StatusApproved,
			Value:    decimal.RequireFromString("99.999"),
		})

		// then
		require.NoError(t, err)
		assert.NotZero(t, created.Id)
		assert.Equal(t, StatusPending, created.Status)
		assert.Nil(t, created.StatusUpdatedAt)
		assert.Equal(t, clock.Now(), created.CreatedAt)
		assert.True(t, decimal.RequireFromString("100").Equal(created.Value))
		assert.Equal(t, []notify.Notice{{Level: notify.LevelInfo, Message: "Orçamento 1 criado"}}, collector.Notices())
	})

	t.Run("should reject negative value", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, Budget{Value: decimal.NewFromInt(-1)})

		assert.ErrorIs(t, err, ErrInvalidBudget)
	})
}

func TestServiceImpl_UpdateStatus(t *testing.T) {
	t.Run("should publish approval with persisted data", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		received := captureApproved()
		b := createBudget(t, Budget{Number: "42", ClientId: 3, EmployeeId: 5, Description: "Troca de piso"})

		// when
		approved, err := service.UpdateStatus(ctx, b.Id, StatusApproved)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, approved.Status)
		require.NotNil(t, approved.StatusUpdatedAt)
		assert.Equal(t, clock.Now(), *approved.StatusUpdatedAt)
		require.Len(t, *received, 1)
		event := (*received)[0]
		assert.Equal(t, b.Id, event.Id)
		assert.Equal(t, "42", event.Number)
		assert.Equal(t, 3, event.ClientId)
		assert.Equal(t, 5, event.EmployeeId)
		assert.Equal(t, "Troca de piso", event.Description)
	})

	t.Run("should wait for approval to become visible before publishing", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		received := captureApproved()
		b := createBudget(t, Budget{Number: "7"})
		repoStub.SetStaleReads(2)

		// when
		approved, err := service.UpdateStatus(ctx, b.Id, StatusApproved)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, approved.Status)
		require.Len(t, *received, 1)
		assert.Equal(t, "7", (*received)[0].Number)
	})

	t.Run("should warn and still publish when approval is not confirmed in time", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		received := captureApproved()
		collector := notify.NewCollector()
		reqCtx := notify.WithNotifier(ctx, collector)
		b := createBudget(t, Budget{Number: "8"})
		repoStub.SetStaleReads(1000)

		// when
		approved, err := service.UpdateStatus(reqCtx, b.Id, StatusApproved)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, approved.Status)
		require.NotNil(t, approved.StatusUpdatedAt)
		require.Len(t, *received, 1)
		require.Len(t, collector.Notices(), 1)
		assert.Equal(t, notify.LevelWarning, collector.Notices()[0].Level)
		assert.Contains(t, collector.Notices()[0].Message, "não confirmada a tempo")
	})

	t.Run("should not publish for other transitions", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		received := captureApproved()
		b := createBudget(t, Budget{Number: "9"})

		// when
		rejected, err := service.UpdateStatus(ctx, b.Id, StatusRejected)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, rejected.Status)
		assert.Empty(t, *received)
	})

	t.Run("should reject unknown status", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		b := createBudget(t, Budget{})

		_, err := service.UpdateStatus(ctx, b.Id, Status("archived"))

		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("should return not found for missing budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.UpdateStatus(ctx, 99, StatusApproved)

		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})

	t.Run("should not fail when a subscriber fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		eventBus.Subscribe(event_bus.BudgetApprovedEvent, func(e event_bus.Event) error {
			return errors.New("order of service unavailable")
		})
		b := createBudget(t, Budget{})

		_, err := service.UpdateStatus(ctx, b.Id, StatusApproved)

		assert.NoError(t, err)
	})
}

func TestServiceImpl_ChangeClient(t *testing.T) {
	t.Run("should publish client change for approved budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		received := captureClientChanged()
		b := createBudget(t, Budget{Number: "42", ClientId: 3})
		_, err := service.UpdateStatus(ctx, b.Id, StatusApproved)
		require.NoError(t, err)

		// when
		updated, err := service.ChangeClient(ctx, b.Id, 4)

		// then
		require.NoError(t, err)
		assert.Equal(t, 4, updated.ClientId)
		require.Len(t, *received, 1)
		assert.Equal(t, 4, (*received)[0].ClientId)
		assert.Equal(t, 3, (*received)[0].PreviousClientId)
	})

	t.Run("should not publish for pending budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		received := captureClientChanged()
		b := createBudget(t, Budget{ClientId: 3})

		updated, err := service.ChangeClient(ctx, b.Id, 4)

		require.NoError(t, err)
		assert.Equal(t, 4, updated.ClientId)
		assert.Empty(t, *received)
	})

	t.Run("should not publish when client is unchanged", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		received := captureClientChanged()
		b := createBudget(t, Budget{ClientId: 3})
		_, err := service.UpdateStatus(ctx, b.Id, StatusApproved)
		require.NoError(t, err)

		_, err = service.ChangeClient(ctx, b.Id, 3)

		require.NoError(t, err)
		assert.Empty(t, *received)
	})
}

func TestServiceImpl_Update(t *testing.T) {
	t.Run("should keep status and carry embedded client on rename", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		received := captureClientChanged()
		b := createBudget(t, Budget{Number: "42", ClientId: 3})
		_, err := service.UpdateStatus(ctx, b.Id, StatusApproved)
		require.NoError(t, err)

		// when
		updated, err := service.Update(ctx, Budget{
			Id:       b.Id,
			Number:   "42",
			ClientId: 4,
			Client:   &client.Client{Id: 4, Name: "Beta Ltda", Reference: "BET"},
			Status:   StatusPending,
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, updated.Status)
		require.Len(t, *received, 1)
		assert.Equal(t, "BET", (*received)[0].ClientReference)
		assert.Equal(t, "Beta Ltda", (*received)[0].ClientName)
	})

	t.Run("should return not found for missing budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Update(ctx, Budget{Id: 99})

		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	b := createBudget(t, Budget{})

	deleted, err := service.Delete(ctx, b.Id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = service.Delete(ctx, b.Id)
	require.NoError(t, err)
	assert.False(t, deleted)
}
