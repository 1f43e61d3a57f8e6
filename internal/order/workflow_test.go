package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"storekeep/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) OrdersByStore(ctx context.Context, storeID string) ([]api.OrderRecord, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.OrderRecord), args.Error(1)
}

func (m *MockBackend) ProductByID(ctx context.Context, productID string) (*api.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.Product), args.Error(1)
}

func (m *MockBackend) UpdateOrderStatus(ctx context.Context, orderID, status string) (*api.OrderRecord, error) {
	args := m.Called(ctx, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.OrderRecord), args.Error(1)
}

type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Dial(phone string) error {
	args := m.Called(phone)
	return args.Error(0)
}

func demoRecords(status string) []api.OrderRecord {
	return []api.OrderRecord{
		{
			OrderID:   "o1",
			Status:    status,
			CreatedAt: time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
			Store:     api.StoreRef{ID: "s1", Name: "Cake By Dee"},
			User:      api.UserRef{ID: "u1", Username: "buyer", Phone: "0812-345 6789"},
			Products: []api.OrderLine{
				{Product: api.ProductRef{ID: "p1"}, Quantity: 2},
				{Product: api.ProductRef{ID: "p2"}, Quantity: 1},
			},
		},
	}
}

func expectProducts(backend *MockBackend) {
	backend.On("ProductByID", mock.Anything, "p1").Return(&api.Product{
		ID: "p1", Name: "Chocolate Cake", Price: api.Price(100),
	}, nil)
	backend.On("ProductByID", mock.Anything, "p2").Return(&api.Product{
		ID: "p2", Name: "Brownie", Price: api.Price(50),
	}, nil)
}

// --- Tests ---

func TestWorkflow_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("Enriches line items and computes totals", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("pending"), nil)
		expectProducts(backend)

		w := NewWorkflow(backend, new(MockDialer))
		orders, err := w.Load(ctx, "s1")

		require.NoError(t, err)
		require.Len(t, orders, 1)

		o := orders[0]
		assert.Equal(t, "o1", o.ID)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, "Cake By Dee", o.StoreName)
		require.Len(t, o.Items, 2)
		assert.Equal(t, "Chocolate Cake", o.Items[0].Name)
		assert.Equal(t, 2, o.Items[0].Quantity)
		assert.Equal(t, "Brownie", o.Items[1].Name)

		// quantities 2 and 1, prices 100 and 50
		assert.Equal(t, 250.0, o.Total)
	})

	t.Run("Failed lookup keeps the previous snapshot", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("pending"), nil)
		expectProducts(backend)

		w := NewWorkflow(backend, new(MockDialer))
		_, err := w.Load(ctx, "s1")
		require.NoError(t, err)
		before := w.Orders()

		// Second load: one product lookup fails.
		failing := new(MockBackend)
		failing.On("OrdersByStore", ctx, "s1").Return(demoRecords("confirmed"), nil)
		failing.On("ProductByID", mock.Anything, "p1").Return(&api.Product{
			ID: "p1", Name: "Chocolate Cake", Price: api.Price(100),
		}, nil)
		failing.On("ProductByID", mock.Anything, "p2").Return(nil, errors.New("not found"))
		w.backend = failing

		orders, err := w.Load(ctx, "s1")

		assert.Error(t, err)
		assert.Nil(t, orders)
		assert.Equal(t, before, w.Orders())
	})

	t.Run("Fetch failure keeps the previous snapshot", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(nil, errors.New("timeout"))

		w := NewWorkflow(backend, new(MockDialer))
		orders, err := w.Load(ctx, "s1")

		assert.Error(t, err)
		assert.Nil(t, orders)
		assert.Empty(t, w.Orders())
	})

	t.Run("Empty order list", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return([]api.OrderRecord{}, nil)

		w := NewWorkflow(backend, new(MockDialer))
		orders, err := w.Load(ctx, "s1")

		assert.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestWorkflow_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	loaded := func(t *testing.T, backend *MockBackend) *Workflow {
		t.Helper()
		w := NewWorkflow(backend, new(MockDialer))
		_, err := w.Load(ctx, "s1")
		require.NoError(t, err)
		return w
	}

	t.Run("Valid transition updates then reloads", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("pending"), nil).Once()
		expectProducts(backend)
		w := loaded(t, backend)

		backend.On("UpdateOrderStatus", ctx, "o1", "confirmed").Return(&api.OrderRecord{
			OrderID: "o1", Status: "confirmed",
		}, nil)
		// The reload after the mutation reflects server truth.
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("confirmed"), nil).Once()

		orders, err := w.UpdateStatus(ctx, "s1", "o1", StatusConfirmed)

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, StatusConfirmed, orders[0].Status)
		backend.AssertExpectations(t)
	})

	t.Run("Cancel from non-terminal state", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("processing"), nil).Once()
		expectProducts(backend)
		w := loaded(t, backend)

		backend.On("UpdateOrderStatus", ctx, "o1", "cancelled").Return(&api.OrderRecord{
			OrderID: "o1", Status: "cancelled",
		}, nil)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("cancelled"), nil).Once()

		orders, err := w.UpdateStatus(ctx, "s1", "o1", StatusCancelled)

		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, orders[0].Status)
	})

	t.Run("Invalid transition never reaches the backend", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("pending"), nil).Once()
		expectProducts(backend)
		w := loaded(t, backend)

		_, err := w.UpdateStatus(ctx, "s1", "o1", StatusDelivered)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		backend.AssertNotCalled(t, "UpdateOrderStatus")
	})

	t.Run("Terminal order rejects all transitions", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("delivered"), nil).Once()
		expectProducts(backend)
		w := loaded(t, backend)

		_, err := w.UpdateStatus(ctx, "s1", "o1", StatusCancelled)

		assert.ErrorIs(t, err, ErrInvalidTransition)
		backend.AssertNotCalled(t, "UpdateOrderStatus")
	})

	t.Run("Unknown order", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("pending"), nil).Once()
		expectProducts(backend)
		w := loaded(t, backend)

		_, err := w.UpdateStatus(ctx, "s1", "nope", StatusConfirmed)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Backend failure skips the reload", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("pending"), nil).Once()
		expectProducts(backend)
		w := loaded(t, backend)

		backend.On("UpdateOrderStatus", ctx, "o1", "confirmed").Return(nil, errors.New("boom"))

		_, err := w.UpdateStatus(ctx, "s1", "o1", StatusConfirmed)

		assert.Error(t, err)
		// Snapshot unchanged.
		assert.Equal(t, StatusPending, w.Orders()[0].Status)
		backend.AssertNumberOfCalls(t, "OrdersByStore", 1)
	})
}

func TestWorkflow_CallCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("Dials the normalized number", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("pending"), nil)
		expectProducts(backend)

		dialer := new(MockDialer)
		dialer.On("Dial", "08123456789").Return(nil)

		w := NewWorkflow(backend, dialer)
		_, err := w.Load(ctx, "s1")
		require.NoError(t, err)

		res, err := w.CallCustomer(ctx, "o1")

		require.NoError(t, err)
		assert.True(t, res.Called)
		assert.Equal(t, "08123456789", res.Phone)
		dialer.AssertExpectations(t)
	})

	t.Run("No phone number on file", func(t *testing.T) {
		records := demoRecords("pending")
		records[0].User.Phone = ""

		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(records, nil)
		expectProducts(backend)

		dialer := new(MockDialer)
		w := NewWorkflow(backend, dialer)
		_, err := w.Load(ctx, "s1")
		require.NoError(t, err)

		res, err := w.CallCustomer(ctx, "o1")

		require.NoError(t, err)
		assert.False(t, res.Called)
		assert.NotEmpty(t, res.Message)
		dialer.AssertNotCalled(t, "Dial")
	})

	t.Run("Unknown order", func(t *testing.T) {
		w := NewWorkflow(new(MockBackend), new(MockDialer))

		_, err := w.CallCustomer(ctx, "nope")

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("Dialer failure surfaces", func(t *testing.T) {
		backend := new(MockBackend)
		backend.On("OrdersByStore", ctx, "s1").Return(demoRecords("pending"), nil)
		expectProducts(backend)

		dialer := new(MockDialer)
		dialer.On("Dial", "08123456789").Return(errors.New("no telephony"))

		w := NewWorkflow(backend, dialer)
		_, err := w.Load(ctx, "s1")
		require.NoError(t, err)

		_, err = w.CallCustomer(ctx, "o1")
		assert.Error(t, err)
	})
}
