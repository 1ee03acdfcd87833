package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmeshcher/filmshop-orders/internal/model"
)

func TestCents(t *testing.T) {
	tests := []struct {
		in    string
		cents int64
	}{
		{"19.99", 1999},
		{"20", 2000},
		{"0.005", 1},
		{"0", 0},
		{"1234.5", 123450},
		{"92233720368547758.07", 9223372036854775807},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := toCents(decimal.RequireFromString(tt.in))
			assert.Equal(t, tt.cents, got)
			assert.Equal(t, decimal.RequireFromString(tt.in).Round(2).StringFixed(2), fromCents(got).StringFixed(2))
		})
	}
}

func TestWithRetry(t *testing.T) {
	r := &PostgresRepository{delays: []time.Duration{0, 0}}

	t.Run("retries serialization failure", func(t *testing.T) {
		calls := 0
		err := r.withRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &pgconn.PgError{Code: pgerrcode.SerializationFailure}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after all delays", func(t *testing.T) {
		calls := 0
		err := r.withRetry(context.Background(), func() error {
			calls++
			return errors.New("dial tcp: connection refused")
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		err := r.withRetry(context.Background(), func() error {
			calls++
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

// Интеграционный тест, требует PostgreSQL по адресу из TEST_DATABASE_URI.
func TestPostgresRepository_Orders(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URI")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URI is not set")
	}

	repo, err := NewPostgresRepository(dsn)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()

	userID, err := repo.CreateUser(ctx, "orders-"+uuid.NewString(), []byte("hash"))
	require.NoError(t, err)

	newOrder := func(total string) *model.Order {
		return &model.Order{
			ID:     uuid.NewString(),
			UserID: userID,
			Items: []model.OrderItem{{
				Name: "Stalker", Qty: 1, Price: decimal.RequireFromString(total), Product: "film-1",
			}},
			ShippingAddress: model.ShippingAddress{Address: "Main st 1", City: "Moscow", PostalCode: "101000", Country: "RU"},
			ItemsPrice:      decimal.RequireFromString(total),
			TotalPrice:      decimal.RequireFromString(total),
		}
	}

	first, err := repo.CreateOrder(ctx, newOrder("19.99"))
	require.NoError(t, err)
	assert.False(t, first.IsPaid)
	assert.Equal(t, "19.99", first.TotalPrice.StringFixed(2))

	second, err := repo.CreateOrder(ctx, newOrder("5.00"))
	require.NoError(t, err)

	orders, err := repo.GetOrdersByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID)
	assert.Equal(t, first.ID, orders[1].ID)

	_, err = repo.GetOrderByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = repo.GetOrderByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrOrderNotFound)

	result := model.PaymentResult{ID: "PAY-1", Status: "COMPLETED", UpdateTime: "2026-10-16T10:00:00Z", EmailAddress: "buyer@example.com"}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		already   int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.MarkOrderPaid(ctx, first.ID, time.Now(), result)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ErrOrderAlreadyPaid):
				already++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 4, already)

	paid, err := repo.GetOrderByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	require.NotNil(t, paid.PaymentResult)
	assert.Equal(t, result, *paid.PaymentResult)

	_, err = repo.MarkOrderPaid(ctx, uuid.NewString(), time.Now(), result)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
