package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/order"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/scentshop/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func testOrder(t *testing.T) *order.Order {
	t.Helper()
	item, err := order.NewItem(uuid.New(), "Dior Sauvage", "100ml", valueobject.NewMoneyFromFloat(2800000), 1)
	require.NoError(t, err)

	o, err := order.NewOrder(uuid.New(), []*order.Item{item}, order.MethodVNPay, order.ShippingAddress{
		FullName: "Nguyen Van A",
		Phone:    "0901234567",
		Address:  "12 Ly Thuong Kiet",
	})
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_FindByID(t *testing.T) {
	t.Run("finds existing order with items and timeline", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB)

		orderID := uuid.New()
		userID := uuid.New()

		orderRows := sqlmock.NewRows([]string{"id", "user_id", "total_amount", "status", "payment_method", "payment_status", "version", "created_at", "updated_at"}).
			AddRow(orderID, userID, "2800000", "waiting_payment", "vnpay", "pending", 1, time.Now(), time.Now())
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnRows(orderRows)

		itemRows := sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "variant_volume", "variant_price", "quantity", "line_total"}).
			AddRow(uuid.New(), orderID, uuid.New(), "Dior Sauvage", "100ml", "2800000", 1, "2800000")
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" = \$1`).
			WithArgs(orderID).
			WillReturnRows(itemRows)

		timelineRows := sqlmock.NewRows([]string{"id", "order_id", "status", "note"}).
			AddRow(uuid.New(), orderID, "waiting_payment", "Order placed, awaiting payment")
		mock.ExpectQuery(`SELECT \* FROM "order_timeline_entries" WHERE "order_timeline_entries"\."order_id" = \$1 ORDER BY created_at ASC`).
			WithArgs(orderID).
			WillReturnRows(timelineRows)

		o, err := repo.FindByID(context.Background(), orderID)

		require.NoError(t, err)
		assert.Equal(t, orderID, o.ID)
		assert.Equal(t, order.StatusWaitingPayment, o.Status)
		assert.Len(t, o.Items, 1)
		assert.Len(t, o.Timeline, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing order", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB)

		orderID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(orderID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		o, err := repo.FindByID(context.Background(), orderID)

		assert.Nil(t, o)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_Create(t *testing.T) {
	t.Run("inserts order and clears cart in one transaction", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB)

		o := testOrder(t)
		cartID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(o.ID))
		mock.ExpectQuery(`INSERT INTO "order_items"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(o.Items[0].ID))
		mock.ExpectQuery(`INSERT INTO "order_timeline_entries"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(o.Timeline[0].ID))
		mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$1`).
			WithArgs(cartID).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := repo.Create(context.Background(), o, &cartID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when order insert fails", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB)

		o := testOrder(t)
		cartID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "orders"`).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err := repo.Create(context.Background(), o, &cartID)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_SaveWithLock(t *testing.T) {
	t.Run("updates order and appends timeline", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB)

		o := testOrder(t)
		expected := o.Version
		require.NoError(t, o.MarkPaid("Payment confirmed via VNPay"))

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "order_timeline_entries" .* ON CONFLICT DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), o, expected)

		require.NoError(t, err)
		assert.Equal(t, expected+1, o.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns concurrency conflict when version is stale", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormOrderRepository(gormDB)

		o := testOrder(t)
		expected := o.Version
		require.NoError(t, o.MarkPaid("Payment confirmed via VNPay"))

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "orders" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), o, expected)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
