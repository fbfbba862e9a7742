package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/scentshop/backend/internal/domain/cart"
	"github.com/scentshop/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormCartRepository_FindByUserID(t *testing.T) {
	t.Run("finds cart with items", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCartRepository(gormDB)

		cartID := uuid.New()
		userID := uuid.New()

		cartRows := sqlmock.NewRows([]string{"id", "user_id", "version", "created_at", "updated_at"}).
			AddRow(cartID, userID, 1, time.Now(), time.Now())
		mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(userID, 1).
			WillReturnRows(cartRows)

		itemRows := sqlmock.NewRows([]string{"id", "cart_id", "product_id", "variant_index", "quantity"}).
			AddRow(uuid.New(), cartID, uuid.New(), 0, 2)
		mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE "cart_items"\."cart_id" = \$1`).
			WithArgs(cartID).
			WillReturnRows(itemRows)

		c, err := repo.FindByUserID(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, cartID, c.ID)
		assert.Len(t, c.Items, 1)
		assert.Equal(t, 2, c.Items[0].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing cart", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCartRepository(gormDB)

		userID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(userID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		c, err := repo.FindByUserID(context.Background(), userID)

		assert.Nil(t, c)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCartRepository_SaveWithLock(t *testing.T) {
	newCart := func(t *testing.T) *cart.Cart {
		t.Helper()
		c := cart.NewCart(uuid.New())
		require.NoError(t, c.AddItem(uuid.New(), 0, 1))
		return c
	}

	t.Run("persists cart and upserts items", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCartRepository(gormDB)

		c := newCart(t)
		expected := c.Version

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "carts" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$1 AND id NOT IN \(\$2\)`).
			WithArgs(c.ID, c.Items[0].ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`INSERT INTO "cart_items" .* ON CONFLICT \("id"\) DO UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(c.Items[0].ID))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), c, expected)

		require.NoError(t, err)
		assert.Equal(t, expected+1, c.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns concurrency conflict when version is stale", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCartRepository(gormDB)

		c := newCart(t)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "carts" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), c, c.Version)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty cart deletes every line", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCartRepository(gormDB)

		c := cart.NewCart(uuid.New())

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "carts" SET .* WHERE id = \$\d+ AND version = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$1`).
			WithArgs(c.ID).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		err := repo.SaveWithLock(context.Background(), c, c.Version)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
