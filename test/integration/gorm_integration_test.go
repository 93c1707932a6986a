package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-examgen-be/internal/entity"
	"ai-examgen-be/internal/repository/slotstore"
	"ai-examgen-be/internal/repository/specification"
	"ai-examgen-be/internal/repository/unitofwork"
	"ai-examgen-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStorageSlots(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())
	assert.NotNil(t, uow.StorageSlotRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	key := "artifacts_integration_" + uuid.NewString()
	ctx := context.Background()

	t.Run("Upsert And Find Slot", func(t *testing.T) {
		repo := uowFactory.NewUnitOfWork(ctx).StorageSlotRepository()

		slot := entity.StorageSlot{Key: key, Value: []byte(`[{"display_name":"UH Bab 1"}]`)}
		require.NoError(t, repo.Upsert(ctx, &slot))

		found, err := repo.FindOne(ctx, specification.BySlotKey{Key: key})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.JSONEq(t, `[{"display_name":"UH Bab 1"}]`, string(found.Value))

		// Second write under the same key replaces the value.
		slot.Value = []byte(`[]`)
		require.NoError(t, repo.Upsert(ctx, &slot))

		found, err = repo.FindOne(ctx, specification.BySlotKey{Key: key})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.JSONEq(t, `[]`, string(found.Value))
	})

	t.Run("KeyValue Facade Round Trip", func(t *testing.T) {
		store := slotstore.NewGormSlotStore(uowFactory)
		facadeKey := key + "_facade"

		require.NoError(t, store.Set(ctx, facadeKey, []byte(`{"n":1}`)))

		raw, err := store.Get(ctx, facadeKey)
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":1}`, string(raw))

		require.NoError(t, store.Delete(ctx, facadeKey))

		raw, err = store.Get(ctx, facadeKey)
		require.NoError(t, err)
		assert.Nil(t, raw, "a deleted slot reads as absent")
	})

	// Cleanup
	repo := uowFactory.NewUnitOfWork(ctx).StorageSlotRepository()
	assert.NoError(t, repo.DeleteByKey(ctx, key))
}
