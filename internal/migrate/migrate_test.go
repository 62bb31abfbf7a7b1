package migrate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bossbruno/quick-bundles-notifications/internal/models"
)

type fakeStore struct {
	chats        []models.Chat
	listings     map[string]*models.Listing
	listingErr   error
	transactions []*models.Transaction
	stamped      map[string]string
	createErr    error
}

func (f *fakeStore) ListChats(_ context.Context) ([]models.Chat, error) {
	return f.chats, nil
}

func (f *fakeStore) GetListing(_ context.Context, id string) (*models.Listing, error) {
	if f.listingErr != nil {
		return nil, f.listingErr
	}
	return f.listings[id], nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.transactions = append(f.transactions, tx)
	return nil
}

func (f *fakeStore) SetActiveOrder(_ context.Context, chatID, orderID string) error {
	if f.stamped == nil {
		f.stamped = map[string]string{}
	}
	f.stamped[chatID] = orderID
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunMigratesChatsWithoutActiveOrder(t *testing.T) {
	createdAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeStore{
		chats: []models.Chat{
			{
				ID:              "chat-1",
				BuyerID:         "u1",
				BundleID:        "b1",
				Status:          "completed",
				RecipientNumber: "+233200000001",
				CreatedAt:       createdAt,
				UpdatedAt:       createdAt,
			},
			{ID: "chat-2", BuyerID: "u2", ActiveOrderID: "t-already"},
		},
		listings: map[string]*models.Listing{
			"b1": {ID: "b1", Name: "5GB Weekly", DataAmount: "5GB", Validity: "7 days", Price: 20},
		},
	}

	res, err := Run(context.Background(), store, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Migrated)
	assert.Equal(t, 1, res.Skipped)

	require.Len(t, store.transactions, 1)
	tx := store.transactions[0]
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, "u1", tx.UserID)
	assert.Equal(t, "bundle_purchase", tx.Type)
	assert.Equal(t, "completed", tx.Status)
	assert.Equal(t, "5GB Weekly", tx.BundleName)
	assert.Equal(t, "5GB", tx.DataAmount)
	assert.Equal(t, "7 days", tx.Validity)
	assert.Equal(t, float64(20), tx.Amount)
	assert.Equal(t, "+233200000001", tx.RecipientNumber)
	assert.Equal(t, "unknown", tx.Provider)
	assert.Equal(t, "chat-1", tx.ChatID)
	assert.Equal(t, createdAt, tx.CreatedAt)

	assert.Equal(t, tx.ID, store.stamped["chat-1"])
	assert.NotContains(t, store.stamped, "chat-2")
}

func TestRunDefaultsMissingChatFields(t *testing.T) {
	store := &fakeStore{
		chats: []models.Chat{{ID: "chat-1", BuyerID: "u1"}},
	}

	res, err := Run(context.Background(), store, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Migrated)
	tx := store.transactions[0]
	assert.Equal(t, models.StatusPending, tx.Status)
	assert.False(t, tx.CreatedAt.IsZero())
	assert.Empty(t, tx.BundleName)
}

func TestRunToleratesListingLookupFailure(t *testing.T) {
	store := &fakeStore{
		chats:      []models.Chat{{ID: "chat-1", BuyerID: "u1", BundleID: "b1"}},
		listingErr: errors.New("store down"),
	}

	res, err := Run(context.Background(), store, testLogger())

	require.NoError(t, err)
	assert.Equal(t, 1, res.Migrated)
	assert.Empty(t, store.transactions[0].BundleName)
}

func TestRunStopsOnCreateFailure(t *testing.T) {
	store := &fakeStore{
		chats:     []models.Chat{{ID: "chat-1", BuyerID: "u1"}},
		createErr: errors.New("insert failed"),
	}

	res, err := Run(context.Background(), store, testLogger())

	require.Error(t, err)
	assert.Zero(t, res.Migrated)
	assert.Empty(t, store.stamped)
}

func TestRunEmptyChatSet(t *testing.T) {
	res, err := Run(context.Background(), &fakeStore{}, testLogger())
	require.NoError(t, err)
	assert.Zero(t, res.Migrated)
	assert.Zero(t, res.Skipped)
}
