package memory

import (
	"context"
	"errors"
	"testing"

	"solapay/internal/domain"
	"solapay/internal/storage"
)

func TestUserStore_UpsertAndGet(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	err := store.Upsert(ctx, &domain.UserProfile{
		WalletPubkey: "walletA",
		Name:         "Alice",
		Email:        "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByWallet(ctx, "walletA")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("Name mismatch: got %s, want Alice", got.Name)
	}
	if got.ID == 0 {
		t.Error("expected assigned ID")
	}
}

func TestUserStore_UpsertUpdatesInPlace(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	store.Upsert(ctx, &domain.UserProfile{WalletPubkey: "walletA", Name: "Alice"})

	first, _ := store.GetByWallet(ctx, "walletA")

	store.Upsert(ctx, &domain.UserProfile{WalletPubkey: "walletA", Name: "Alicia"})

	got, err := store.GetByWallet(ctx, "walletA")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}
	if got.Name != "Alicia" {
		t.Errorf("expected updated name, got %s", got.Name)
	}
	if got.ID != first.ID {
		t.Errorf("upsert must keep ID: got %d, want %d", got.ID, first.ID)
	}
}

func TestUserStore_NotFound(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	_, err := store.GetByWallet(ctx, "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserStore_InvalidInput(t *testing.T) {
	store := NewUserStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil, got %v", err)
	}

	err := store.Upsert(ctx, &domain.UserProfile{WalletPubkey: ""})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty pubkey, got %v", err)
	}
}
