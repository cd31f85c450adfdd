package service_test

import (
	"context"
	"sort"
	"testing"

	"github.com/localbazaar/market-service/internal/entities"
	"github.com/localbazaar/market-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type favStore struct{ sets map[string]map[string]bool }

func newFavStore() *favStore { return &favStore{sets: make(map[string]map[string]bool)} }

func (f *favStore) Toggle(ctx context.Context, userID, shopID string) error {
	if f.sets[userID] == nil {
		f.sets[userID] = make(map[string]bool)
	}
	if f.sets[userID][shopID] {
		delete(f.sets[userID], shopID)
	} else {
		f.sets[userID][shopID] = true
	}
	return nil
}

func (f *favStore) List(ctx context.Context, userID string) ([]string, error) {
	out := make([]string, 0, len(f.sets[userID]))
	for id := range f.sets[userID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func TestFavoriteService_Toggle(t *testing.T) {
	ctx := context.Background()
	m := newMemStore()
	seedMarket(m)
	favs := newFavStore()
	svc := service.NewFavoriteService(discardLogger(), favs, shopStore{m})

	ids, err := svc.Toggle(ctx, customer, "shop-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"shop-a"}, ids)

	ids, err = svc.Toggle(ctx, customer, "shop-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"shop-a", "shop-b"}, ids)

	// toggling again removes
	ids, err = svc.Toggle(ctx, customer, "shop-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"shop-b"}, ids)

	_, err = svc.Toggle(ctx, customer, "no-such-shop")
	assert.ErrorIs(t, err, entities.ErrShopNotFound)

	ids, err = svc.List(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, []string{"shop-b"}, ids)
}
