package wishlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfloor/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockEntryRepo struct {
	entries map[string]map[string]struct{} // userID -> set of productIDs
	order   []string
	nextID  int64
}

func newMockEntryRepo() *mockEntryRepo {
	return &mockEntryRepo{entries: make(map[string]map[string]struct{}), nextID: 1}
}

func (m *mockEntryRepo) Add(_ context.Context, userID, productID string) (bool, error) {
	set, ok := m.entries[userID]
	if !ok {
		set = make(map[string]struct{})
		m.entries[userID] = set
	}
	if _, exists := set[productID]; exists {
		return false, nil
	}
	set[productID] = struct{}{}
	m.order = append(m.order, userID+"/"+productID)
	return true, nil
}

func (m *mockEntryRepo) Remove(_ context.Context, userID, productID string) error {
	set := m.entries[userID]
	if _, ok := set[productID]; !ok {
		return ErrNotFound
	}
	delete(set, productID)
	return nil
}

func (m *mockEntryRepo) List(_ context.Context, userID string) ([]Entry, error) {
	var out []Entry
	// Most recent first.
	for i := len(m.order) - 1; i >= 0; i-- {
		for pid := range m.entries[userID] {
			if m.order[i] == userID+"/"+pid {
				out = append(out, Entry{UserID: userID, ProductID: pid})
			}
		}
	}
	return out, nil
}

func (m *mockEntryRepo) Contains(_ context.Context, userID, productID string) (bool, error) {
	_, ok := m.entries[userID][productID]
	return ok, nil
}

type mockProductRepo struct {
	known map[string]struct{}
}

func (m *mockProductRepo) List(_ context.Context, _ product.Filter) (*product.Page, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	if _, ok := m.known[id]; !ok {
		return nil, product.ErrNotFound
	}
	return &product.Product{ID: id}, nil
}

func (m *mockProductRepo) GetBySlug(_ context.Context, _ string) (*product.Product, error) {
	return nil, product.ErrNotFound
}

func (m *mockProductRepo) Related(_ context.Context, _ *product.Product, _ int) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Update(_ context.Context, _ *product.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ string) error           { return nil }
func (m *mockProductRepo) Categories(_ context.Context) ([]product.Category, error) {
	return nil, nil
}

func newTestService(productIDs ...string) *Service {
	known := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		known[id] = struct{}{}
	}
	return NewService(newMockEntryRepo(), &mockProductRepo{known: known})
}

// --- Tests ---

func TestAdd_SavesProduct(t *testing.T) {
	svc := newTestService("p1")

	created, err := svc.Add(context.Background(), "u1", "p1")

	require.NoError(t, err)
	assert.True(t, created)

	saved, err := svc.Contains(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestAdd_IsIdempotent(t *testing.T) {
	svc := newTestService("p1")

	created, err := svc.Add(context.Background(), "u1", "p1")
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.Add(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.False(t, created, "re-adding must not create a second entry")

	entries, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAdd_UnknownProduct(t *testing.T) {
	svc := newTestService()

	_, err := svc.Add(context.Background(), "u1", "ghost")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestRemove(t *testing.T) {
	svc := newTestService("p1")

	_, err := svc.Add(context.Background(), "u1", "p1")
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), "u1", "p1"))

	saved, err := svc.Contains(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestRemove_MissingEntry(t *testing.T) {
	svc := newTestService("p1")

	err := svc.Remove(context.Background(), "u1", "p1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWishlistsAreSeparatePerUser(t *testing.T) {
	svc := newTestService("p1")

	_, err := svc.Add(context.Background(), "u1", "p1")
	require.NoError(t, err)

	saved, err := svc.Contains(context.Background(), "u2", "p1")
	require.NoError(t, err)
	assert.False(t, saved)
}
