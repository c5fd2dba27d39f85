package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementation ---

type mockRepo struct {
	bySlug map[string]*Product

	created *Product
	updated *Product
	deleted string

	createErr error
}

func newMockRepo(products ...*Product) *mockRepo {
	bySlug := make(map[string]*Product, len(products))
	for _, p := range products {
		bySlug[p.Slug] = p
	}
	return &mockRepo{bySlug: bySlug}
}

func (m *mockRepo) List(_ context.Context, _ Filter) (*Page, error) { return nil, nil }

func (m *mockRepo) GetByID(_ context.Context, id string) (*Product, error) {
	for _, p := range m.bySlug {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) GetBySlug(_ context.Context, slug string) (*Product, error) {
	p, ok := m.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Related(_ context.Context, _ *Product, _ int) ([]Product, error) {
	return nil, nil
}

func (m *mockRepo) Create(_ context.Context, p *Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = p
	return nil
}

func (m *mockRepo) Update(_ context.Context, p *Product) error {
	m.updated = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id string) error {
	m.deleted = id
	return nil
}

func (m *mockRepo) Categories(_ context.Context) ([]Category, error) { return nil, nil }

// --- Tests ---

func TestCreate_AssignsIDSlugAndOwner(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "u1", true, CreateRequest{
		Name:     "Espresso Machine 2000",
		Price:    decimal.RequireFromString("399.00"),
		Category: "home-garden",
		Stock:    5,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "espresso-machine-2000", p.Slug)
	assert.Equal(t, "u1", p.CreatedBy)
	assert.Same(t, p, repo.created)
}

func TestCreate_NonStaffIsDenied(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "u1", false, CreateRequest{
		Name:  "Rogue Listing",
		Price: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Nil(t, repo.created)
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name  string
		req   CreateRequest
		field string
	}{
		{"empty name", CreateRequest{Name: "   ", Price: decimal.NewFromInt(1)}, "name"},
		{"negative price", CreateRequest{Name: "X", Price: decimal.NewFromInt(-1)}, "price"},
		{"negative stock", CreateRequest{Name: "X", Price: decimal.NewFromInt(1), Stock: -1}, "stock"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u1", true, tc.req)
			var fieldErr *InvalidFieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
}

func TestCreate_SlugConflict(t *testing.T) {
	repo := newMockRepo()
	repo.createErr = ErrSlugTaken
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "u1", true, CreateRequest{
		Name:  "Widget",
		Price: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrSlugTaken)
}

func TestUpdate_CreatorMayEdit(t *testing.T) {
	repo := newMockRepo(&Product{ID: "p1", Slug: "widget", Name: "Widget", CreatedBy: "u1"})
	svc := NewService(repo)

	p, err := svc.Update(context.Background(), "u1", false, "widget", UpdateRequest{
		Name:  "Widget v2",
		Price: decimal.RequireFromString("12.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Widget v2", p.Name)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "p1", repo.updated.ID)
}

func TestUpdate_StaffMayEditAnything(t *testing.T) {
	repo := newMockRepo(&Product{ID: "p1", Slug: "widget", Name: "Widget", CreatedBy: "u1"})
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), "staffer", true, "widget", UpdateRequest{
		Name:  "Renamed",
		Price: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
}

func TestUpdate_StrangerIsDenied(t *testing.T) {
	repo := newMockRepo(&Product{ID: "p1", Slug: "widget", Name: "Widget", CreatedBy: "u1"})
	svc := NewService(repo)

	_, err := svc.Update(context.Background(), "u2", false, "widget", UpdateRequest{
		Name:  "Hijacked",
		Price: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Nil(t, repo.updated)
}

func TestUpdate_UnknownSlug(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Update(context.Background(), "u1", false, "ghost", UpdateRequest{
		Name:  "X",
		Price: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_OwnershipRules(t *testing.T) {
	repo := newMockRepo(&Product{ID: "p1", Slug: "widget", CreatedBy: "u1"})
	svc := NewService(repo)

	require.ErrorIs(t, svc.Delete(context.Background(), "u2", false, "widget"), ErrPermissionDenied)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), "u1", false, "widget"))
	assert.Equal(t, "p1", repo.deleted)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Wireless Headphones":     "wireless-headphones",
		"USB-C Fast Charger":      "usb-c-fast-charger",
		"  Trim Me  ":             "trim-me",
		"Espresso!! Machine 2000": "espresso-machine-2000",
		"Ünïcödé Name":            "n-c-d-name",
		"---":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestPriceRangeValid(t *testing.T) {
	for _, r := range []PriceRange{PriceRangeAny, PriceRangeUnder100, PriceRange100To500, PriceRange500To1000, PriceRangeAbove1000} {
		assert.True(t, r.Valid(), "%q should be valid", r)
	}
	assert.False(t, PriceRange("50-75").Valid())
}
