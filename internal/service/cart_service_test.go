package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/storefront/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCartFixture(t *testing.T, items ...domain.CartItem) (*CartService, *fakeUserRepository, *fakeProductRepository, *domain.User) {
	t.Helper()
	user := &domain.User{ID: primitive.NewObjectID(), CartItems: items}
	stored := *user
	users := newFakeUserRepository(&stored)
	products := &fakeProductRepository{}
	return NewCartService(users, products, zerolog.Nop()), users, products, user
}

func TestGetCartProducts_JoinsQuantities(t *testing.T) {
	hat := domain.Product{ID: primitive.NewObjectID(), Name: "Hat", Price: 15}
	shoe := domain.Product{ID: primitive.NewObjectID(), Name: "Shoe", Price: 49.5}
	sut, _, products, user := newCartFixture(t,
		domain.CartItem{ProductID: shoe.ID, Quantity: 2},
		domain.CartItem{ProductID: hat.ID, Quantity: 1},
	)
	products.products = []domain.Product{hat, shoe}

	lines, err := sut.GetCartProducts(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Shoe", lines[0].Name)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, "Hat", lines[1].Name)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestGetCartProducts_DropsMissingProducts(t *testing.T) {
	hat := domain.Product{ID: primitive.NewObjectID(), Name: "Hat"}
	sut, _, products, user := newCartFixture(t,
		domain.CartItem{ProductID: primitive.NewObjectID(), Quantity: 4},
		domain.CartItem{ProductID: hat.ID, Quantity: 1},
	)
	products.products = []domain.Product{hat}

	lines, err := sut.GetCartProducts(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, hat.ID, lines[0].ID)
}

func TestGetCartProducts_EmptyCart(t *testing.T) {
	sut, _, _, user := newCartFixture(t)

	lines, err := sut.GetCartProducts(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGetCartProducts_RepoError(t *testing.T) {
	sut, _, products, user := newCartFixture(t, domain.CartItem{ProductID: primitive.NewObjectID(), Quantity: 1})
	products.err = errors.New("database error")

	_, err := sut.GetCartProducts(context.Background(), user)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorContains(t, err, "database error")
}

func TestAddToCart_AppendsThenIncrements(t *testing.T) {
	hat := domain.Product{ID: primitive.NewObjectID(), Name: "Hat"}
	sut, users, products, user := newCartFixture(t)
	products.products = []domain.Product{hat}
	ctx := context.Background()

	items, err := sut.AddToCart(ctx, user, hat.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{ProductID: hat.ID, Quantity: 1}}, items)

	items, err = sut.AddToCart(ctx, user, hat.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{ProductID: hat.ID, Quantity: 2}}, items)

	assert.Equal(t, items, users.cart(user.ID), "cart must be persisted before returning")
	assert.Equal(t, items, user.CartItems)
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	sut, users, _, user := newCartFixture(t)

	_, err := sut.AddToCart(context.Background(), user, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, users.saves)
}

func TestRemoveAllFromCart(t *testing.T) {
	sut, users, _, user := newCartFixture(t,
		domain.CartItem{ProductID: primitive.NewObjectID(), Quantity: 1},
		domain.CartItem{ProductID: primitive.NewObjectID(), Quantity: 3},
	)

	items, err := sut.RemoveAllFromCart(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, users.cart(user.ID))
}

func TestRemoveFromCart_OnlyMatchingEntry(t *testing.T) {
	keep, drop := primitive.NewObjectID(), primitive.NewObjectID()
	sut, users, _, user := newCartFixture(t,
		domain.CartItem{ProductID: drop, Quantity: 1},
		domain.CartItem{ProductID: keep, Quantity: 3},
	)

	items, err := sut.RemoveFromCart(context.Background(), user, drop)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{ProductID: keep, Quantity: 3}}, items)
	assert.Equal(t, items, users.cart(user.ID))
}

func TestRemoveFromCart_AbsentIsNoop(t *testing.T) {
	p := primitive.NewObjectID()
	sut, _, _, user := newCartFixture(t, domain.CartItem{ProductID: p, Quantity: 2})

	items, err := sut.RemoveFromCart(context.Background(), user, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{ProductID: p, Quantity: 2}}, items)
}

func TestUpdateQuantity_Overwrites(t *testing.T) {
	p := primitive.NewObjectID()
	sut, users, _, user := newCartFixture(t, domain.CartItem{ProductID: p, Quantity: 2})

	items, err := sut.UpdateQuantity(context.Background(), user, p, 9)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{ProductID: p, Quantity: 9}}, items)
	assert.Equal(t, items, users.cart(user.ID))
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	p, other := primitive.NewObjectID(), primitive.NewObjectID()
	sutA, _, _, userA := newCartFixture(t, domain.CartItem{ProductID: p, Quantity: 2}, domain.CartItem{ProductID: other, Quantity: 1})
	sutB, _, _, userB := newCartFixture(t, domain.CartItem{ProductID: p, Quantity: 2}, domain.CartItem{ProductID: other, Quantity: 1})

	zeroed, err := sutA.UpdateQuantity(context.Background(), userA, p, 0)
	require.NoError(t, err)
	removed, err := sutB.RemoveFromCart(context.Background(), userB, p)
	require.NoError(t, err)

	assert.Equal(t, removed, zeroed)
}

func TestUpdateQuantity_NotInCart(t *testing.T) {
	sut, users, _, user := newCartFixture(t, domain.CartItem{ProductID: primitive.NewObjectID(), Quantity: 2})

	_, err := sut.UpdateQuantity(context.Background(), user, primitive.NewObjectID(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, users.saves)
}

func TestUpdateQuantity_Negative(t *testing.T) {
	p := primitive.NewObjectID()
	sut, _, _, user := newCartFixture(t, domain.CartItem{ProductID: p, Quantity: 2})

	_, err := sut.UpdateQuantity(context.Background(), user, p, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSave_RepoError(t *testing.T) {
	p := primitive.NewObjectID()
	sut, users, _, user := newCartFixture(t, domain.CartItem{ProductID: p, Quantity: 2})
	users.err = errors.New("database error")

	_, err := sut.RemoveFromCart(context.Background(), user, p)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Len(t, user.CartItems, 1, "in-memory cart must stay untouched on failure")
}

func TestClearCart(t *testing.T) {
	sut, users, _, user := newCartFixture(t, domain.CartItem{ProductID: primitive.NewObjectID(), Quantity: 2})

	require.NoError(t, sut.ClearCart(context.Background(), user.ID))
	assert.Empty(t, users.cart(user.ID))

	err := sut.ClearCart(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}
