package domain

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrItemNotInCart = errors.New("product not found in cart")

// CartItem is stored inside the owning user's document. Quantity is never zero:
// setting it to zero removes the entry.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// CartLine is a cart item joined with the catalog product it references.
type CartLine struct {
	Product
	Quantity int `json:"quantity"`
}

// AddToCart increments the quantity of productID by one, appending a new
// entry with quantity 1 when the product is not in the cart yet.
func AddToCart(items []CartItem, productID primitive.ObjectID) []CartItem {
	out := cloneItems(items)
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, CartItem{ProductID: productID, Quantity: 1})
}

// RemoveFromCart drops every entry for productID. Missing products are ignored.
func RemoveFromCart(items []CartItem, productID primitive.ObjectID) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}

func SetCartQuantity(items []CartItem, productID primitive.ObjectID, quantity int) ([]CartItem, error) {
	idx := -1
	for i := range items {
		if items[i].ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotInCart
	}
	if quantity == 0 {
		return RemoveFromCart(items, productID), nil
	}

	out := cloneItems(items)
	out[idx].Quantity = quantity
	return out, nil
}

func cloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items), len(items)+1)
	copy(out, items)
	return out
}
