package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(id string, price float64) *Product {
	return &Product{ID: id, Name: "product " + id, Price: price, Colors: []string{"blue", "red"}}
}

func TestCartProduct_Compare(t *testing.T) {
	a := NewCartProduct("1", "blue", 2, "Shirt", nil)

	assert.True(t, a.Compare(NewCartProduct("1", "blue", 7, "Other name", resolved("1", 10))))
	assert.False(t, a.Compare(NewCartProduct("1", "red", 2, "Shirt", nil)))
	assert.False(t, a.Compare(NewCartProduct("2", "blue", 2, "Shirt", nil)))
	assert.False(t, a.Compare(nil))
}

func TestCartProduct_AddToQuantity(t *testing.T) {
	p := NewCartProduct("1", "blue", 2, "Shirt", nil)
	p.AddToQuantity(3)
	assert.Equal(t, 5, p.Quantity())

	p.AddToQuantity(-6)
	assert.Equal(t, -1, p.Quantity(), "no clamping is applied")
}

func TestNewCart_FromLineItems(t *testing.T) {
	cart := NewCart(
		LineItem{ID: "1", Color: "blue", Quantity: 2, Name: "Shirt"},
		LineItem{ID: "2", Color: "red", Quantity: 1, Name: "Hat"},
	)

	products := cart.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "1", products[0].ID())
	assert.Equal(t, "Hat", products[1].Name())
	assert.Nil(t, products[0].Product())
	assert.Equal(t, 3, cart.TotalQuantity())

	_, ok := cart.TotalPrice()
	assert.False(t, ok, "price is unknown until products are resolved")
}

func TestNewCart_MergesDuplicateKeys(t *testing.T) {
	cart := NewCart(
		LineItem{ID: "1", Color: "blue", Quantity: 2, Name: "Shirt"},
		LineItem{ID: "2", Color: "red", Quantity: 1, Name: "Hat"},
		LineItem{ID: "1", Color: "blue", Quantity: 4, Name: "Shirt (old)"},
	)

	products := cart.Products()
	require.Len(t, products, 2)
	assert.Equal(t, 6, products[0].Quantity())
	assert.Equal(t, "Shirt", products[0].Name())
	assert.Equal(t, 7, cart.TotalQuantity())
}

func TestNewCart_Empty(t *testing.T) {
	cart := NewCart()
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.TotalQuantity())

	price, ok := cart.TotalPrice()
	assert.True(t, ok)
	assert.Zero(t, price)
}

func TestAddProduct_AppendsNewKey(t *testing.T) {
	cart := NewCart()
	cart.AddProduct(NewCartProduct("1", "blue", 2, "Shirt", resolved("1", 10)))
	cart.AddProduct(NewCartProduct("1", "red", 1, "Shirt", resolved("1", 10)))

	assert.Equal(t, 2, cart.Len())
	assert.Equal(t, 3, cart.TotalQuantity())

	price, ok := cart.TotalPrice()
	require.True(t, ok)
	assert.Equal(t, 30.0, price)
}

func TestAddProduct_MergesExistingKey(t *testing.T) {
	cart := NewCart(LineItem{ID: "1", Color: "blue", Quantity: 2, Name: "Shirt"})
	cart.AddProduct(NewCartProduct("1", "blue", 5, "Shirt", nil))

	products := cart.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 7, products[0].Quantity())
	assert.Equal(t, 7, cart.TotalQuantity())
}

func TestAddProduct_NeverDuplicatesKeys(t *testing.T) {
	cart := NewCart()
	sequence := []struct {
		id, color string
		qty       int
	}{
		{"1", "blue", 1}, {"2", "blue", 2}, {"1", "blue", 3},
		{"1", "red", 1}, {"2", "blue", 1}, {"1", "red", 4},
	}
	for _, s := range sequence {
		cart.AddProduct(NewCartProduct(s.id, s.color, s.qty, "", nil))
	}

	seen := map[Key]bool{}
	sum := 0
	for _, p := range cart.Products() {
		assert.False(t, seen[p.Key()], "duplicate key %v", p.Key())
		seen[p.Key()] = true
		sum += p.Quantity()
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, 12, sum)
	assert.Equal(t, sum, cart.TotalQuantity())
}

func TestSearchProduct(t *testing.T) {
	cart := NewCart(
		LineItem{ID: "1", Color: "blue", Quantity: 2},
		LineItem{ID: "2", Color: "red", Quantity: 1},
	)

	idx, ok := cart.SearchProduct(NewCartProduct("2", "red", 0, "", nil))
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = cart.SearchProduct(NewCartProduct("2", "blue", 0, "", nil))
	assert.False(t, ok)
}

func TestDeleteProduct(t *testing.T) {
	cart := NewCart(
		LineItem{ID: "1", Color: "blue", Quantity: 2},
		LineItem{ID: "2", Color: "red", Quantity: 1},
	)

	ok := cart.DeleteProduct(NewCartProduct("1", "blue", 0, "", nil))
	require.True(t, ok)
	products := cart.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "2", products[0].ID())
	assert.Equal(t, 1, cart.TotalQuantity())
}

func TestDeleteProduct_NotFound(t *testing.T) {
	cart := NewCart(LineItem{ID: "1", Color: "blue", Quantity: 2})

	ok := cart.DeleteProduct(NewCartProduct("1", "green", 0, "", nil))
	assert.False(t, ok)
	assert.Equal(t, 1, cart.Len())
	assert.Equal(t, 2, cart.TotalQuantity())
}

func TestUpdateProductQuantity_SetsAbsoluteValue(t *testing.T) {
	cart := NewCart(LineItem{ID: "1", Color: "blue", Quantity: 2})
	cart.SetProducts([]*CartProduct{NewCartProduct("1", "blue", 2, "Shirt", resolved("1", 4.5))})

	ok := cart.UpdateProductQuantity(NewCartProduct("1", "blue", 0, "", nil), 10)
	require.True(t, ok)
	assert.Equal(t, 10, cart.Products()[0].Quantity())
	assert.Equal(t, 10, cart.TotalQuantity())

	price, known := cart.TotalPrice()
	require.True(t, known)
	assert.Equal(t, 45.0, price)
}

func TestUpdateProductQuantity_ZeroCollapsesToDelete(t *testing.T) {
	items := []LineItem{
		{ID: "1", Color: "blue", Quantity: 2},
		{ID: "2", Color: "red", Quantity: 1},
	}
	updated := NewCart(items...)
	deleted := NewCart(items...)

	assert.True(t, updated.UpdateProductQuantity(NewCartProduct("1", "blue", 0, "", nil), 0))
	assert.True(t, deleted.DeleteProduct(NewCartProduct("1", "blue", 0, "", nil)))

	assert.Equal(t, deleted.Products(), updated.Products())
	assert.Equal(t, deleted.TotalQuantity(), updated.TotalQuantity())
}

func TestUpdateProductQuantity_NotFound(t *testing.T) {
	cart := NewCart(LineItem{ID: "1", Color: "blue", Quantity: 2})

	assert.False(t, cart.UpdateProductQuantity(NewCartProduct("3", "blue", 0, "", nil), 4))
	assert.False(t, cart.UpdateProductQuantity(NewCartProduct("3", "blue", 0, "", nil), -1))
	assert.Equal(t, 2, cart.TotalQuantity())
}

func TestUpdateTotalPrice_UnknownWhileUnresolved(t *testing.T) {
	cart := NewCart()
	cart.AddProduct(NewCartProduct("1", "blue", 2, "Shirt", resolved("1", 10)))
	cart.AddProduct(NewCartProduct("2", "blue", 1, "Hat", nil))

	_, ok := cart.TotalPrice()
	assert.False(t, ok)

	cart.DeleteProduct(NewCartProduct("2", "blue", 0, "", nil))
	price, ok := cart.TotalPrice()
	require.True(t, ok)
	assert.Equal(t, 20.0, price)
}

func TestProducts_ReturnsSnapshot(t *testing.T) {
	cart := NewCart(LineItem{ID: "1", Color: "blue", Quantity: 2})

	products := cart.Products()
	products[0].SetQuantity(50)

	assert.Equal(t, 2, cart.Products()[0].Quantity())
	assert.Equal(t, 2, cart.TotalQuantity())
}

func TestAddProduct_DoesNotAliasCallerEntry(t *testing.T) {
	cart := NewCart()
	first := NewCartProduct("1", "blue", 2, "Shirt", nil)
	cart.AddProduct(first)

	first.SetQuantity(40)
	assert.Equal(t, 2, cart.Products()[0].Quantity())

	cart.AddProduct(NewCartProduct("1", "blue", 3, "Shirt", nil))
	assert.Equal(t, 40, first.Quantity())
	assert.Equal(t, 5, cart.TotalQuantity())
}

func TestSetProducts_DoesNotMutateCallerEntries(t *testing.T) {
	a := NewCartProduct("1", "blue", 2, "Shirt", nil)
	b := NewCartProduct("1", "blue", 3, "Shirt", nil)
	cart := NewCart()
	cart.SetProducts([]*CartProduct{a, b})

	assert.Equal(t, 2, a.Quantity())
	assert.Equal(t, 3, b.Quantity())
	assert.Equal(t, 5, cart.TotalQuantity())

	a.SetQuantity(99)
	assert.Equal(t, 5, cart.Products()[0].Quantity())
}

func TestNewOrder(t *testing.T) {
	contact := Contact{FirstName: "Ada", LastName: "Lovelace", Address: "1 rue", City: "Paris", Email: "ada@example.com"}

	_, err := NewOrder(contact, NewCart())
	assert.ErrorIs(t, err, ErrEmptyCart)

	order, err := NewOrder(contact, NewCart(
		LineItem{ID: "1", Color: "blue", Quantity: 2},
		LineItem{ID: "1", Color: "red", Quantity: 1},
		LineItem{ID: "2", Color: "red", Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "1", "2"}, order.Products)
	assert.Equal(t, contact, order.Contact)
}

func TestProduct_HasColor(t *testing.T) {
	p := resolved("1", 10)
	assert.True(t, p.HasColor("red"))
	assert.False(t, p.HasColor("Red"))
}
