package domain

import "errors"

var ErrEmptyCart = errors.New("cart is empty, nothing to order")

// Contact is the buyer information the order endpoint expects.
type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Email     string `json:"email"`
}

// Order is the payload submitted to the catalog service: the contact and
// one product id per cart line.
type Order struct {
	Contact  Contact  `json:"contact"`
	Products []string `json:"products"`
}

// NewOrder builds an order from the cart content.
func NewOrder(contact Contact, cart *Cart) (*Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	ids := make([]string, 0, cart.Len())
	for _, p := range cart.products {
		ids = append(ids, p.ID())
	}
	return &Order{Contact: contact, Products: ids}, nil
}

// OrderConfirmation is what the catalog service answers to a submitted order.
type OrderConfirmation struct {
	OrderID  string     `json:"orderId"`
	Contact  Contact    `json:"contact"`
	Products []*Product `json:"products"`
}
