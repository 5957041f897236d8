package domain

// LineItem is the raw, untyped shape of a cart entry as it comes from
// persisted data or a request body.
type LineItem struct {
	ID       string
	Color    string
	Quantity int
	Name     string
}

// Cart is an ordered collection of line items with derived totals.
// No two entries share the same (id, color) key, and totals are current
// after every public mutation returns.
type Cart struct {
	products      []*CartProduct
	totalPrice    float64
	priceKnown    bool
	totalQuantity int
}

// NewCart builds a cart from raw items. Entries repeating a key already seen
// are merged into the first one by summing quantities.
func NewCart(items ...LineItem) *Cart {
	products := make([]*CartProduct, 0, len(items))
	for _, it := range items {
		products = append(products, NewCartProduct(it.ID, it.Color, it.Quantity, it.Name, nil))
	}

	c := &Cart{}
	c.SetProducts(products)
	return c
}

// Products returns a snapshot of the line items in insertion order.
// Mutations must go through the cart methods.
func (c *Cart) Products() []CartProduct {
	out := make([]CartProduct, len(c.products))
	for i, p := range c.products {
		out[i] = *p
	}
	return out
}

// SetProducts replaces the backing collection with copies of products and
// recomputes totals.
func (c *Cart) SetProducts(products []*CartProduct) {
	c.products = mergeDuplicates(products)
	c.UpdateTotals()
}

func (c *Cart) Len() int {
	return len(c.products)
}

func (c *Cart) IsEmpty() bool {
	return len(c.products) == 0
}

// AddProduct merges p into an existing entry with the same key, or appends a
// copy of it. The cart never keeps the caller's pointer.
func (c *Cart) AddProduct(p *CartProduct) {
	if idx, ok := c.SearchProduct(p); ok {
		c.products[idx].AddToQuantity(p.Quantity())
	} else {
		cp := *p
		c.products = append(c.products, &cp)
	}
	c.UpdateTotals()
}

// SearchProduct returns the index of the first entry comparing equal to p.
func (c *Cart) SearchProduct(p *CartProduct) (int, bool) {
	return findIndex(c.products, p)
}

// DeleteProduct removes the entry matching p and reports whether one existed.
func (c *Cart) DeleteProduct(p *CartProduct) bool {
	idx, ok := c.SearchProduct(p)
	if !ok {
		return false
	}
	c.products = removeIndex(c.products, idx)
	c.UpdateTotals()
	return true
}

// UpdateProductQuantity sets the quantity of the entry matching p.
// A quantity of zero or less removes the entry.
func (c *Cart) UpdateProductQuantity(p *CartProduct, quantity int) bool {
	if quantity <= 0 {
		return c.DeleteProduct(p)
	}
	idx, ok := c.SearchProduct(p)
	if !ok {
		return false
	}
	c.products[idx].SetQuantity(quantity)
	c.UpdateTotals()
	return true
}

// UpdateTotalPrice sums quantity * price over all entries. The price stays
// unknown while any entry has no resolved product.
func (c *Cart) UpdateTotalPrice() {
	var total float64
	for _, p := range c.products {
		if p.Product() == nil {
			c.totalPrice = 0
			c.priceKnown = false
			return
		}
		total += float64(p.Quantity()) * p.Product().Price
	}
	c.totalPrice = total
	c.priceKnown = true
}

func (c *Cart) UpdateTotalQuantity() {
	total := 0
	for _, p := range c.products {
		total += p.Quantity()
	}
	c.totalQuantity = total
}

func (c *Cart) UpdateTotals() {
	c.UpdateTotalPrice()
	c.UpdateTotalQuantity()
}

// TotalPrice returns the cart price and false when it cannot be computed yet.
func (c *Cart) TotalPrice() (float64, bool) {
	return c.totalPrice, c.priceKnown
}

func (c *Cart) TotalQuantity() int {
	return c.totalQuantity
}

// ----------------------------
// Helpers
// ----------------------------

func findIndex(products []*CartProduct, p *CartProduct) (int, bool) {
	for i := range products {
		if products[i].Compare(p) {
			return i, true
		}
	}
	return -1, false
}

func removeIndex(products []*CartProduct, idx int) []*CartProduct {
	out := make([]*CartProduct, 0, len(products)-1)
	out = append(out, products[:idx]...)
	return append(out, products[idx+1:]...)
}

func mergeDuplicates(products []*CartProduct) []*CartProduct {
	out := make([]*CartProduct, 0, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		if idx, ok := findIndex(out, p); ok {
			out[idx].AddToQuantity(p.Quantity())
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out
}
