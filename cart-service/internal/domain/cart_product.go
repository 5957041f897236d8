package domain

// Key is the composite identity of a cart line item.
type Key struct {
	ID    string
	Color string
}

// CartProduct is one cart line item. ID and color are fixed at construction;
// quantity, name and the resolved product may change.
type CartProduct struct {
	id       string
	color    string
	quantity int
	name     string
	product  *Product
}

// NewCartProduct stores the given fields as-is. No validation is performed.
func NewCartProduct(id, color string, quantity int, name string, product *Product) *CartProduct {
	return &CartProduct{
		id:       id,
		color:    color,
		quantity: quantity,
		name:     name,
		product:  product,
	}
}

func (p *CartProduct) ID() string        { return p.id }
func (p *CartProduct) Color() string     { return p.color }
func (p *CartProduct) Quantity() int     { return p.quantity }
func (p *CartProduct) Name() string      { return p.name }
func (p *CartProduct) Product() *Product { return p.product }

func (p *CartProduct) Key() Key {
	return Key{ID: p.id, Color: p.color}
}

func (p *CartProduct) SetQuantity(quantity int) {
	p.quantity = quantity
}

func (p *CartProduct) SetName(name string) {
	p.name = name
}

func (p *CartProduct) SetProduct(product *Product) {
	p.product = product
}

// AddToQuantity increments the quantity by delta. The result is not clamped.
func (p *CartProduct) AddToQuantity(delta int) {
	p.quantity += delta
}

// Compare reports whether other designates the same line item.
// Quantity, name and product are ignored.
func (p *CartProduct) Compare(other *CartProduct) bool {
	if other == nil {
		return false
	}
	return p.id == other.id && p.color == other.color
}
