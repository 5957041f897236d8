package domain

// Product is a read-only snapshot of one catalog entry.
// The JSON tags follow the Kanap catalog API.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	AltTxt      string   `json:"altTxt"`
	Colors      []string `json:"colors"`
}

func (p *Product) HasColor(color string) bool {
	for _, c := range p.Colors {
		if c == color {
			return true
		}
	}
	return false
}
