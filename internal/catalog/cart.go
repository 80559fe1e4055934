package catalog

// MaxQuantity is the ceiling of a single cart line.
const MaxQuantity = 10

// CartLine is the quantity of one product in the cart. Name and price are captured when the product is added.
type CartLine struct {
	ProductID ID     `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// NewCartLine starts a line for p with quantity 1.
func NewCartLine(p Product) CartLine {
	return CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	}
}

func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}
