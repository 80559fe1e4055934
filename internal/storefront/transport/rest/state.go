package rest

import "github.com/abgdnv/storefront/internal/catalog"

// StateView is what the intent API returns after every call.
type StateView struct {
	Products        []catalog.Product     `json:"products"`
	Form            catalog.Product       `json:"form"`
	Errors          []catalog.ErrorDetail `json:"errors"`
	ProductsVersion uint64                `json:"productsVersion"`
	Cart            CartView              `json:"cart"`
}

type CartView struct {
	Lines         []catalog.CartLine `json:"lines"`
	TotalQuantity int                `json:"totalQuantity"`
	TotalPrice    int64              `json:"totalPrice"`
	Version       uint64             `json:"version"`
}

func (h *Handler) snapshot() StateView {
	products := h.products.Snapshot()
	cart := h.cart.Snapshot()

	view := StateView{
		Products:        products.Products,
		Form:            products.Form,
		Errors:          products.Errors,
		ProductsVersion: products.Version,
		Cart: CartView{
			Lines:         cart.Lines,
			TotalQuantity: cart.TotalQuantity(),
			TotalPrice:    cart.TotalPrice(),
			Version:       cart.Version,
		},
	}
	if view.Products == nil {
		view.Products = []catalog.Product{}
	}
	if view.Errors == nil {
		view.Errors = []catalog.ErrorDetail{}
	}
	if view.Cart.Lines == nil {
		view.Cart.Lines = []catalog.CartLine{}
	}
	return view
}
