package actions

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront/internal/catalog"
)

// Intent is the closed set of requests a user can make of the storefront.
type Intent interface {
	isIntent()
}

type FetchProducts struct{}

type FetchProduct struct {
	ID catalog.ID
}

// SaveProduct saves Product, or the form buffer as it stands when the intent
// runs if FromForm is set. Applied, it returns *RejectedError for a draft the
// API refused.
type SaveProduct struct {
	Product  catalog.Product
	FromForm bool
}

type DeleteProduct struct {
	ID catalog.ID
}

type EditProduct struct {
	Product catalog.Product
}

type ResetForm struct{}

type AddToCart struct {
	Product catalog.Product
}

type RemoveFromCart struct {
	ProductID catalog.ID
}

type SubtractFromCart struct {
	ProductID catalog.ID
}

func (FetchProducts) isIntent()    {}
func (FetchProduct) isIntent()     {}
func (SaveProduct) isIntent()      {}
func (DeleteProduct) isIntent()    {}
func (EditProduct) isIntent()      {}
func (ResetForm) isIntent()        {}
func (AddToCart) isIntent()        {}
func (RemoveFromCart) isIntent()   {}
func (SubtractFromCart) isIntent() {}

// Apply runs the action matching in.
func (a *Actions) Apply(ctx context.Context, in Intent) error {
	switch in := in.(type) {
	case FetchProducts:
		return a.FetchAll(ctx)
	case FetchProduct:
		return a.Fetch(ctx, in.ID)
	case SaveProduct:
		p := in.Product
		if in.FromForm {
			p = a.products.Form()
		}
		return a.save(ctx, p)
	case DeleteProduct:
		return a.Remove(ctx, in.ID)
	case EditProduct:
		a.Edit(in.Product)
	case ResetForm:
		a.ResetForm()
	case AddToCart:
		a.AddToCart(in.Product)
	case RemoveFromCart:
		a.RemoveFromCart(in.ProductID)
	case SubtractFromCart:
		a.SubtractFromCart(in.ProductID)
	default:
		panic(fmt.Sprintf("actions: unknown intent %T", in))
	}
	return nil
}
