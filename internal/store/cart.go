package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/abgdnv/storefront/internal/catalog"
)

// CartMutation is the closed set of changes to the cart.
type CartMutation interface {
	isCartMutation()
}

// CartItemAdded adds one unit of a product, up to catalog.MaxQuantity.
type CartItemAdded struct {
	Product catalog.Product
}

// CartItemRemoved drops the whole line of a product.
type CartItemRemoved struct {
	ProductID catalog.ID
}

// CartItemSubtracted takes one unit away, dropping the line at zero.
type CartItemSubtracted struct {
	ProductID catalog.ID
}

func (CartItemAdded) isCartMutation()      {}
func (CartItemRemoved) isCartMutation()    {}
func (CartItemSubtracted) isCartMutation() {}

// CartState is a point-in-time view of the cart.
type CartState struct {
	Lines   []catalog.CartLine `json:"lines"`
	Version uint64             `json:"version"`
}

// TotalQuantity sums the quantities of all lines.
func (s CartState) TotalQuantity() int {
	total := 0
	for _, l := range s.Lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice sums the subtotals of all lines.
func (s CartState) TotalPrice() int64 {
	var total int64
	for _, l := range s.Lines {
		total += l.Subtotal()
	}
	return total
}

// Cart owns the cart lines. It copies name and price when a product is added
// and keeps no reference to the product store.
type Cart struct {
	mu    sync.RWMutex
	state CartState
}

func NewCart() *Cart {
	return &Cart{state: CartState{Lines: []catalog.CartLine{}}}
}

// Commit applies m and returns the new version.
func (c *Cart) Commit(m CartMutation) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := reduceCart(c.state, m)
	next.Version = c.state.Version + 1
	c.state = next
	return next.Version
}

func reduceCart(st CartState, m CartMutation) CartState {
	switch m := m.(type) {
	case CartItemAdded:
		st.Lines = addLine(st.Lines, m.Product)
	case CartItemRemoved:
		st.Lines = slices.DeleteFunc(slices.Clone(st.Lines), func(l catalog.CartLine) bool {
			return l.ProductID == m.ProductID
		})
	case CartItemSubtracted:
		st.Lines = subtractLine(st.Lines, m.ProductID)
	default:
		panic(fmt.Sprintf("store: unknown cart mutation %T", m))
	}
	return st
}

func addLine(lines []catalog.CartLine, p catalog.Product) []catalog.CartLine {
	next := slices.Clone(lines)
	for i := range next {
		if next[i].ProductID != p.ID {
			continue
		}
		if next[i].Quantity < catalog.MaxQuantity {
			next[i].Quantity++
		}
		return next
	}
	return append(next, catalog.NewCartLine(p))
}

func subtractLine(lines []catalog.CartLine, id catalog.ID) []catalog.CartLine {
	next := make([]catalog.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == id {
			l.Quantity--
			if l.Quantity <= 0 {
				continue
			}
		}
		next = append(next, l)
	}
	return next
}

// Add puts one unit of p in the cart. A line already at the cap is left unchanged.
func (c *Cart) Add(p catalog.Product) {
	c.Commit(CartItemAdded{Product: p})
}

// Remove drops the line for id regardless of its quantity.
func (c *Cart) Remove(id catalog.ID) {
	c.Commit(CartItemRemoved{ProductID: id})
}

// Subtract takes one unit of id away.
func (c *Cart) Subtract(id catalog.ID) {
	c.Commit(CartItemSubtracted{ProductID: id})
}

// Snapshot returns a copy of the current state.
func (c *Cart) Snapshot() CartState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := c.state
	snap.Lines = slices.Clone(c.state.Lines)
	return snap
}

func (c *Cart) Lines() []catalog.CartLine {
	return c.Snapshot().Lines
}

// Line returns the line for id.
func (c *Cart) Line(id catalog.ID) (catalog.CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, l := range c.state.Lines {
		if l.ProductID == id {
			return l, true
		}
	}
	return catalog.CartLine{}, false
}

func (c *Cart) TotalQuantity() int {
	return c.Snapshot().TotalQuantity()
}

func (c *Cart) TotalPrice() int64 {
	return c.Snapshot().TotalPrice()
}

func (c *Cart) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Version
}
