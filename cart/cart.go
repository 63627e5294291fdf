package cart

import (
	"encoding/gob"
	"sort"

	"github.com/gin-contrib/sessions"
	"github.com/shopspring/decimal"

	"github.com/beautynest/ecommerce-api/models"
)

const sessionKey = "cart"

// Line is one product's entry in the session cart. UnitPrice is the product
// price frozen at the moment the line was first added, kept as a string so
// the line serializes cleanly into the session store.
type Line struct {
	ProductID   uint
	ProductName string
	Quantity    int
	UnitPrice   string
}

func init() {
	gob.Register(map[uint]Line{})
}

// Cart is a per-request value backed by the session store. Handlers load it
// with FromSession, mutate it, and write it back with Save; it is never
// shared between requests in process.
type Cart struct {
	lines map[uint]Line
}

func New() *Cart {
	return &Cart{lines: make(map[uint]Line)}
}

// FromSession rebuilds the cart from the session, or returns an empty cart
// when the session has none (or holds something unreadable).
func FromSession(s sessions.Session) *Cart {
	lines, ok := s.Get(sessionKey).(map[uint]Line)
	if !ok {
		return New()
	}
	c := New()
	for id, ln := range lines {
		c.lines[id] = ln
	}
	return c
}

// Save writes the cart back into the session and persists it.
func (c *Cart) Save(s sessions.Session) error {
	s.Set(sessionKey, c.lines)
	return s.Save()
}

// Add inserts a line for the product with quantity 1, snapshotting its
// current price, or bumps the quantity when a line already exists. Repeat
// adds never touch the stored price.
func (c *Cart) Add(p models.Product) {
	if ln, ok := c.lines[p.ID]; ok {
		ln.Quantity++
		c.lines[p.ID] = ln
		return
	}
	c.lines[p.ID] = Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    1,
		UnitPrice:   p.Price.String(),
	}
}

// Remove drops the product's line entirely. Removing an absent product is a
// no-op.
func (c *Cart) Remove(productID uint) {
	delete(c.lines, productID)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = make(map[uint]Line)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns the cart contents ordered by product id.
func (c *Cart) Lines() []Line {
	out := make([]Line, 0, len(c.lines))
	for _, ln := range c.lines {
		out = append(out, ln)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// TotalPrice sums unit_price*quantity over all lines using the snapshot
// prices. Lines whose stored price no longer parses are skipped rather than
// failing the whole cart.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, ln := range c.lines {
		price, err := decimal.NewFromString(ln.UnitPrice)
		if err != nil {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
	}
	return total
}
