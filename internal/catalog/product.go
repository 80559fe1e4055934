// Package catalog holds the data model shared by the client, the stores and the product API.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies a product. Servers assign either strings or integers; both decode into ID.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Product is the persisted business entity. The zero value is the empty form template.
type Product struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

// Draft is the request body sent on create and update. The id travels in the path.
type Draft struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
}

// EmptyForm returns the template the form buffer is reset to.
func EmptyForm() Product {
	return Product{}
}

// Draft strips the identity from p.
func (p Product) Draft() Draft {
	return Draft{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
	}
}

// WithID returns a copy of the draft carrying id.
func (d Draft) WithID(id ID) Product {
	return Product{
		ID:          id,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
	}
}

// ErrorDetail is one entry of an API error envelope.
// Validation failures carry Title, lookups carry Error.
type ErrorDetail struct {
	Title  string `json:"title,omitempty"`
	Error  string `json:"error,omitempty"`
	Status int    `json:"status"`
}

// Message returns whichever of Title or Error is set.
func (d ErrorDetail) Message() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Error
}

// ErrorEnvelope is the body of every non-2xx API response.
type ErrorEnvelope struct {
	Errors []ErrorDetail `json:"errors"`
}
