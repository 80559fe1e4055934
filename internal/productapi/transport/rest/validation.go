package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/go-playground/validator/v10"
)

// productBody is the raw body of POST and PUT. Fields are decoded one by one
// so a value of the wrong JSON type is reported against its own field.
type productBody struct {
	Name        json.RawMessage `json:"name"`
	Description json.RawMessage `json:"description"`
	Price       json.RawMessage `json:"price"`
}

// fieldOrder is the order in which field errors are reported.
var fieldOrder = []string{"id", "name", "description", "price"}

var jsonNull = []byte("null")

// request converts the raw fields. Numeric strings are accepted for price.
// typeErrs maps each field that could not be converted to its error title.
func (b productBody) request() (req productRequest, typeErrs map[string]string) {
	typeErrs = make(map[string]string)
	var ok bool
	if req.Name, ok = stringField(b.Name); !ok {
		typeErrs["name"] = fmt.Sprintf("%q must be a string", "name")
	}
	if req.Description, ok = stringField(b.Description); !ok {
		typeErrs["description"] = fmt.Sprintf("%q must be a string", "description")
	}
	if req.Price, ok = numberField(b.Price); !ok {
		typeErrs["price"] = fmt.Sprintf("%q must be a number", "price")
	}
	return req, typeErrs
}

// stringField returns nil for an absent field and false for a non-string value.
func stringField(raw json.RawMessage) (*string, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	var s string
	if bytes.Equal(raw, jsonNull) || json.Unmarshal(raw, &s) != nil {
		return nil, false
	}
	return &s, true
}

// numberField accepts a JSON number or a string holding a finite number.
func numberField(raw json.RawMessage) (*float64, bool) {
	if len(raw) == 0 {
		return nil, true
	}
	if bytes.Equal(raw, jsonNull) {
		return nil, false
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return &f, true
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return nil, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}

// productRequest is the converted body of POST and PUT. Pointers tell a missing field from a zero one.
type productRequest struct {
	Name        *string  `json:"name" validate:"required,nonempty,min=3,max=32"`
	Description *string  `json:"description" validate:"omitempty,max=128"`
	Price       *float64 `json:"price" validate:"required,integer,gt=0"`
}

// updateRequest validates the path id ahead of the body fields.
type updateRequest struct {
	ID string `json:"id" validate:"required,uuid"`
	productRequest
}

func (p productRequest) draft() catalog.Draft {
	d := catalog.Draft{Name: *p.Name, Price: int64(*p.Price)}
	if p.Description != nil {
		d.Description = *p.Description
	}
	return d
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "nonempty", func(fl validator.FieldLevel) bool {
		return fl.Field().Len() > 0
	})
	mustRegister(v, "integer", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return f == math.Trunc(f)
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %q validation: %v", tag, err))
	}
}

// validateProduct checks req and returns one error entry per failed field in
// field order, or nil. A field with a type error is reported only by that error.
func validateProduct(v *validator.Validate, req any, typeErrs map[string]string) []catalog.ErrorDetail {
	byField := make(map[string][]string, len(typeErrs))
	for field, t := range typeErrs {
		byField[field] = []string{t}
	}
	if err := v.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return []catalog.ErrorDetail{{Title: invalidBody, Status: http.StatusBadRequest}}
		}
		for _, fieldErr := range validationErrors {
			if _, typed := typeErrs[fieldErr.Field()]; typed {
				continue
			}
			byField[fieldErr.Field()] = append(byField[fieldErr.Field()], title(fieldErr))
		}
	}
	var details []catalog.ErrorDetail
	for _, field := range fieldOrder {
		for _, t := range byField[field] {
			details = append(details, catalog.ErrorDetail{Title: t, Status: http.StatusBadRequest})
		}
	}
	return details
}

// title renders a field error the way the product API has always worded it.
func title(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "nonempty":
		return fmt.Sprintf("%q is not allowed to be empty", field)
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%q must be a positive number", field)
	case "integer":
		return fmt.Sprintf("%q must be an integer", field)
	case "uuid":
		return fmt.Sprintf("%q must be a valid GUID", field)
	default:
		return fmt.Sprintf("%q failed on rule: %s", field, fe.Tag())
	}
}
