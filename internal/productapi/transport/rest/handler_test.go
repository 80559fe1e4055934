package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/productapi/store"
	"github.com/abgdnv/storefront/pkg/config"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unknownID = "6f1c1c2e-8f5b-4a53-9d3e-2f3c1f0b9a11"

func newTestServer(t *testing.T, s store.ProductStore, envelope string) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(s, envelope, slog.New(slog.NewTextHandler(io.Discard, nil))).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func seed(t *testing.T, s store.ProductStore) catalog.Product {
	t.Helper()
	p, err := s.Create(context.Background(), catalog.Draft{Name: "Lamp", Description: "Desk lamp", Price: 25})
	require.NoError(t, err)
	return *p
}

func do(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func titles(t *testing.T, body string) []string {
	t.Helper()
	var env catalog.ErrorEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	out := make([]string, 0, len(env.Errors))
	for _, d := range env.Errors {
		assert.Equal(t, http.StatusBadRequest, d.Status)
		out = append(out, d.Title)
	}
	return out
}

func Test_ProductAPI_FindAll(t *testing.T) {
	testCases := []struct {
		name         string
		envelope     string
		expectedBody func(p catalog.Product) string
	}{
		{
			name:     "data envelope",
			envelope: config.EnvelopeData,
			expectedBody: func(p catalog.Product) string {
				return `{"data":[{"id":"` + string(p.ID) + `","name":"Lamp","description":"Desk lamp","price":25}]}`
			},
		},
		{
			name:     "bare payload",
			envelope: config.EnvelopeBare,
			expectedBody: func(p catalog.Product) string {
				return `[{"id":"` + string(p.ID) + `","name":"Lamp","description":"Desk lamp","price":25}]`
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := store.NewInMemoryStore()
			p := seed(t, s)
			srv := newTestServer(t, s, tc.envelope)

			// when
			status, body := do(t, http.MethodGet, srv.URL+"/products", "")

			// then
			assert.Equal(t, http.StatusOK, status)
			assert.JSONEq(t, tc.expectedBody(p), body)
		})
	}
}

func Test_ProductAPI_FindAll_EmptyStoreReturnsEmptyList(t *testing.T) {
	// given
	srv := newTestServer(t, store.NewInMemoryStore(), config.EnvelopeData)

	// when
	status, body := do(t, http.MethodGet, srv.URL+"/products", "")

	// then
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"data":[]}`, body)
}

func Test_ProductAPI_FindByID(t *testing.T) {
	// given
	s := store.NewInMemoryStore()
	p := seed(t, s)
	srv := newTestServer(t, s, config.EnvelopeData)

	testCases := []struct {
		name         string
		id           string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "found",
			id:           string(p.ID),
			expectedCode: http.StatusOK,
			expectedBody: `{"data":{"id":"` + string(p.ID) + `","name":"Lamp","description":"Desk lamp","price":25}}`,
		},
		{
			name:         "not found",
			id:           unknownID,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"errors":[{"error":"Product not found","status":404}]}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			status, body := do(t, http.MethodGet, srv.URL+"/products/"+tc.id, "")

			// then
			assert.Equal(t, tc.expectedCode, status)
			assert.JSONEq(t, tc.expectedBody, body)
		})
	}
}

func Test_ProductAPI_Create(t *testing.T) {
	// given
	s := store.NewInMemoryStore()
	srv := newTestServer(t, s, config.EnvelopeData)

	// when
	status, body := do(t, http.MethodPost, srv.URL+"/products", `{"name":"Chair","description":"Oak","price":40}`)

	// then
	assert.Equal(t, http.StatusCreated, status)
	var env struct {
		Data catalog.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	assert.NotEmpty(t, env.Data.ID)
	assert.Equal(t, "Chair", env.Data.Name)
	assert.Equal(t, int64(40), env.Data.Price)

	stored, err := s.FindByID(context.Background(), env.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, env.Data, *stored)
}

func Test_ProductAPI_Create_DescriptionIsOptional(t *testing.T) {
	// given
	srv := newTestServer(t, store.NewInMemoryStore(), config.EnvelopeBare)

	// when
	status, body := do(t, http.MethodPost, srv.URL+"/products", `{"name":"Chair","price":40}`)

	// then
	assert.Equal(t, http.StatusCreated, status)
	var p catalog.Product
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Empty(t, p.Description)
}

func Test_ProductAPI_Create_ConvertsNumericStringPrice(t *testing.T) {
	// given
	srv := newTestServer(t, store.NewInMemoryStore(), config.EnvelopeBare)

	// when
	status, body := do(t, http.MethodPost, srv.URL+"/products", `{"name":"Widget","price":"10"}`)

	// then
	assert.Equal(t, http.StatusCreated, status)
	var p catalog.Product
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, int64(10), p.Price)
}

func Test_ProductAPI_Create_Validation(t *testing.T) {
	testCases := []struct {
		name           string
		body           string
		expectedTitles []string
	}{
		{
			name:           "empty body object",
			body:           `{}`,
			expectedTitles: []string{`"name" is required`, `"price" is required`},
		},
		{
			name:           "empty name",
			body:           `{"name":"","price":10}`,
			expectedTitles: []string{`"name" is not allowed to be empty`},
		},
		{
			name:           "short name",
			body:           `{"name":"ab","price":10}`,
			expectedTitles: []string{`"name" length must be at least 3 characters long`},
		},
		{
			name:           "long name",
			body:           `{"name":"` + strings.Repeat("n", 33) + `","price":10}`,
			expectedTitles: []string{`"name" length must be less than or equal to 32 characters long`},
		},
		{
			name:           "long description",
			body:           `{"name":"Chair","description":"` + strings.Repeat("d", 129) + `","price":10}`,
			expectedTitles: []string{`"description" length must be less than or equal to 128 characters long`},
		},
		{
			name:           "zero price",
			body:           `{"name":"Chair","price":0}`,
			expectedTitles: []string{`"price" must be a positive number`},
		},
		{
			name:           "fractional price",
			body:           `{"name":"Chair","price":1.5}`,
			expectedTitles: []string{`"price" must be an integer`},
		},
		{
			name: "every field wrong is reported in field order",
			body: `{"name":"ab","description":"` + strings.Repeat("d", 129) + `","price":-3}`,
			expectedTitles: []string{
				`"name" length must be at least 3 characters long`,
				`"description" length must be less than or equal to 128 characters long`,
				`"price" must be a positive number`,
			},
		},
		{
			name:           "malformed json",
			body:           `{"name":`,
			expectedTitles: []string{invalidBody},
		},
		{
			name:           "body is not an object",
			body:           `[{"name":"Chair","price":10}]`,
			expectedTitles: []string{invalidBody},
		},
		{
			name:           "price of the wrong type",
			body:           `{"name":"Chair","price":"cheap"}`,
			expectedTitles: []string{`"price" must be a number`},
		},
		{
			name:           "type error reported next to rule errors",
			body:           `{"name":"W","price":"abc"}`,
			expectedTitles: []string{`"name" length must be at least 3 characters long`, `"price" must be a number`},
		},
		{
			name:           "name of the wrong type",
			body:           `{"name":123,"price":10}`,
			expectedTitles: []string{`"name" must be a string`},
		},
		{
			name: "every field of the wrong type",
			body: `{"name":null,"description":7,"price":true}`,
			expectedTitles: []string{
				`"name" must be a string`,
				`"description" must be a string`,
				`"price" must be a number`,
			},
		},
		{
			name:           "numeric string price still checked as integer",
			body:           `{"name":"Chair","price":"1.5"}`,
			expectedTitles: []string{`"price" must be an integer`},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := store.NewInMemoryStore()
			srv := newTestServer(t, s, config.EnvelopeData)

			// when
			status, body := do(t, http.MethodPost, srv.URL+"/products", tc.body)

			// then
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tc.expectedTitles, titles(t, body))
			all, err := s.FindAll(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func Test_ProductAPI_Update(t *testing.T) {
	testCases := []struct {
		name           string
		id             func(p catalog.Product) string
		body           string
		expectedCode   int
		expectedTitles []string
		expectedBody   string
	}{
		{
			name:         "replaces the product",
			id:           func(p catalog.Product) string { return string(p.ID) },
			body:         `{"name":"Floor lamp","description":"Tall","price":80}`,
			expectedCode: http.StatusCreated,
		},
		{
			name:         "unknown id",
			id:           func(catalog.Product) string { return unknownID },
			body:         `{"name":"Floor lamp","price":80}`,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"errors":[{"error":"Product not found","status":404}]}`,
		},
		{
			name:           "id is not a guid",
			id:             func(catalog.Product) string { return "42" },
			body:           `{"name":"Floor lamp","price":80}`,
			expectedCode:   http.StatusBadRequest,
			expectedTitles: []string{`"id" must be a valid GUID`},
		},
		{
			name:           "id is checked before body fields",
			id:             func(catalog.Product) string { return "42" },
			body:           `{"name":"ab"}`,
			expectedCode:   http.StatusBadRequest,
			expectedTitles: []string{`"id" must be a valid GUID`, `"name" length must be at least 3 characters long`, `"price" is required`},
		},
		{
			name:           "type errors keep field order after the id",
			id:             func(catalog.Product) string { return "42" },
			body:           `{"name":["Floor lamp"],"price":"80"}`,
			expectedCode:   http.StatusBadRequest,
			expectedTitles: []string{`"id" must be a valid GUID`, `"name" must be a string`},
		},
		{
			name:         "numeric string price",
			id:           func(p catalog.Product) string { return string(p.ID) },
			body:         `{"name":"Floor lamp","description":"Tall","price":"80"}`,
			expectedCode: http.StatusCreated,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := store.NewInMemoryStore()
			p := seed(t, s)
			srv := newTestServer(t, s, config.EnvelopeData)

			// when
			status, body := do(t, http.MethodPut, srv.URL+"/products/"+tc.id(p), tc.body)

			// then
			assert.Equal(t, tc.expectedCode, status)
			switch {
			case tc.expectedTitles != nil:
				assert.Equal(t, tc.expectedTitles, titles(t, body))
			case tc.expectedBody != "":
				assert.JSONEq(t, tc.expectedBody, body)
			default:
				assert.JSONEq(t, `{"data":{"id":"`+string(p.ID)+`","name":"Floor lamp","description":"Tall","price":80}}`, body)
			}
		})
	}
}

func Test_ProductAPI_DeleteByID(t *testing.T) {
	testCases := []struct {
		name         string
		id           func(p catalog.Product) string
		expectedCode int
		expectedBody string
		remaining    int
	}{
		{
			name:         "deletes the product",
			id:           func(p catalog.Product) string { return string(p.ID) },
			expectedCode: http.StatusNoContent,
			remaining:    0,
		},
		{
			name:         "unknown id",
			id:           func(catalog.Product) string { return unknownID },
			expectedCode: http.StatusNotFound,
			expectedBody: `{"errors":[{"error":"Product not found","status":404}]}`,
			remaining:    1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			s := store.NewInMemoryStore()
			p := seed(t, s)
			srv := newTestServer(t, s, config.EnvelopeData)

			// when
			status, body := do(t, http.MethodDelete, srv.URL+"/products/"+tc.id(p), "")

			// then
			assert.Equal(t, tc.expectedCode, status)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, body)
			} else {
				assert.Empty(t, body)
			}
			all, err := s.FindAll(context.Background())
			require.NoError(t, err)
			assert.Len(t, all, tc.remaining)
		})
	}
}

// failingStore fails every operation with a non-domain error.
type failingStore struct{ err error }

func (f failingStore) FindByID(context.Context, catalog.ID) (*catalog.Product, error) {
	return nil, f.err
}
func (f failingStore) FindAll(context.Context) ([]catalog.Product, error) { return nil, f.err }
func (f failingStore) Create(context.Context, catalog.Draft) (*catalog.Product, error) {
	return nil, f.err
}
func (f failingStore) Update(context.Context, catalog.ID, catalog.Draft) (*catalog.Product, error) {
	return nil, f.err
}
func (f failingStore) DeleteByID(context.Context, catalog.ID) error { return f.err }

func Test_ProductAPI_StoreFailure(t *testing.T) {
	// given
	srv := newTestServer(t, failingStore{err: errors.New("disk on fire")}, config.EnvelopeData)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "list", method: http.MethodGet, path: "/products"},
		{name: "get", method: http.MethodGet, path: "/products/" + unknownID},
		{name: "create", method: http.MethodPost, path: "/products", body: `{"name":"Chair","price":40}`},
		{name: "update", method: http.MethodPut, path: "/products/" + unknownID, body: `{"name":"Chair","price":40}`},
		{name: "delete", method: http.MethodDelete, path: "/products/" + unknownID},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			status, body := do(t, tc.method, srv.URL+tc.path, tc.body)

			// then
			assert.Equal(t, http.StatusInternalServerError, status)
			assert.JSONEq(t, `{"errors":[{"error":"Internal server error","status":500}]}`, body)
		})
	}
}

func Test_ProductAPI_HealthCheck(t *testing.T) {
	// given
	srv := newTestServer(t, store.NewInMemoryStore(), config.EnvelopeData)

	// when
	status, _ := do(t, http.MethodGet, srv.URL+"/healthz", "")

	// then
	assert.Equal(t, http.StatusOK, status)
}
