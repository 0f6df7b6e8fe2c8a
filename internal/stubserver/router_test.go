package stubserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"storefront-client/internal/domain"
)

func testRouter() http.Handler {
	return buildRouter(NewStore(), "test-secret", time.Hour, zerolog.Nop())
}

func doJSON(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router http.Handler, email string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "",
		`{"username":"tester","email":"`+email+`","password":"Abcdefg1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp domain.AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected token in register response")
	}
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	router := testRouter()
	registerUser(t, router, "user@example.com")

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "",
		`{"email":"user@example.com","password":"Abcdefg1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := testRouter()
	registerUser(t, router, "user@example.com")

	rec := doJSON(t, router, http.MethodPost, "/auth/login", "",
		`{"email":"user@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCartRequiresAuth(t *testing.T) {
	router := testRouter()
	rec := doJSON(t, router, http.MethodGet, "/cart", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestReplaceCartUsesCatalogPrices(t *testing.T) {
	router := testRouter()
	token := registerUser(t, router, "user@example.com")

	rec := doJSON(t, router, http.MethodPut, "/cart", token,
		`[{"productId":"p-001","quantity":2}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var items []domain.LineItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Desk Lamp" || items[0].UnitPrice.String() != "19.99" {
		t.Fatalf("server must render catalog name and price, got %+v", items)
	}
}

func TestReplaceCartRejectsUnknownProduct(t *testing.T) {
	router := testRouter()
	token := registerUser(t, router, "user@example.com")

	rec := doJSON(t, router, http.MethodPut, "/cart", token,
		`[{"productId":"ghost","quantity":1}]`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPromoValidation(t *testing.T) {
	router := testRouter()

	rec := doJSON(t, router, http.MethodPost, "/promocodes/validate", "", `{"code":"SAVE10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"PERCENTAGE"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/promocodes/validate", "", `{"code":"NOPE"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", rec.Code)
	}
}

func TestOrderCreationClearsCart(t *testing.T) {
	router := testRouter()
	token := registerUser(t, router, "user@example.com")
	doJSON(t, router, http.MethodPut, "/cart", token, `[{"productId":"p-001","quantity":1}]`)

	rec := doJSON(t, router, http.MethodPost, "/orders", token,
		`{"totalClientPrice":19.99,"deliveryAddress":"1 Main St"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/cart", token, "")
	if rec.Body.String() != "[]" {
		t.Fatalf("expected empty cart after order, got %s", rec.Body.String())
	}
}

func TestOrderWithEmptyCartRejected(t *testing.T) {
	router := testRouter()
	token := registerUser(t, router, "user@example.com")

	rec := doJSON(t, router, http.MethodPost, "/orders", token,
		`{"totalClientPrice":10,"deliveryAddress":"1 Main St"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestProductSearchAndPaging(t *testing.T) {
	router := testRouter()

	rec := doJSON(t, router, http.MethodGet, "/products?page=0&size=5&searchTerm=desk", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var page struct {
		Content    []domain.Product `json:"content"`
		TotalPages int              `json:"totalPages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Content) != 2 || page.TotalPages != 1 {
		t.Fatalf("expected the two desk products, got %+v", page)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	store := NewStore()
	router := buildRouter(store, "test-secret", -time.Minute, zerolog.Nop())
	token := registerUser(t, router, "user@example.com")

	rec := doJSON(t, router, http.MethodGet, "/cart", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}

func TestReferralRecordedOnSignup(t *testing.T) {
	router := testRouter()
	token := registerUser(t, router, "referrer@example.com")

	rec := doJSON(t, router, http.MethodPost, "/auth/register", "",
		`{"username":"friend","email":"friend@example.com","password":"Abcdefg1","referralCode":"tester"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/referrals?page=1&size=10", token, "")
	if !strings.Contains(rec.Body.String(), "friend@example.com") {
		t.Fatalf("expected referral record, got %s", rec.Body.String())
	}
}
