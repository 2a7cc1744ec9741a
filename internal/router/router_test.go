package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campusbooks/internal/config"
	"github.com/campusbooks/internal/constants"
	"github.com/campusbooks/internal/models"
	"github.com/campusbooks/internal/provider"

	"github.com/gin-gonic/gin"
)

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupRouterTest(t *testing.T) *gin.Engine {
	t.Helper()
	return setupRouterTestWith(t, nil)
}

func setupRouterTestWith(t *testing.T, mutate func(cfg *config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	openRouterTestDB(t)

	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	cfg.JWT.SecretKey = "router-flow-secret"
	cfg.JWT.ExpireHours = 1
	cfg.Cart.Storage = constants.CartStorageMemory
	cfg.Order.ReserveBooksOnCheckout = true
	if mutate != nil {
		mutate(cfg)
	}
	return SetupRouter(cfg, provider.NewContainer(cfg))
}

func callAPI(t *testing.T, r *gin.Engine, method, path, token string, body interface{}, headers map[string]string) apiResponse {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s decode failed: %v (%s)", method, path, err, w.Body.String())
	}
	return resp
}

func registerUser(t *testing.T, r *gin.Engine, email, role string) string {
	t.Helper()
	resp := callAPI(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     email,
		"password":  "reading123",
		"full_name": "Test " + role,
		"role":      role,
	}, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("register %s failed: %d %s", email, resp.StatusCode, resp.Msg)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("register token missing: %v", err)
	}
	return data.Token
}

func createListing(t *testing.T, r *gin.Engine, token, title, price string) uint {
	t.Helper()
	resp := callAPI(t, r, http.MethodPost, "/api/v1/seller/books", token, map[string]interface{}{
		"title":      title,
		"author":     "Author",
		"subject":    "Physics",
		"condition":  constants.BookConditionGood,
		"base_price": price,
	}, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("create book failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var book struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &book); err != nil || book.ID == 0 {
		t.Fatalf("book id missing: %v", err)
	}
	return book.ID
}

func redirectOf(t *testing.T, resp apiResponse) string {
	t.Helper()
	var data struct {
		Redirect string `json:"redirect"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("decode redirect failed: %v", err)
	}
	return data.Redirect
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	r := setupRouterTest(t)

	seniorToken := registerUser(t, r, "seller@campus.edu", constants.RoleSenior)
	juniorToken := registerUser(t, r, "buyer@campus.edu", constants.RoleJunior)
	bookA := createListing(t, r, seniorToken, "Optics", "100")
	bookB := createListing(t, r, seniorToken, "Mechanics", "50")

	for _, id := range []uint{bookA, bookB} {
		resp := callAPI(t, r, http.MethodPost, "/api/v1/cart", juniorToken, map[string]uint{"book_id": id}, nil)
		if resp.StatusCode != 0 {
			t.Fatalf("add to cart failed: %d %s", resp.StatusCode, resp.Msg)
		}
	}
	dup := callAPI(t, r, http.MethodPost, "/api/v1/cart", juniorToken, map[string]uint{"book_id": bookA}, nil)
	if dup.StatusCode != 400 {
		t.Fatalf("duplicate add status_code want 400 got %d", dup.StatusCode)
	}
	update := callAPI(t, r, http.MethodPatch, fmt.Sprintf("/api/v1/cart/%d", bookA), juniorToken, map[string]int{"quantity": 2}, nil)
	if update.StatusCode != 0 {
		t.Fatalf("update quantity failed: %d %s", update.StatusCode, update.Msg)
	}

	headers := map[string]string{constants.IdempotencyHeader: "flow-key-1"}
	checkoutBody := map[string]string{"delivery_location": "Library gate", "payment_method": "cod"}
	resp := callAPI(t, r, http.MethodPost, "/api/v1/checkout", juniorToken, checkoutBody, headers)
	if resp.StatusCode != 0 {
		t.Fatalf("checkout failed: %d %s", resp.StatusCode, resp.Msg)
	}
	var result struct {
		Order struct {
			ID          uint   `json:"id"`
			TotalAmount string `json:"total_amount"`
			Items       []struct {
				Quantity int `json:"quantity"`
			} `json:"items"`
		} `json:"order"`
		Replayed bool `json:"replayed"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		t.Fatalf("decode checkout failed: %v", err)
	}
	if result.Order.TotalAmount != "250.00" || len(result.Order.Items) != 2 || result.Replayed {
		t.Fatalf("unexpected checkout result: %+v", result)
	}

	cart := callAPI(t, r, http.MethodGet, "/api/v1/cart", juniorToken, nil, nil)
	var cartView struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(cart.Data, &cartView); err != nil {
		t.Fatalf("decode cart failed: %v", err)
	}
	if len(cartView.Items) != 0 {
		t.Fatalf("cart should be empty after checkout, got %d items", len(cartView.Items))
	}

	// 重放同一幂等键时购物车已空，返回购物车为空
	again := callAPI(t, r, http.MethodPost, "/api/v1/checkout", juniorToken, checkoutBody, headers)
	if again.StatusCode != 400 || redirectOf(t, again) != constants.RedirectCart {
		t.Fatalf("empty cart checkout want 400 + /cart got %d %s", again.StatusCode, redirectOf(t, again))
	}

	var orders int64
	if err := models.DB.Model(&models.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orders != 1 {
		t.Fatalf("orders want 1 got %d", orders)
	}

	list := callAPI(t, r, http.MethodGet, "/api/v1/orders", juniorToken, nil, nil)
	if list.StatusCode != 0 {
		t.Fatalf("list orders failed: %d %s", list.StatusCode, list.Msg)
	}
	sellerOrders := callAPI(t, r, http.MethodGet, "/api/v1/seller/orders", seniorToken, nil, nil)
	if sellerOrders.StatusCode != 0 {
		t.Fatalf("seller orders failed: %d %s", sellerOrders.StatusCode, sellerOrders.Msg)
	}
}

func TestRoleGroupsRejectWrongRole(t *testing.T) {
	r := setupRouterTest(t)

	seniorToken := registerUser(t, r, "seller2@campus.edu", constants.RoleSenior)
	juniorToken := registerUser(t, r, "buyer2@campus.edu", constants.RoleJunior)

	anon := callAPI(t, r, http.MethodPost, "/api/v1/checkout", "", map[string]string{}, nil)
	if anon.StatusCode != 401 || redirectOf(t, anon) != constants.RedirectLogin {
		t.Fatalf("anonymous checkout want 401 + login redirect got %d %s", anon.StatusCode, redirectOf(t, anon))
	}

	seniorCheckout := callAPI(t, r, http.MethodPost, "/api/v1/checkout", seniorToken, map[string]string{}, nil)
	if seniorCheckout.StatusCode != 403 || redirectOf(t, seniorCheckout) != constants.RedirectHome {
		t.Fatalf("senior checkout want 403 + home redirect got %d %s", seniorCheckout.StatusCode, redirectOf(t, seniorCheckout))
	}

	juniorListing := callAPI(t, r, http.MethodGet, "/api/v1/seller/books", juniorToken, nil, nil)
	if juniorListing.StatusCode != 403 {
		t.Fatalf("junior seller route want 403 got %d", juniorListing.StatusCode)
	}

	logout := callAPI(t, r, http.MethodPost, "/api/v1/auth/logout", juniorToken, nil, nil)
	if logout.StatusCode != 0 {
		t.Fatalf("logout failed: %d %s", logout.StatusCode, logout.Msg)
	}
	revoked := callAPI(t, r, http.MethodGet, "/api/v1/profile", juniorToken, nil, nil)
	if revoked.StatusCode != 401 {
		t.Fatalf("revoked token want 401 got %d", revoked.StatusCode)
	}
}

func TestPublicBookBrowsing(t *testing.T) {
	r := setupRouterTest(t)

	seniorToken := registerUser(t, r, "seller3@campus.edu", constants.RoleSenior)
	id := createListing(t, r, seniorToken, "Thermodynamics", "300")

	list := callAPI(t, r, http.MethodGet, "/api/v1/books?q=thermo", "", nil, nil)
	var books []struct {
		ID    uint   `json:"id"`
		Price string `json:"price"`
	}
	if err := json.Unmarshal(list.Data, &books); err != nil {
		t.Fatalf("decode books failed: %v", err)
	}
	if len(books) != 1 || books[0].ID != id || books[0].Price != "300.00" {
		t.Fatalf("unexpected books: %+v", books)
	}

	missing := callAPI(t, r, http.MethodGet, "/api/v1/books/999999", "", nil, nil)
	if missing.StatusCode != 404 {
		t.Fatalf("missing book want 404 got %d", missing.StatusCode)
	}

	health := httptest.NewRecorder()
	r.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", nil))
	var status map[string]string
	if err := json.Unmarshal(health.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode health failed: %v", err)
	}
	if status["status"] != "ok" || status["redis"] != "disabled" {
		t.Fatalf("unexpected health: %v", status)
	}
}

func postRawCheckout(t *testing.T, r *gin.Engine, token, body string) apiResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode checkout failed: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestCheckoutEmptyCartWinsOverBodyErrors(t *testing.T) {
	r := setupRouterTest(t)
	juniorToken := registerUser(t, r, "buyer4@campus.edu", constants.RoleJunior)

	for _, body := range []string{"", "{", `{"payment_method": 5}`} {
		resp := postRawCheckout(t, r, juniorToken, body)
		if resp.StatusCode != 400 || redirectOf(t, resp) != constants.RedirectCart {
			t.Fatalf("body %q want 400 + /cart got %d %s", body, resp.StatusCode, redirectOf(t, resp))
		}
	}

	seniorToken := registerUser(t, r, "seller4@campus.edu", constants.RoleSenior)
	bookID := createListing(t, r, seniorToken, "Acoustics", "80")
	if resp := callAPI(t, r, http.MethodPost, "/api/v1/cart", juniorToken, map[string]uint{"book_id": bookID}, nil); resp.StatusCode != 0 {
		t.Fatalf("add to cart failed: %d %s", resp.StatusCode, resp.Msg)
	}
	malformed := postRawCheckout(t, r, juniorToken, "{")
	if malformed.StatusCode != 400 || redirectOf(t, malformed) != "" {
		t.Fatalf("malformed body with items want plain 400 got %d %s", malformed.StatusCode, redirectOf(t, malformed))
	}
	missing := postRawCheckout(t, r, juniorToken, "")
	if missing.StatusCode != 400 || redirectOf(t, missing) == constants.RedirectCart {
		t.Fatalf("empty body with items want field error got %d %s", missing.StatusCode, redirectOf(t, missing))
	}
}

func TestConfiguredGrantLetsSeniorBuy(t *testing.T) {
	r := setupRouterTestWith(t, func(cfg *config.Config) {
		cfg.Authz.Grants = []config.AuthzGrant{{Role: constants.RoleSenior, Capability: constants.RoleJunior}}
	})
	sellerToken := registerUser(t, r, "seller5@campus.edu", constants.RoleSenior)
	buyerToken := registerUser(t, r, "seller6@campus.edu", constants.RoleSenior)
	bookID := createListing(t, r, sellerToken, "Relativity", "150")

	view := callAPI(t, r, http.MethodGet, "/api/v1/cart", buyerToken, nil, nil)
	if view.StatusCode != 0 {
		t.Fatalf("granted senior cart want 0 got %d %s", view.StatusCode, view.Msg)
	}
	if resp := callAPI(t, r, http.MethodPost, "/api/v1/cart", buyerToken, map[string]uint{"book_id": bookID}, nil); resp.StatusCode != 0 {
		t.Fatalf("granted senior add want 0 got %d %s", resp.StatusCode, resp.Msg)
	}
	resp := callAPI(t, r, http.MethodPost, "/api/v1/checkout", buyerToken, map[string]string{"delivery_location": "Hostel B", "payment_method": "upi"}, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("granted senior checkout want 0 got %d %s", resp.StatusCode, resp.Msg)
	}
	if listing := callAPI(t, r, http.MethodGet, "/api/v1/seller/books", buyerToken, nil, nil); listing.StatusCode != 0 {
		t.Fatalf("senior keeps seller access, got %d", listing.StatusCode)
	}
}
