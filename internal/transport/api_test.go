package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"storefront/internal/assets"
	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type testAPI struct {
	router   http.Handler
	accounts *mockAccountRepository
	products *mockProductRepository
	store    *assets.FileStore
	tokens   *service.TokenIssuer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()

	store, err := assets.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	images := assets.NewHandler(store, assets.DefaultMaxFiles, logger)

	products := &mockProductRepository{}
	categories := &mockCategoryRepository{products: products}
	products.categories = categories
	accounts := &mockAccountRepository{}

	tokens := service.NewTokenIssuer("test-secret", time.Minute)
	catalog := service.NewCatalogService(categories, products, images, logger)
	accountService := service.NewAccountService(accounts, service.PlaintextVerifier{}, tokens, logger)

	auth := middleware.AuthMiddleware(accountService, logger)
	admin := middleware.RequireAdmin(accountService, logger)
	passThrough := func(next http.Handler) http.Handler { return next }

	r := chi.NewRouter()
	NewAccountHandler(accountService, logger).RegisterRoutes(r, passThrough, auth, admin)
	NewCategoryHandler(catalog, logger).RegisterRoutes(r, auth, admin)
	NewProductHandler(catalog, 1<<20, logger).RegisterRoutes(r, auth, admin)
	NewAssetHandler(images, "/uploads", logger).RegisterRoutes(r)

	return &testAPI{
		router:   r,
		accounts: accounts,
		products: products,
		store:    store,
		tokens:   tokens,
	}
}

// seedAccount stores an account directly and returns a bearer token for it
func (a *testAPI) seedAccount(t *testing.T, role string) (*domain.Account, string) {
	t.Helper()
	account := &domain.Account{
		ID:        uuid.New(),
		FName:     role,
		Email:     role + "-" + uuid.NewString()[:8] + "@example.com",
		Password:  "pw",
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := a.accounts.Create(context.Background(), account); err != nil {
		t.Fatal(err)
	}
	token, _, err := a.tokens.Issue(account)
	if err != nil {
		t.Fatal(err)
	}
	return account, token
}

func (a *testAPI) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return a.do(t, method, path, token, bytes.NewReader(raw), "application/json")
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d: %s", w.Code, want, w.Body.String())
	}
}

type formFile struct {
	field   string
	name    string
	content string
}

func multipartBody(t *testing.T, fields map[string]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		header.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(part, f.content); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func imageFiles(n int) []formFile {
	files := make([]formFile, n)
	for i := range files {
		files[i] = formFile{field: imagesField, name: fmt.Sprintf("photo-%d.jpg", i), content: fmt.Sprintf("jpeg-%d", i)}
	}
	return files
}
