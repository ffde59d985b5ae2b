package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"produtoapi/internal/handlers"
	"produtoapi/internal/models"
	"produtoapi/internal/repositories"
	"produtoapi/internal/services"
	"produtoapi/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupApp sets up a Fiber app for testing backed by an in-memory SQLite database.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Produto{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return newApp(repositories.NewGORMProdutoRepository(db))
}

func newApp(repo repositories.ProdutoRepository) *fiber.App {
	log := logger.Nop()
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(log)})
	api := app.Group("/api")
	handlers.NewProdutoHandler(services.NewProdutoService(repo, nil, log)).RegisterRoutes(api)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, respBody
}

func TestProdutoEndpoints_Lifecycle(t *testing.T) {
	app := setupApp(t)

	// --- POST /api/produtos ---
	resp, body := doRequest(t, app, http.MethodPost, "/api/produtos", map[string]interface{}{
		"name":  "Widget",
		"price": 10,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var created models.Produto
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Widget", created.Name)
	assert.Equal(t, 10.0, created.Price)

	// --- GET /api/produtos/1 ---
	resp, body = doRequest(t, app, http.MethodGet, "/api/produtos/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Produto
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, created, fetched)

	// --- PUT /api/produtos/1 with a conflicting body id ---
	resp, body = doRequest(t, app, http.MethodPut, "/api/produtos/1", map[string]interface{}{
		"id":    999,
		"name":  "Widget2",
		"price": 12,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Produto
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, models.Produto{ID: 1, Name: "Widget2", Price: 12}, updated)

	resp, body = doRequest(t, app, http.MethodGet, "/api/produtos/1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &fetched))
	assert.Equal(t, updated, fetched)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/produtos/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "body id must not create a new row")

	// --- DELETE /api/produtos/1 ---
	resp, body = doRequest(t, app, http.MethodDelete, "/api/produtos/1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = doRequest(t, app, http.MethodGet, "/api/produtos/1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, body)
}

func TestProdutoEndpoints_List(t *testing.T) {
	app := setupApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/api/produtos", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, "[]", string(body))

	for _, name := range []string{"Laptop", "Keyboard", "Mouse"} {
		resp, _ = doRequest(t, app, http.MethodPost, "/api/produtos", map[string]interface{}{"name": name})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body = doRequest(t, app, http.MethodGet, "/api/produtos", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var produtos []models.Produto
	require.NoError(t, json.Unmarshal(body, &produtos))
	require.Len(t, produtos, 3)
	assert.Equal(t, "Laptop", produtos[0].Name)
	assert.Equal(t, "Mouse", produtos[2].Name)
}

func TestProdutoEndpoints_CreateIgnoresBodyID(t *testing.T) {
	app := setupApp(t)

	resp, body := doRequest(t, app, http.MethodPost, "/api/produtos", map[string]interface{}{"id": 42, "name": "Widget"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var created models.Produto
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, int64(1), created.ID)

	resp, _ = doRequest(t, app, http.MethodGet, "/api/produtos/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProdutoEndpoints_MissingID(t *testing.T) {
	app := setupApp(t)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/produtos", map[string]interface{}{"name": "Existing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodPut, "/api/produtos/7", map[string]interface{}{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = doRequest(t, app, http.MethodDelete, "/api/produtos/7", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, body)

	// Neither call touched the store.
	resp, body = doRequest(t, app, http.MethodGet, "/api/produtos", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var produtos []models.Produto
	require.NoError(t, json.Unmarshal(body, &produtos))
	require.Len(t, produtos, 1)
	assert.Equal(t, "Existing", produtos[0].Name)
}

func TestProdutoEndpoints_BadInput(t *testing.T) {
	app := setupApp(t)

	resp, body := doRequest(t, app, http.MethodGet, "/api/produtos/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "id must be an integer")

	req := httptest.NewRequest(http.MethodPost, "/api/produtos", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestProdutoEndpoints_PathIDRange(t *testing.T) {
	app := setupApp(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp, _ := doRequest(t, app, method, "/api/produtos/9223372036854775808", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, method)

		resp, _ = doRequest(t, app, method, "/api/produtos/18446744073709551615", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, method)
	}

	resp, _ := doRequest(t, app, http.MethodPut, "/api/produtos/9223372036854775808", map[string]interface{}{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodGet, "/api/produtos/9223372036854775807", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = doRequest(t, app, http.MethodGet, "/api/produtos/-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, body)

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/produtos/-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProdutoEndpoints_BodyIDIsAlwaysIgnored(t *testing.T) {
	app := setupApp(t)

	for i, rawID := range []interface{}{-5, 1.5, "abc"} {
		resp, body := doRequest(t, app, http.MethodPost, "/api/produtos", map[string]interface{}{
			"id":    rawID,
			"name":  "X",
			"price": 1,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "POST with id %v", rawID)
		var created models.Produto
		require.NoError(t, json.Unmarshal(body, &created))
		assert.Equal(t, int64(i+1), created.ID, "store assigns the id for body id %v", rawID)

		resp, body = doRequest(t, app, http.MethodPut, "/api/produtos/1", map[string]interface{}{
			"id":    rawID,
			"name":  "Y",
			"price": 2,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, "PUT with id %v", rawID)
		var updated models.Produto
		require.NoError(t, json.Unmarshal(body, &updated))
		assert.Equal(t, models.Produto{ID: 1, Name: "Y", Price: 2}, updated)
	}

	resp, _ := doRequest(t, app, http.MethodGet, "/api/produtos/-5", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// failingRepository simulates an unavailable store.
type failingRepository struct{}

var errStoreDown = errors.New("connection refused")

func (failingRepository) FindAll() ([]models.Produto, error) { return nil, errStoreDown }
func (failingRepository) FindByID(int64) (*models.Produto, error) { return nil, errStoreDown }
func (failingRepository) Save(*models.Produto) error { return errStoreDown }
func (failingRepository) DeleteByID(int64) error { return errStoreDown }

func TestProdutoEndpoints_StoreFailureIs500(t *testing.T) {
	app := newApp(failingRepository{})

	resp, body := doRequest(t, app, http.MethodGet, "/api/produtos", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Internal server error"}`, string(body))

	resp, _ = doRequest(t, app, http.MethodGet, "/api/produtos/1", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodPost, "/api/produtos", map[string]interface{}{"name": "x"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealthHandler(t *testing.T) {
	var logs bytes.Buffer
	app := fiber.New()
	healthy := true
	handlers.NewHealthHandler(func() error {
		if healthy {
			return nil
		}
		return errStoreDown
	}, logger.NewWithWriter(logger.Config{Env: "production"}, &logs)).RegisterRoutes(app)

	resp, body := doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"database":"up"`)

	healthy = false
	resp, body = doRequest(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), `"database":"down"`)
	assert.NotContains(t, string(body), errStoreDown.Error(), "driver errors stay out of the response")
	assert.NotContains(t, string(body), `"error"`)
	assert.Contains(t, logs.String(), errStoreDown.Error())
}
