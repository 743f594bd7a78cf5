package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/advisor"
	"storefront/internal/catalog"
	"storefront/internal/session"
	"storefront/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, gen advisor.Generator) *gin.Engine {
	t.Helper()
	menu := catalog.Default()
	adv := advisor.New(gen, menu, time.Second)
	manager := session.NewManager(session.NewMemoryStore(time.Hour), menu, adv, nil)

	router := gin.New()
	NewHandler(manager, nil).SetupRoutes(router)
	return router
}

func do(t *testing.T, router *gin.Engine, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	} else {
		req.ContentLength = 0
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) view.View {
	t.Helper()
	var v view.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func newSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := do(t, router, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	v := decodeView(t, w)
	require.NotEmpty(t, v.SessionID)
	assert.Equal(t, v.SessionID, w.Header().Get(SessionHeader))
	return v.SessionID
}

func TestHealthAndReady(t *testing.T) {
	router := setupRouter(t, nil)

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/ready", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/metrics", nil).Code)
}

func TestReadyReportsDependencyFailure(t *testing.T) {
	menu := catalog.Default()
	manager := session.NewManager(session.NewMemoryStore(time.Hour), menu, nil, nil)
	router := gin.New()
	NewHandler(manager, func(context.Context) error { return errors.New("redis down") }).SetupRoutes(router)

	w := do(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis down")
}

func TestCatalogFilter(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/v1/catalog?category=pastries", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Category string         `json:"category"`
		Products []view.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Pastries", resp.Category)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "R4.50", resp.Products[0].Price)

	w = do(t, router, http.MethodGet, "/api/v1/catalog", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 6)

	w = do(t, router, http.MethodGet, "/api/v1/catalog?category=bread", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	router := setupRouter(t, nil)
	id := newSession(t, router)
	base := "/api/v1/sessions/" + id

	w := do(t, router, http.MethodPost, base+"/checkout/advance", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "empty cart cannot proceed")

	for _, item := range []string{"2", "2", "3"} {
		w = do(t, router, http.MethodPost, base+"/cart/items", gin.H{"item_id": item})
		require.Equal(t, http.StatusOK, w.Code)
	}
	v := decodeView(t, w)
	assert.Equal(t, 3, v.CartCount)
	assert.Equal(t, "R81.00", v.Drawer.Subtotal)

	w = do(t, router, http.MethodPatch, base+"/cart/items/2", gin.H{"delta": -5})
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.Equal(t, 1, v.Drawer.Lines[0].Quantity, "quantity is clamped at 1")

	w = do(t, router, http.MethodDelete, base+"/cart/items/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeView(t, w).Drawer.Lines, 1)

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, base+"/cart/open", nil).Code)

	w = do(t, router, http.MethodPost, base+"/checkout/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "details", decodeView(t, w).Drawer.Panel)

	w = do(t, router, http.MethodPost, base+"/checkout/advance", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, base+"/checkout/advance", gin.H{
		"name":        "Naledi",
		"email":       "naledi@example.com",
		"pickup_date": "2026-03-04",
	})
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.Equal(t, "success", v.Drawer.Panel)
	assert.Equal(t, 0, v.CartCount)
	assert.NotContains(t, w.Body.String(), "naledi@example.com")

	w = do(t, router, http.MethodPost, base+"/checkout/advance", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodPost, base+"/checkout/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.Equal(t, "cart", v.Drawer.Panel)
	assert.False(t, v.Drawer.Open)

	w = do(t, router, http.MethodPost, base+"/checkout/reset", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBackAndCloseFromDetails(t *testing.T) {
	router := setupRouter(t, nil)
	id := newSession(t, router)
	base := "/api/v1/sessions/" + id

	do(t, router, http.MethodPost, base+"/cart/items", gin.H{"item_id": "1"})
	do(t, router, http.MethodPost, base+"/cart/open", nil)
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, base+"/checkout/advance", nil).Code)

	w := do(t, router, http.MethodPut, base+"/checkout/details", gin.H{"pickup_date": "04/03/2026"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, router, http.MethodPut, base+"/checkout/details", gin.H{"name": "Sipho"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sipho", decodeView(t, w).Drawer.Details.Name)

	w = do(t, router, http.MethodPost, base+"/checkout/back", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cart", decodeView(t, w).Drawer.Panel)

	w = do(t, router, http.MethodPost, base+"/checkout/back", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, base+"/checkout/advance", nil).Code)
	w = do(t, router, http.MethodPost, base+"/cart/close", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, "browsing", v.Drawer.Phase)
	assert.Equal(t, 1, v.CartCount)
}

func TestSessionErrors(t *testing.T) {
	router := setupRouter(t, nil)

	w := do(t, router, http.MethodGet, "/api/v1/sessions/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Session not found", body["error"])

	id := newSession(t, router)
	w = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/cart/items", gin.H{"item_id": "99"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodPost, "/api/v1/sessions/"+id+"/cart/items", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPatch, "/api/v1/sessions/"+id+"/cart/items/1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPatch, "/api/v1/sessions/"+id+"/cart/items/1", gin.H{"delta": math.MaxInt64})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/session", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHeaderAddressedSession(t *testing.T) {
	router := setupRouter(t, nil)
	id := newSession(t, router)

	w := do(t, router, http.MethodPut, "/api/v1/session/category", gin.H{"category": "cookies"}, SessionHeader, id)
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Len(t, v.Products, 2)

	w = do(t, router, http.MethodPut, "/api/v1/session/category", gin.H{"category": "bread"}, SessionHeader, id)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodDelete, "/api/v1/session", nil, SessionHeader, id)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodGet, "/api/v1/session", nil, SessionHeader, id)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChat(t *testing.T) {
	var prompts []string
	router := setupRouter(t, advisor.GeneratorFunc(func(_ context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if strings.Contains(prompt, "broken") {
			return "", errors.New("quota exceeded")
		}
		return "The Champagne Strawberry Cake, darling!", nil
	}))
	id := newSession(t, router)
	base := "/api/v1/sessions/" + id

	w := do(t, router, http.MethodPost, base+"/chat/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeView(t, w).Chat.Open)

	w = do(t, router, http.MethodPost, base+"/chat/messages", gin.H{"text": "Something for a birthday?"})
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	require.Len(t, v.Chat.Messages, 3)
	assert.Equal(t, "The Champagne Strawberry Cake, darling!", v.Chat.Messages[2].Text)
	assert.False(t, v.Chat.Pending)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "User asks: Something for a birthday?")

	w = do(t, router, http.MethodPost, base+"/chat/messages", gin.H{"text": "broken"})
	require.Equal(t, http.StatusOK, w.Code)
	msgs := decodeView(t, w).Chat.Messages
	assert.Equal(t, advisor.FallbackUnavailable, msgs[len(msgs)-1].Text)

	w = do(t, router, http.MethodPost, base+"/chat/messages", gin.H{"text": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, base+"/chat/close", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeView(t, w).Chat.Open)
}
