package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dirsvc "yuime-backend/internal/application/directory"
	orgsvc "yuime-backend/internal/application/org"
	staffsvc "yuime-backend/internal/application/staff"
	"yuime-backend/internal/infrastructure/database"
	"yuime-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type listResponse struct {
	Status string `json:"status"`
	Data   struct {
		Rows      []map[string]any `json:"rows"`
		Total     int              `json:"total"`
		Visible   int              `json:"visible"`
		NoResults bool             `json:"no_results"`
		Filters   struct {
			RawSearch     string            `json:"raw_search"`
			Term          string            `json:"term"`
			Selectors     map[string]string `json:"selectors"`
			SearchPending bool              `json:"search_pending"`
		} `json:"filters"`
		ActiveFilters []dirsvc.ActiveFilter `json:"active_filters"`
	} `json:"data"`
	Error struct {
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	require.NoError(t, database.Seed(context.Background(), db))
	return db
}

func setupApp(t *testing.T, src dirsvc.Source) *fiber.App {
	t.Helper()
	reg := &dirsvc.Registry{Scope: src.Scope(), Schema: src.Schema(), QuietPeriod: 20 * time.Millisecond}
	t.Cleanup(reg.Close)
	h := &Handlers{Source: src, Registry: reg}

	app := fiber.New()
	app.Use(middleware.ConsoleSession())
	h.Register(app.Group("/api/v1/" + src.Scope()))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, sid string, body any) (int, listResponse, string) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.Header.Set(middleware.ConsoleSessionHeader, sid)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var out listResponse
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out, resp.Header.Get(middleware.ConsoleSessionHeader)
}

func names(out listResponse) []string {
	var got []string
	for _, r := range out.Data.Rows {
		got = append(got, r["name"].(string))
	}
	return got
}

func TestList_AllRowsAndSessionHeader(t *testing.T) {
	app := setupApp(t, &staffsvc.Service{DB: setupDB(t)})

	code, out, sid := do(t, app, http.MethodGet, "/api/v1/staff", "", nil)

	assert.Equal(t, fiber.StatusOK, code)
	assert.NotEmpty(t, sid)
	assert.Equal(t, 4, out.Data.Total)
	assert.Equal(t, 4, out.Data.Visible)
	assert.False(t, out.Data.NoResults)
	assert.Equal(t, map[string]string{"status": "all", "role": "all"}, out.Data.Filters.Selectors)
	assert.Empty(t, out.Data.ActiveFilters)
	assert.Equal(t, "山田太郎", names(out)[0])
}

func TestUpdateSearch_DebouncedThenCommitted(t *testing.T) {
	app := setupApp(t, &staffsvc.Service{DB: setupDB(t)})
	sid := uuid.New().String()

	code, out, _ := do(t, app, http.MethodPut, "/api/v1/staff/filters/search", sid, map[string]string{"value": "  山田 "})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "  山田 ", out.Data.Filters.RawSearch)
	assert.Equal(t, "", out.Data.Filters.Term)
	assert.True(t, out.Data.Filters.SearchPending)
	assert.Equal(t, 4, out.Data.Visible)

	require.Eventually(t, func() bool {
		_, out, _ := do(t, app, http.MethodGet, "/api/v1/staff", sid, nil)
		return out.Data.Filters.Term == "山田"
	}, time.Second, 10*time.Millisecond)

	_, out, _ = do(t, app, http.MethodGet, "/api/v1/staff", sid, nil)
	assert.Equal(t, []string{"山田太郎"}, names(out))
	assert.False(t, out.Data.Filters.SearchPending)
}

func TestSetFilter_ComposesWithSearch(t *testing.T) {
	app := setupApp(t, &staffsvc.Service{DB: setupDB(t)})
	sid := uuid.New().String()

	code, out, _ := do(t, app, http.MethodPut, "/api/v1/staff/filters/status", sid, map[string]string{"value": "inactive"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, []string{"鈴木健太", "花子渡辺"}, names(out))
	assert.Equal(t, []dirsvc.ActiveFilter{{Dimension: "status", Value: "inactive", Label: "無効"}}, out.Data.ActiveFilters)

	do(t, app, http.MethodPut, "/api/v1/staff/filters/search", sid, map[string]string{"value": "山田"})
	require.Eventually(t, func() bool {
		_, out, _ := do(t, app, http.MethodGet, "/api/v1/staff", sid, nil)
		return out.Data.Filters.Term == "山田"
	}, time.Second, 10*time.Millisecond)

	_, out, _ = do(t, app, http.MethodGet, "/api/v1/staff", sid, nil)
	assert.True(t, out.Data.NoResults)
	assert.Empty(t, out.Data.Rows)
	assert.Equal(t, "inactive", out.Data.Filters.Selectors["status"])
}

func TestSetFilter_Rejections(t *testing.T) {
	app := setupApp(t, &staffsvc.Service{DB: setupDB(t)})
	sid := uuid.New().String()

	code, out, _ := do(t, app, http.MethodPut, "/api/v1/staff/filters/country", sid, map[string]string{"value": "日本"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "unknown_dimension", out.Error.Details["kind"])

	code, out, _ = do(t, app, http.MethodPut, "/api/v1/staff/filters/role", sid, map[string]string{"value": "root"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "unknown_value", out.Error.Details["kind"])

	code, _, _ = do(t, app, http.MethodPut, "/api/v1/staff/filters/role", sid, map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, code)

	_, out, _ = do(t, app, http.MethodGet, "/api/v1/staff", sid, nil)
	assert.Equal(t, 4, out.Data.Visible)
}

func TestClear_ResetsEverything(t *testing.T) {
	app := setupApp(t, &staffsvc.Service{DB: setupDB(t)})
	sid := uuid.New().String()
	do(t, app, http.MethodPut, "/api/v1/staff/filters/role", sid, map[string]string{"value": "viewer"})
	do(t, app, http.MethodPut, "/api/v1/staff/filters/search", sid, map[string]string{"value": "鈴木"})

	code, out, _ := do(t, app, http.MethodDelete, "/api/v1/staff/filters", sid, nil)

	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 4, out.Data.Visible)
	assert.Equal(t, "", out.Data.Filters.RawSearch)
	assert.False(t, out.Data.Filters.SearchPending)

	// the cancelled search never lands
	time.Sleep(50 * time.Millisecond)
	_, out, _ = do(t, app, http.MethodGet, "/api/v1/staff", sid, nil)
	assert.Equal(t, "", out.Data.Filters.Term)
	assert.Equal(t, 4, out.Data.Visible)
}

func TestSessions_AreIsolated(t *testing.T) {
	app := setupApp(t, &staffsvc.Service{DB: setupDB(t)})
	a, b := uuid.New().String(), uuid.New().String()

	do(t, app, http.MethodPut, "/api/v1/staff/filters/status", a, map[string]string{"value": "active"})

	_, outA, _ := do(t, app, http.MethodGet, "/api/v1/staff", a, nil)
	_, outB, _ := do(t, app, http.MethodGet, "/api/v1/staff", b, nil)
	assert.Equal(t, 2, outA.Data.Visible)
	assert.Equal(t, 4, outB.Data.Visible)
}

func TestSearch_Stateless(t *testing.T) {
	app := setupApp(t, &orgsvc.Service{DB: setupDB(t)})

	code, out, _ := do(t, app, http.MethodGet, "/api/v1/organizations/search?q=%E6%9D%B1%E4%BA%AC", "", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, []string{"東京製造業協同組合"}, names(out))
	assert.Equal(t, "東京", out.Data.Filters.Term)

	_, out, _ = do(t, app, http.MethodGet, "/api/v1/organizations/search?category=support", "", nil)
	assert.Equal(t, []string{"インターナショナルサポート"}, names(out))
	assert.Equal(t, "登録支援機関", out.Data.ActiveFilters[0].Label)

	code, out, _ = do(t, app, http.MethodGet, "/api/v1/organizations/search?category=bank", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "unknown_value", out.Error.Details["kind"])
}

func TestSearch_RejectsUnknownDimension(t *testing.T) {
	app := setupApp(t, &staffsvc.Service{DB: setupDB(t)})

	code, out, _ := do(t, app, http.MethodGet, "/api/v1/staff/search?stauts=inactive", "", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "unknown_dimension", out.Error.Details["kind"])

	code, out, _ = do(t, app, http.MethodGet, "/api/v1/staff/search?status=inactive&role=all", "", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out.Data.ActiveFilters, 1)
}

func TestFacets_OrganizationCountries(t *testing.T) {
	app := setupApp(t, &orgsvc.Service{DB: setupDB(t)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/organizations/facets", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Data map[string][]dirsvc.Option `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.Data["category"], 4)
	assert.Equal(t, dirsvc.Option{Value: "ベトナム", Label: "ベトナム"}, out.Data["country"][0])
}
