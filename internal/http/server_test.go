package httpapi

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denisok6893-rgb/property-underwriting/internal/domain"
	"github.com/denisok6893-rgb/property-underwriting/internal/storage"
	"github.com/denisok6893-rgb/property-underwriting/internal/underwriting"
)

func intPtr(v int) *int { return &v }

func newTestServer(t *testing.T, repo PropertiesRepo) *httptest.Server {
	t.Helper()
	engine := underwriting.NewEngine(underwriting.DefaultAssumptions(), 2, zerolog.Nop())
	srv := NewServer(engine, repo, Defaults{Strategy: domain.StrategyRental, HorizonYears: 5}, zerolog.Nop())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getURL(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := getURL(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, resp))
}

func TestDefaultAssumptions(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := getURL(t, ts.URL+"/assumptions/default")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, underwriting.DefaultAssumptions(), decode[domain.InvestmentAssumptions](t, resp))
}

func TestPOSTScore(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/score", map[string]any{
		"strategy":      "rental",
		"horizon_years": 5,
		"property":      map[string]any{"id": "a", "list_price": 300000, "beds": 3},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[domain.ScoredProperty](t, resp)
	assert.Equal(t, 18, got.Score)
	assert.Equal(t, domain.StrategyRental, got.Strategy)
	assert.Equal(t, 2400.0, got.Metrics.EstimatedRent)
	assert.Equal(t, "a", got.Property.ID)
}

func TestPOSTScore_DefaultsAndOverrides(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/score", map[string]any{
		"property":    map[string]any{"id": "a", "list_price": 300000, "beds": 3},
		"assumptions": map[string]any{"down_payment": 0, "loan_rate": 0.07},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[domain.ScoredProperty](t, resp)
	assert.Equal(t, domain.StrategyRental, got.Strategy)
	assert.Equal(t, 5, got.HorizonYears)
	assert.Zero(t, got.Metrics.CashOnCash)
}

func TestPOSTScore_Rejections(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"unknown strategy", map[string]any{"strategy": "flip", "property": map[string]any{"list_price": 1}}},
		{"horizon too long", map[string]any{"horizon_years": 101, "property": map[string]any{"list_price": 1}}},
		{"rate above one", map[string]any{"assumptions": map[string]any{"tax_rate": 2}, "property": map[string]any{"list_price": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/score", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	resp, err := http.Post(ts.URL+"/score", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPOSTScore_NegativeHorizonKeepsPrice(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/score", map[string]any{
		"horizon_years": -3,
		"property":      map[string]any{"id": "a", "list_price": 300000, "beds": 3},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[domain.ScoredProperty](t, resp)
	assert.Equal(t, -3, got.HorizonYears)
	assert.Equal(t, 300000.0, got.Metrics.ProjectedValueYearN)
}

func TestPOSTScore_OverflowingExpensesStayFinite(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/score", map[string]any{
		"property":    map[string]any{"id": "big", "list_price": 1e308, "beds": 3},
		"assumptions": map[string]any{"tax_rate": 1, "insurance_rate": 1, "down_payment": 0.2, "loan_rate": 0.07},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[domain.ScoredProperty](t, resp)
	assert.Equal(t, "big", got.Property.ID)
	assert.GreaterOrEqual(t, got.Score, 0)
	assert.LessOrEqual(t, got.Score, 100)
}

func TestWriteJSON_UnencodablePayload(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"v": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "encode_failed", body["error"])
}

func TestRankLimit(t *testing.T) {
	tests := []struct {
		query string
		body  int
		want  int
	}{
		{"", 0, 0},
		{"", 7, 7},
		{"?limit=3", 7, 3},
		{"?limit=500", 7, maxPageLimit},
		{"?limit=-1", 7, 7},
		{"?limit=abc", 9, 9},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/rank"+tt.query, nil)
		assert.Equal(t, tt.want, rankLimit(r, tt.body), "query=%q body=%d", tt.query, tt.body)
	}
}

func TestPOSTScore_ZeroPriceDoesNotFail(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/score", map[string]any{"property": map[string]any{"id": "z"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[domain.ScoredProperty](t, resp)
	assert.Equal(t, 0, got.Score)
	assert.Zero(t, got.Metrics.CapRate)
}

func TestPOSTRank(t *testing.T) {
	repo := NewMemoryPropertiesRepo([]domain.RawProperty{
		{ID: "a", City: "Austin", ListPrice: 300000, Beds: intPtr(3)},
		{ID: "b", City: "Austin", ListPrice: 200000, Beds: intPtr(6)},
		{ID: "c", City: "Dallas", ListPrice: 900000, Beds: intPtr(4)},
	})
	ts := newTestServer(t, repo)

	resp := postJSON(t, ts.URL+"/rank", map[string]any{
		"strategy": "short_term_rental",
		"filters":  map[string]any{"max_price": 500000},
		"limit":    5,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[RankResponse](t, resp)
	assert.Equal(t, domain.StrategyShortTermRental, got.Strategy)
	require.Len(t, got.Results, 2)
	assert.Equal(t, 2, got.Summary.Count)
	assert.GreaterOrEqual(t, got.Results[0].Score, got.Results[1].Score)
	for _, r := range got.Results {
		assert.NotEqual(t, "c", r.Property.ID)
	}
}

func TestPOSTRank_Empty(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/rank", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[RankResponse](t, resp)
	assert.Empty(t, got.Results)
	assert.Zero(t, got.Summary.Count)
}

func TestPropertiesCRUDAndScore(t *testing.T) {
	ts := newTestServer(t, nil)

	post := func(body map[string]any) domain.RawProperty {
		resp := postJSON(t, ts.URL+"/properties", body)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		return decode[domain.RawProperty](t, resp)
	}

	post(map[string]any{"id": "a", "city": "Valencia", "list_price": 320000, "beds": 3})
	post(map[string]any{"id": "b", "city": "valencia center", "list_price": 450000, "beds": 4})
	created := post(map[string]any{"city": "Madrid", "list_price": 500000, "beds": 4})
	assert.NotEmpty(t, created.ID)

	resp := getURL(t, ts.URL+"/properties?city=VALENCIA&min_price=400000&min_beds=4&sort=price_desc&limit=20&offset=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[PropertiesListResponse](t, resp)
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "b", list.Items[0].ID)

	resp = getURL(t, ts.URL+"/properties/a")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 320000.0, decode[domain.RawProperty](t, resp).ListPrice)

	resp = getURL(t, ts.URL+"/properties/a/score?strategy=appreciation&horizon_years=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	scored := decode[domain.ScoredProperty](t, resp)
	assert.Equal(t, domain.StrategyAppreciation, scored.Strategy)
	assert.Equal(t, 10, scored.HorizonYears)

	resp = getURL(t, ts.URL+"/properties/a/score?strategy=flip")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getURL(t, ts.URL+"/properties/a/score?horizon_years=ten")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = getURL(t, ts.URL+"/properties/missing/score")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/properties/a", nil)
	require.NoError(t, err)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer del.Body.Close()
	assert.Equal(t, http.StatusOK, del.StatusCode)

	resp = getURL(t, ts.URL+"/properties/a")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPOSTProperties_Validation(t *testing.T) {
	ts := newTestServer(t, nil)

	for name, body := range map[string]map[string]any{
		"missing city":    {"list_price": 100000},
		"zero price":      {"city": "Austin", "list_price": 0},
		"negative beds":   {"city": "Austin", "list_price": 100000, "beds": -1},
		"bad listing url": {"city": "Austin", "list_price": 100000, "listing_url": "not a url"},
	} {
		t.Run(name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/properties", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestSQLiteRepo_ThroughServer(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "listings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.EnsureSchema())
	require.NoError(t, store.UpsertMany([]domain.RawProperty{
		{ID: "a", City: "Austin", ListPrice: 300000, Beds: intPtr(3)},
		{ID: "b", City: "Austin", ListPrice: 200000, Beds: intPtr(6)},
	}))

	ts := newTestServer(t, &SQLitePropertiesRepo{Store: store})

	resp := getURL(t, ts.URL+"/properties?sort=price_asc")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[PropertiesListResponse](t, resp)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "b", list.Items[0].ID)

	resp = postJSON(t, ts.URL+"/rank", map[string]any{"strategy": "rental"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[RankResponse](t, resp).Results, 2)
}

func TestPOSTAmortization(t *testing.T) {
	ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/amortization", map[string]any{"loan_amount": 240000, "annual_rate": 0.07})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[AmortizationResponse](t, resp)
	require.Len(t, got.Schedule, underwriting.LoanTermMonths)
	assert.True(t, got.MonthlyPayment.Sub(decimal.RequireFromString("1596.73")).Abs().LessThan(decimal.NewFromFloat(0.01)),
		"payment %s", got.MonthlyPayment)
	assert.True(t, got.TotalInterest.GreaterThan(decimal.NewFromInt(330000)), "total interest %s", got.TotalInterest)

	resp = postJSON(t, ts.URL+"/amortization", map[string]any{"loan_amount": 0, "annual_rate": 0.07})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/amortization", map[string]any{"loan_amount": 1000, "annual_rate": 0.07, "term_months": 1000})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
