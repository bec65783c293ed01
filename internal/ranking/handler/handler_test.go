package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iendorse/rankd/internal/ranking/alignment"
	"github.com/iendorse/rankd/internal/ranking/engine"
	"github.com/iendorse/rankd/internal/ranking/service"
	"github.com/iendorse/rankd/pkg/config"
	apperrors "github.com/iendorse/rankd/pkg/errors"
)

type fakeRanker struct {
	items     []engine.RankedItem
	result    alignment.Result
	err       error
	lastLimit int
	lastMiles float64
}

func (f *fakeRanker) TopBrands(ctx context.Context, limit int) ([]engine.RankedItem, error) {
	f.lastLimit = limit
	return f.items, f.err
}

func (f *fakeRanker) TopBusinesses(ctx context.Context, limit int) ([]engine.RankedItem, error) {
	f.lastLimit = limit
	return f.items, f.err
}

func (f *fakeRanker) TopLocal(ctx context.Context, origin engine.LatLng, maxMiles float64, limit int) ([]engine.RankedItem, error) {
	f.lastLimit = limit
	f.lastMiles = maxMiles
	return f.items, f.err
}

func (f *fakeRanker) TopOverview(ctx context.Context, limit int) (*service.Overview, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.Overview{Brands: f.items, Businesses: f.items}, nil
}

func (f *fakeRanker) AlignmentForUser(ctx context.Context, userID, entityID string) (alignment.Result, error) {
	return f.result, f.err
}

func testHandler(ranker Ranker) *Handler {
	return New(ranker, nil, nil, nil, config.RankingConfig{
		DefaultLimit:       25,
		MaxLimit:           200,
		DefaultRadiusMiles: 25,
		MaxRadiusMiles:     500,
	})
}

func TestTopBrandsOK(t *testing.T) {
	ranker := &fakeRanker{items: []engine.RankedItem{
		{ID: "b1", Name: "Alpha Roasters", Score: 195, EndorsementCount: 2},
		{ID: "b2", Name: "Beta Goods", Score: 100, EndorsementCount: 1},
	}}
	h := testHandler(ranker)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rankings/brands?limit=10", nil)
	rec := httptest.NewRecorder()
	h.TopBrands(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var resp RankingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Kind != "brand" || resp.Returned != 2 || len(resp.Results) != 2 {
		t.Errorf("response = %+v, want 2 brand results", resp)
	}
	if ranker.lastLimit != 10 {
		t.Errorf("limit passed to ranker = %d, want 10", ranker.lastLimit)
	}
}

func TestTopBrandsLimitValidation(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		wantLimit  int
	}{
		{"", http.StatusOK, 25},
		{"?limit=5", http.StatusOK, 5},
		{"?limit=999", http.StatusOK, 200},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=-3", http.StatusBadRequest, 0},
		{"?limit=abc", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		ranker := &fakeRanker{}
		h := testHandler(ranker)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/rankings/brands"+tt.query, nil)
		rec := httptest.NewRecorder()
		h.TopBrands(rec, req)
		if rec.Code != tt.wantStatus {
			t.Errorf("query %q: status = %d, want %d", tt.query, rec.Code, tt.wantStatus)
		}
		if tt.wantStatus == http.StatusOK && ranker.lastLimit != tt.wantLimit {
			t.Errorf("query %q: limit = %d, want %d", tt.query, ranker.lastLimit, tt.wantLimit)
		}
	}
}

func TestEmptyRankingIsNotAnError(t *testing.T) {
	h := testHandler(&fakeRanker{items: nil})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rankings/businesses", nil)
	rec := httptest.NewRecorder()
	h.TopBusinesses(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp RankingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("results = %v, want empty array", resp.Results)
	}
}

func TestRankerFailureIs500(t *testing.T) {
	h := testHandler(&fakeRanker{err: errors.New("store down")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rankings/brands", nil)
	rec := httptest.NewRecorder()
	h.TopBrands(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestUnavailableDependencyIs503(t *testing.T) {
	err := fmt.Errorf("%w: circuit open", apperrors.ErrUnavailable)
	h := testHandler(&fakeRanker{err: err})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rankings/brands", nil)
	rec := httptest.NewRecorder()
	h.TopBrands(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestTopLocalOriginValidation(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"missing both", "", http.StatusBadRequest},
		{"missing lng", "?lat=40.7", http.StatusBadRequest},
		{"lat out of range", "?lat=91&lng=0", http.StatusBadRequest},
		{"lng out of range", "?lat=0&lng=-181", http.StatusBadRequest},
		{"lat not a number", "?lat=north&lng=0", http.StatusBadRequest},
		{"valid", "?lat=40.7&lng=-74.0", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler(&fakeRanker{})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/rankings/local"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.TopLocal(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestTopLocalRadius(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		wantMiles  float64
	}{
		{"?lat=0&lng=0", http.StatusOK, 25},
		{"?lat=0&lng=0&radius=80", http.StatusOK, 80},
		{"?lat=0&lng=0&radius=9000", http.StatusOK, 500},
		{"?lat=0&lng=0&radius=0", http.StatusBadRequest, 0},
		{"?lat=0&lng=0&radius=-5", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		ranker := &fakeRanker{}
		h := testHandler(ranker)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/rankings/local"+tt.query, nil)
		rec := httptest.NewRecorder()
		h.TopLocal(rec, req)
		if rec.Code != tt.wantStatus {
			t.Errorf("query %q: status = %d, want %d", tt.query, rec.Code, tt.wantStatus)
			continue
		}
		if tt.wantStatus == http.StatusOK && ranker.lastMiles != tt.wantMiles {
			t.Errorf("query %q: radius = %v, want %v", tt.query, ranker.lastMiles, tt.wantMiles)
		}
	}
}

func TestAlignment(t *testing.T) {
	h := testHandler(&fakeRanker{result: alignment.Result{
		AlignmentStrength:   100,
		IsPositivelyAligned: true,
		MatchingValues:      []string{"v1"},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/alignment?user_id=u1&entity_id=b1", nil)
	rec := httptest.NewRecorder()
	h.Alignment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result alignment.Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !result.IsPositivelyAligned || result.AlignmentStrength != 100 {
		t.Errorf("result = %+v, want aligned with strength 100", result)
	}
}

func TestAlignmentRequiresIDs(t *testing.T) {
	h := testHandler(&fakeRanker{})
	for _, query := range []string{"", "?user_id=u1", "?entity_id=b1"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/alignment"+query, nil)
		rec := httptest.NewRecorder()
		h.Alignment(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestTopOverview(t *testing.T) {
	h := testHandler(&fakeRanker{items: []engine.RankedItem{{ID: "x", Score: 100}}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rankings/overview", nil)
	rec := httptest.NewRecorder()
	h.TopOverview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var overview service.Overview
	if err := json.NewDecoder(rec.Body).Decode(&overview); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(overview.Brands) != 1 || len(overview.Businesses) != 1 {
		t.Errorf("overview = %+v, want one of each", overview)
	}
}

func TestCacheEndpointsWithCacheDisabled(t *testing.T) {
	h := testHandler(&fakeRanker{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cache/stats", nil)
	rec := httptest.NewRecorder()
	h.CacheStats(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("stats status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", nil)
	rec = httptest.NewRecorder()
	h.CacheInvalidate(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("invalidate status = %d, want 503", rec.Code)
	}
}
