package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pbaille/grocer/assets"
	"github.com/pbaille/grocer/internal/catalog"
	"github.com/pbaille/grocer/internal/command"
	"github.com/pbaille/grocer/internal/domain"
	"github.com/pbaille/grocer/internal/history"
	"github.com/pbaille/grocer/internal/list"
	"github.com/pbaille/grocer/internal/parser"
	"github.com/pbaille/grocer/internal/pkg/logger"
	"github.com/pbaille/grocer/internal/suggest"
)

// newTestHandler wires real components with an unreachable parse service,
// so /parse and /command always exercise the local fallback.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	log := logger.New(false)

	cat, err := catalog.New(assets.DefaultCatalogYAML)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	subs, err := suggest.LoadSubstitutes(assets.DefaultSubstitutesYAML)
	if err != nil {
		t.Fatalf("substitutes: %v", err)
	}

	tracker := history.New()
	state := list.New(tracker)
	engine := &suggest.Engine{History: tracker, Catalog: cat, List: state, Substitutes: subs, Log: log}
	resolver := parser.NewResolver(parser.NewClient("http://127.0.0.1:1/parse", 500*time.Millisecond), log)
	dispatcher := &command.Dispatcher{List: state, Catalog: cat, Suggest: engine, Log: log}

	server := New(Deps{
		List:       state,
		Suggest:    engine,
		Resolver:   resolver,
		Dispatcher: dispatcher,
		Logger:     log,
	}, ":0")

	return server.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestAddThenListMergesQuantities(t *testing.T) {
	h := newTestHandler(t)

	if w := doJSON(t, h, "POST", "/list/add", `{"item":"Milk","quantity":2,"category":"dairy"}`); w.Code != http.StatusOK {
		t.Fatalf("add status = %d: %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, h, "POST", "/list/add", `{"item":"milk","quantity":3}`); w.Code != http.StatusOK {
		t.Fatalf("add status = %d: %s", w.Code, w.Body.String())
	}

	w := doJSON(t, h, "GET", "/list", "")
	var resp struct {
		Items []domain.ListEntry `json:"items"`
	}
	decode(t, w, &resp)

	if len(resp.Items) != 1 {
		t.Fatalf("items = %v, want one merged entry", resp.Items)
	}
	if resp.Items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", resp.Items[0].Quantity)
	}
}

func TestAddRequiresItem(t *testing.T) {
	h := newTestHandler(t)

	w := doJSON(t, h, "POST", "/list/add", `{"quantity":2}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAddCoercesQuantity(t *testing.T) {
	h := newTestHandler(t)

	doJSON(t, h, "POST", "/list/add", `{"item":"eggs","quantity":"4"}`)
	doJSON(t, h, "POST", "/list/add", `{"item":"rice","quantity":"plenty"}`)

	w := doJSON(t, h, "GET", "/list", "")
	var resp struct {
		Items []domain.ListEntry `json:"items"`
	}
	decode(t, w, &resp)

	if resp.Items[0].Quantity != 4 {
		t.Fatalf("eggs quantity = %d, want 4", resp.Items[0].Quantity)
	}
	if resp.Items[1].Quantity != 1 {
		t.Fatalf("rice quantity = %d, want 1", resp.Items[1].Quantity)
	}
}

func TestRemoveRequiresItem(t *testing.T) {
	h := newTestHandler(t)

	w := doJSON(t, h, "POST", "/list/remove", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRemoveAbsentItemSucceeds(t *testing.T) {
	h := newTestHandler(t)

	w := doJSON(t, h, "POST", "/list/remove", `{"item":"caviar"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestHandler(t)

	w := doJSON(t, h, "POST", "/search", `{"query":"apples"}`)
	var resp struct {
		Results []domain.CatalogEntry `json:"results"`
	}
	decode(t, w, &resp)

	if len(resp.Results) != 1 || resp.Results[0].Name != "Apples 1kg (Organic)" {
		t.Fatalf("results = %v", resp.Results)
	}
}

func TestSearchBrandOnly(t *testing.T) {
	h := newTestHandler(t)

	w := doJSON(t, h, "POST", "/search", `{"brand":"DairyPure"}`)
	var resp struct {
		Results []domain.CatalogEntry `json:"results"`
	}
	decode(t, w, &resp)

	if len(resp.Results) != 2 {
		t.Fatalf("results = %v, want 2 DairyPure products", resp.Results)
	}
}

func TestSuggestAfterActivity(t *testing.T) {
	h := newTestHandler(t)

	doJSON(t, h, "POST", "/list/add", `{"item":"milk"}`)
	doJSON(t, h, "POST", "/list/add", `{"item":"milk"}`)
	doJSON(t, h, "POST", "/list/add", `{"item":"bread"}`)

	w := doJSON(t, h, "GET", "/suggest", "")
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	decode(t, w, &resp)

	want := []string{
		"You often buy milk. Want to add it?",
		"You often buy bread. Want to add it?",
		"It's a good season for Apples 1kg (Organic).",
		"It's a good season for Bananas 1kg.",
		"If bread is unavailable, try brown bread.",
	}
	if len(resp.Suggestions) != len(want) {
		t.Fatalf("suggestions = %v\nwant %v", resp.Suggestions, want)
	}
	for i := range want {
		if resp.Suggestions[i] != want[i] {
			t.Fatalf("suggestion[%d] = %q, want %q", i, resp.Suggestions[i], want[i])
		}
	}
}

func TestParseFallsBackWhenServiceIsDown(t *testing.T) {
	h := newTestHandler(t)

	w := doJSON(t, h, "POST", "/parse", `{"text":"remove milk"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, upstream failure must not surface", w.Code)
	}

	var resp map[string]interface{}
	decode(t, w, &resp)

	// Wire field is "intent", not "kind".
	if resp["intent"] != "remove_item" {
		t.Fatalf("intent = %v", resp["intent"])
	}
	if resp["item"] != "milk" {
		t.Fatalf("item = %v", resp["item"])
	}
	if resp["quantity"] != float64(1) {
		t.Fatalf("quantity = %v", resp["quantity"])
	}
	if resp["speech"] != "Okay, remove_item milk" {
		t.Fatalf("speech = %v", resp["speech"])
	}
}

func TestCommandRunsFullPipeline(t *testing.T) {
	h := newTestHandler(t)

	w := doJSON(t, h, "POST", "/command", `{"text":"please add milk"}`)
	var resp struct {
		Intent      string   `json:"intent"`
		Item        string   `json:"item"`
		Suggestions []string `json:"suggestions"`
	}
	decode(t, w, &resp)

	if resp.Intent != "add_item" || resp.Item != "milk" {
		t.Fatalf("resolved %s %q", resp.Intent, resp.Item)
	}
	if len(resp.Suggestions) == 0 {
		t.Fatal("expected recomputed suggestions after the add")
	}

	lw := doJSON(t, h, "GET", "/list", "")
	var listResp struct {
		Items []domain.ListEntry `json:"items"`
	}
	decode(t, lw, &listResp)
	if len(listResp.Items) != 1 || listResp.Items[0].Item != "milk" {
		t.Fatalf("items = %v", listResp.Items)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	w := doJSON(t, h, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
