package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/me/pricedesk/internal/notify"
	"github.com/me/pricedesk/internal/resource"
	"github.com/me/pricedesk/pkg/model"
)

// fakeAPI is an in-memory pricing collection behind the Backend interface.
type fakeAPI struct {
	mu     sync.Mutex
	items  []map[string]any
	nextID int
	calls  []string
	server bool

	// getHook runs before a GET is answered; n counts GETs from 1.
	getHook  func(ctx context.Context, n int) error
	postHook func(ctx context.Context) error
	gets     int
}

func newFakeAPI(n int, server bool) *fakeAPI {
	f := &fakeAPI{server: server}
	for i := 0; i < n; i++ {
		f.add(map[string]any{
			"network_id": []string{"1", "2"}[i%2],
			"buy_price":  fmt.Sprintf("%d.00", 100+i),
			"percentage": "2",
		})
	}
	return f
}

func (f *fakeAPI) add(m map[string]any) {
	f.nextID++
	m["id"] = f.nextID
	f.items = append(f.items, m)
}

func (f *fakeAPI) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) count(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if len(c) > len(method) && c[:len(method)+1] == method+" " {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Get(ctx context.Context, p string, query url.Values) ([]byte, error) {
	f.mu.Lock()
	f.record("GET " + p + "?" + query.Encode())
	f.gets++
	n := f.gets
	hook := f.getHook
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, n); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.server {
		return json.Marshal(map[string]any{"results": map[string]any{"Data": f.items}})
	}
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	return json.Marshal(map[string]any{"results": map[string]any{"data": map[string]any{
		"data":      Window(f.items, page, limit),
		"last_page": TotalPages(len(f.items), limit),
		"total":     len(f.items),
	}}})
}

func (f *fakeAPI) Post(ctx context.Context, p string, body any) ([]byte, error) {
	f.mu.Lock()
	f.record("POST " + p)
	hook := f.postHook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m := map[string]any{}
	for k, v := range body.(map[string]any) {
		m[k] = v
	}
	f.add(m)
	return []byte(`{"message":"created"}`), nil
}

func (f *fakeAPI) Put(ctx context.Context, p string, body any) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PUT " + p)
	return []byte(`{}`), nil
}

func (f *fakeAPI) Delete(ctx context.Context, p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DELETE " + p)
	id := path.Base(p)
	for i, it := range f.items {
		if fmt.Sprint(it["id"]) == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return []byte(`{}`), nil
		}
	}
	return nil, &model.ServerError{Status: 404, Message: "not found"}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(t *testing.T, api *fakeAPI, paging model.Paging) (*Controller, *notify.Recorder) {
	t.Helper()
	schema := resource.Airtime
	schema.Paging = paging
	rec := &notify.Recorder{}
	return New(schema, api, rec, testLogger()), rec
}

func ids(items []model.PricingItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestController_TwentyThreeItems(t *testing.T) {
	api := newFakeAPI(23, false)
	c, _ := newController(t, api, model.PagingClient)
	ctx := context.Background()

	if err := c.Fetch(ctx); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	v := c.View()
	if v.Page.TotalPages() != 3 {
		t.Errorf("TotalPages = %d, want 3", v.Page.TotalPages())
	}
	if len(v.Items) != 10 || v.Page.HasPrev() || !v.Page.HasNext() {
		t.Errorf("page 1: %d items, prev=%v next=%v", len(v.Items), v.Page.HasPrev(), v.Page.HasNext())
	}

	if err := c.SetPage(ctx, 3); err != nil {
		t.Fatal(err)
	}
	v = c.View()
	if len(v.Items) != 3 {
		t.Errorf("page 3 window has %d items, want 3", len(v.Items))
	}
	if v.Page.HasNext() {
		t.Error("Next should be disabled on the last page")
	}
	if got := ids(v.Items); got[0] != "21" || got[2] != "23" {
		t.Errorf("page 3 ids = %v", got)
	}
	if api.count("GET") != 1 {
		t.Errorf("client paging should not re-fetch on page change, calls = %v", api.Calls())
	}
}

func TestController_SetPageClamps(t *testing.T) {
	api := newFakeAPI(15, false)
	c, _ := newController(t, api, model.PagingClient)
	ctx := context.Background()
	c.Fetch(ctx)

	c.SetPage(ctx, 9)
	if p := c.View().Page.Page; p != 2 {
		t.Errorf("page = %d, want clamped to 2", p)
	}
	c.SetPage(ctx, -4)
	if p := c.View().Page.Page; p != 1 {
		t.Errorf("page = %d, want clamped to 1", p)
	}
	c.Prev(ctx)
	if p := c.View().Page.Page; p != 1 {
		t.Errorf("Prev on page 1 moved to %d", p)
	}
	c.Next(ctx)
	c.Next(ctx)
	if p := c.View().Page.Page; p != 2 {
		t.Errorf("Next past end moved to %d", p)
	}
}

func TestController_FilterResetsPage(t *testing.T) {
	api := newFakeAPI(23, false)
	c, _ := newController(t, api, model.PagingClient)
	ctx := context.Background()
	c.Fetch(ctx)
	c.SetPage(ctx, 3)

	if err := c.SetFilter(ctx, " 2 "); err != nil {
		t.Fatal(err)
	}
	v := c.View()
	if v.Page.Page != 1 {
		t.Errorf("page = %d after filter change, want 1", v.Page.Page)
	}
	if v.Filtered != 11 {
		t.Errorf("filtered = %d, want 11", v.Filtered)
	}
	if v.Page.TotalPages() != 2 {
		t.Errorf("TotalPages = %d, want 2", v.Page.TotalPages())
	}
	for _, it := range c.Collect() {
		if it.String("network_id") != "2" {
			t.Errorf("item %s does not match the filter", it.ID)
		}
	}

	c.SetFilter(ctx, "")
	if got := c.View().Filtered; got != 23 {
		t.Errorf("cleared filter shows %d items, want 23", got)
	}
}

func TestController_ServerPaging(t *testing.T) {
	api := newFakeAPI(23, true)
	c, _ := newController(t, api, model.PagingServer)
	ctx := context.Background()

	if err := c.Fetch(ctx); err != nil {
		t.Fatal(err)
	}
	if err := c.SetPage(ctx, 3); err != nil {
		t.Fatal(err)
	}
	v := c.View()
	if v.Page.TotalPages() != 3 || v.Page.Page != 3 || len(v.Items) != 3 {
		t.Errorf("page=%d total=%d items=%d", v.Page.Page, v.Page.TotalPages(), len(v.Items))
	}
	calls := api.Calls()
	if len(calls) != 2 || calls[1] != "GET /admin/pricings/airtime?limit=10&page=3" {
		t.Errorf("calls = %v", calls)
	}
}

func TestController_CreateWithEmptyRequiredFieldSendsNothing(t *testing.T) {
	api := newFakeAPI(3, false)
	c, rec := newController(t, api, model.PagingClient)
	c.OpenCreate()

	err := c.Create(context.Background(), map[string]string{
		"network_id": "1",
		"buy_price":  "",
		"percentage": "2",
	})
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if n := len(api.Calls()); n != 0 {
		t.Errorf("%d requests sent, want 0: %v", n, api.Calls())
	}
	notes := rec.All()
	if len(notes) != 1 || notes[0].Level != model.LevelError || notes[0].Field != "buy_price" {
		t.Errorf("notifications = %+v", notes)
	}
	v := c.View()
	if v.Modal != ModalCreate {
		t.Error("modal should stay open after a failed create")
	}
	if v.Form["percentage"] != "2" {
		t.Errorf("form values lost: %v", v.Form)
	}
	if v.Mutation != model.MutationStateIdle {
		t.Errorf("mutation = %s, want IDLE", v.Mutation)
	}
}

func TestController_CreateSuccess(t *testing.T) {
	api := newFakeAPI(3, false)
	c, rec := newController(t, api, model.PagingClient)
	ctx := context.Background()
	c.Fetch(ctx)
	c.OpenCreate()

	err := c.Create(ctx, map[string]string{"network_id": "3", "buy_price": "98.5", "percentage": "1.5", "is_active": "on"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	calls := api.Calls()
	want := []string{"GET /admin/pricings/airtime?", "POST /admin/pricings/airtime", "GET /admin/pricings/airtime?"}
	if fmt.Sprint(calls) != fmt.Sprint(want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
	v := c.View()
	if v.Modal != ModalNone || len(v.Form) != 0 {
		t.Errorf("modal=%q form=%v, want closed and cleared", v.Modal, v.Form)
	}
	if v.Filtered != 4 {
		t.Errorf("collection has %d items after re-fetch, want 4", v.Filtered)
	}
	if notes := rec.All(); len(notes) != 1 || notes[0].Level != model.LevelSuccess {
		t.Errorf("notifications = %+v", notes)
	}
}

func TestController_UpdateRequiresSelection(t *testing.T) {
	api := newFakeAPI(3, false)
	c, _ := newController(t, api, model.PagingClient)
	if err := c.Update(context.Background(), map[string]string{}); !errors.Is(err, ErrNoSelection) {
		t.Errorf("err = %v, want ErrNoSelection", err)
	}
	if len(api.Calls()) != 0 {
		t.Errorf("calls = %v", api.Calls())
	}
}

func TestController_UpdateSelected(t *testing.T) {
	api := newFakeAPI(3, false)
	c, _ := newController(t, api, model.PagingClient)
	ctx := context.Background()
	c.Fetch(ctx)

	if err := c.OpenEdit("2"); err != nil {
		t.Fatal(err)
	}
	v := c.View()
	if v.Modal != ModalEdit || v.Form["buy_price"] != "101.00" {
		t.Fatalf("edit form = %q %v", v.Modal, v.Form)
	}
	form := v.Form
	form["buy_price"] = "120"
	if err := c.Update(ctx, form); err != nil {
		t.Fatalf("Update: %v", err)
	}
	calls := api.Calls()
	if calls[1] != "PUT /admin/pricings/airtime/2" || len(calls) != 3 {
		t.Errorf("calls = %v", calls)
	}
	if c.View().Modal != ModalNone {
		t.Error("modal should close after update")
	}
}

func TestController_DeleteIssuesOneDeleteAndOneRefetch(t *testing.T) {
	api := newFakeAPI(5, false)
	c, _ := newController(t, api, model.PagingClient)
	ctx := context.Background()
	c.Fetch(ctx)

	if err := c.RequestDelete("4"); err != nil {
		t.Fatal(err)
	}
	if c.View().Pending != "4" || len(api.Calls()) != 1 {
		t.Fatal("RequestDelete must only arm the confirmation")
	}
	if err := c.ConfirmDelete(ctx); err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	calls := api.Calls()[1:]
	want := []string{"DELETE /admin/pricings/airtime/4", "GET /admin/pricings/airtime?"}
	if fmt.Sprint(calls) != fmt.Sprint(want) {
		t.Errorf("calls after confirm = %v, want %v", calls, want)
	}
	if c.View().Pending != "" {
		t.Error("pending delete should be cleared")
	}
	if err := c.ConfirmDelete(ctx); !errors.Is(err, ErrNoPendingDelete) {
		t.Errorf("second confirm err = %v", err)
	}
}

func TestController_CancelDelete(t *testing.T) {
	api := newFakeAPI(5, false)
	c, _ := newController(t, api, model.PagingClient)
	c.RequestDelete("1")
	c.CancelDelete()
	if err := c.ConfirmDelete(context.Background()); !errors.Is(err, ErrNoPendingDelete) {
		t.Errorf("err = %v", err)
	}
	if len(api.Calls()) != 0 {
		t.Errorf("calls = %v", api.Calls())
	}
}

func TestController_DeleteLastItemStepsBack(t *testing.T) {
	for _, paging := range []model.Paging{model.PagingClient, model.PagingServer} {
		t.Run(string(paging), func(t *testing.T) {
			api := newFakeAPI(21, paging == model.PagingServer)
			c, _ := newController(t, api, paging)
			ctx := context.Background()
			c.Fetch(ctx)
			c.SetPage(ctx, 3)
			if v := c.View(); len(v.Items) != 1 || v.Page.TotalPages() != 3 {
				t.Fatalf("setup: page 3 has %d items of %d pages", len(v.Items), v.Page.TotalPages())
			}

			c.RequestDelete("21")
			if err := c.ConfirmDelete(ctx); err != nil {
				t.Fatal(err)
			}
			v := c.View()
			if v.Page.TotalPages() != 2 || v.Page.Page != 2 {
				t.Errorf("after delete page=%d total=%d, want 2/2", v.Page.Page, v.Page.TotalPages())
			}
			if len(v.Items) != 10 {
				t.Errorf("window has %d items, want 10", len(v.Items))
			}
			if n := api.count("DELETE"); n != 1 {
				t.Errorf("DELETE issued %d times", n)
			}
		})
	}
}

func TestController_DeleteOnlyItem(t *testing.T) {
	api := newFakeAPI(1, false)
	c, _ := newController(t, api, model.PagingClient)
	ctx := context.Background()
	c.Fetch(ctx)
	c.RequestDelete("1")
	c.ConfirmDelete(ctx)
	v := c.View()
	if v.Page.Page != 1 || v.Page.TotalPages() != 1 || len(v.Items) != 0 {
		t.Errorf("page=%d total=%d items=%d", v.Page.Page, v.Page.TotalPages(), len(v.Items))
	}
}

func TestController_FetchErrorKeepsPreviousState(t *testing.T) {
	api := newFakeAPI(4, false)
	c, rec := newController(t, api, model.PagingClient)
	ctx := context.Background()
	c.Fetch(ctx)

	api.getHook = func(context.Context, int) error {
		return &model.ServerError{Status: 502, Message: "bad gateway"}
	}
	err := c.Fetch(ctx)
	var serr *model.ServerError
	if !errors.As(err, &serr) {
		t.Fatalf("err = %v", err)
	}
	v := c.View()
	if v.Loading {
		t.Error("loading flag should be cleared")
	}
	if v.Filtered != 4 {
		t.Errorf("previous collection lost: %d items", v.Filtered)
	}
	notes := rec.All()
	if len(notes) != 1 || notes[0].Message != "bad gateway" {
		t.Errorf("notifications = %+v", notes)
	}
}

func TestController_SupersededFetchIsDropped(t *testing.T) {
	api := newFakeAPI(3, false)
	c, rec := newController(t, api, model.PagingClient)

	entered := make(chan struct{})
	api.getHook = func(ctx context.Context, n int) error {
		if n != 1 {
			return nil
		}
		close(entered)
		<-ctx.Done()
		return &model.TransportError{Method: "GET", Path: "/admin/pricings/airtime", Err: ctx.Err()}
	}

	done := make(chan error, 1)
	go func() { done <- c.Fetch(context.Background()) }()
	<-entered

	if err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrStale) {
			t.Errorf("first fetch err = %v, want ErrStale", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first fetch was not cancelled")
	}
	if v := c.View(); v.Filtered != 3 || v.Loading {
		t.Errorf("view = %d items loading=%v", v.Filtered, v.Loading)
	}
	if len(rec.All()) != 0 {
		t.Errorf("superseded fetch notified: %+v", rec.All())
	}
}

func TestController_ConcurrentMutationIsBusy(t *testing.T) {
	api := newFakeAPI(0, false)
	c, _ := newController(t, api, model.PagingClient)

	entered := make(chan struct{})
	release := make(chan struct{})
	api.postHook = func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	}
	values := map[string]string{"network_id": "1", "buy_price": "1", "percentage": "1"}

	done := make(chan error, 1)
	go func() { done <- c.Create(context.Background(), values) }()
	<-entered

	if v := c.View(); v.Mutation != model.MutationStateSubmitting {
		t.Errorf("mutation = %s, want SUBMITTING", v.Mutation)
	}
	if err := c.Create(context.Background(), values); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent create err = %v, want ErrBusy", err)
	}
	c.RequestDelete("1")
	if err := c.ConfirmDelete(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent delete err = %v, want ErrBusy", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first create: %v", err)
	}
	if v := c.View(); v.Mutation != model.MutationStateIdle {
		t.Errorf("mutation = %s, want IDLE", v.Mutation)
	}
}

func TestController_ServerValidationErrors(t *testing.T) {
	api := newFakeAPI(0, false)
	c, rec := newController(t, api, model.PagingClient)
	api.postHook = func(context.Context) error {
		verr := model.NewFieldValidationError("The given data was invalid.")
		verr.Add("network_id", "The selected network id is invalid.")
		verr.Add("buy_price", "The buy price must be at least 1.")
		return verr
	}
	err := c.Create(context.Background(), map[string]string{"network_id": "9", "buy_price": "0", "percentage": "1"})
	if err == nil {
		t.Fatal("expected error")
	}
	notes := rec.All()
	if len(notes) != 2 || notes[0].Field != "buy_price" || notes[1].Field != "network_id" {
		t.Errorf("notifications = %+v", notes)
	}
	if api.count("GET") != 0 {
		t.Error("failed create must not re-fetch")
	}
}

func TestController_LoadAll(t *testing.T) {
	tests := []struct {
		name     string
		paging   model.Paging
		wantGets int
	}{
		{"client", model.PagingClient, 1},
		{"server", model.PagingServer, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(23, tt.paging == model.PagingServer)
			c, _ := newController(t, api, tt.paging)

			items, err := c.LoadAll(context.Background(), "")
			if err != nil {
				t.Fatalf("LoadAll: %v", err)
			}
			if len(items) != 23 {
				t.Errorf("got %d items, want 23", len(items))
			}
			if n := api.count("GET"); n != tt.wantGets {
				t.Errorf("GET count = %d, want %d", n, tt.wantGets)
			}
		})
	}

	api := newFakeAPI(23, false)
	c, _ := newController(t, api, model.PagingClient)
	items, err := c.LoadAll(context.Background(), "2")
	if err != nil {
		t.Fatalf("LoadAll filtered: %v", err)
	}
	if len(items) != 11 {
		t.Errorf("filtered items = %d, want 11", len(items))
	}
}

func TestController_DeleteEscapesID(t *testing.T) {
	api := newFakeAPI(3, false)
	c, _ := newController(t, api, model.PagingClient)
	ctx := context.Background()
	c.Fetch(ctx)

	if err := c.RequestDelete("../cable/7"); err != nil {
		t.Fatal(err)
	}
	// The fake answers 404 for an unknown id; only the request path matters.
	c.ConfirmDelete(ctx)

	var deletes []string
	for _, call := range api.Calls() {
		if len(call) > 7 && call[:7] == "DELETE " {
			deletes = append(deletes, call)
		}
	}
	want := []string{"DELETE /admin/pricings/airtime/..%2Fcable%2F7"}
	if fmt.Sprint(deletes) != fmt.Sprint(want) {
		t.Errorf("deletes = %v, want %v", deletes, want)
	}
}

func TestController_ShowReusesMutationRefetch(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		page     int
		wantGets int
	}{
		{"same filter and page", "", 1, 0},
		{"page zero means first page", "", 0, 0},
		{"other page", "", 2, 1},
		{"other filter", "1", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(15, false)
			c, _ := newController(t, api, model.PagingClient)
			ctx := context.Background()
			c.Fetch(ctx)

			if err := c.RequestDelete("3"); err != nil {
				t.Fatal(err)
			}
			if err := c.ConfirmDelete(ctx); err != nil {
				t.Fatalf("ConfirmDelete: %v", err)
			}
			gets := api.count("GET")

			if err := c.Show(ctx, tt.filter, tt.page); err != nil {
				t.Fatalf("Show: %v", err)
			}
			if n := api.count("GET") - gets; n != tt.wantGets {
				t.Errorf("GETs = %d, want %d", n, tt.wantGets)
			}
			if _, ok := c.Find("3"); ok {
				t.Error("deleted item still loaded")
			}
		})
	}
}

func TestController_ShowReuseIsOneShot(t *testing.T) {
	api := newFakeAPI(5, false)
	c, _ := newController(t, api, model.PagingClient)
	ctx := context.Background()

	// Nothing mutated yet: Show loads.
	if err := c.Show(ctx, "", 1); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if n := api.count("GET"); n != 1 {
		t.Fatalf("GETs = %d, want 1", n)
	}

	c.OpenCreate()
	if err := c.Create(ctx, map[string]string{"network_id": "1", "buy_price": "90", "percentage": "2"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n := api.count("GET"); n != 2 {
		t.Fatalf("GETs after create = %d, want 2", n)
	}

	c.Show(ctx, "", 1)
	c.Show(ctx, "", 1)
	if n := api.count("GET"); n != 3 {
		t.Errorf("GETs = %d, want 3: one reuse, then a load", n)
	}
}

func TestController_FailedRefetchIsNotReused(t *testing.T) {
	api := newFakeAPI(5, false)
	c, _ := newController(t, api, model.PagingClient)
	ctx := context.Background()
	c.Fetch(ctx)

	api.getHook = func(ctx context.Context, n int) error {
		if n == 2 {
			return &model.ServerError{Status: 500, Message: "boom"}
		}
		return nil
	}
	c.RequestDelete("2")
	if err := c.ConfirmDelete(ctx); err != nil {
		t.Fatalf("ConfirmDelete: %v", err)
	}
	if err := c.Show(ctx, "", 1); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if n := api.count("GET"); n != 3 {
		t.Errorf("GETs = %d, want 3", n)
	}
	if _, ok := c.Find("2"); ok {
		t.Error("Show should have loaded the collection without the deleted item")
	}
}
