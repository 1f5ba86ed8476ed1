// Package listing implements the list controller shared by every pricing
// resource: fetch, normalize, filter, paginate and mutate with re-fetch.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/me/pricedesk/internal/envelope"
	"github.com/me/pricedesk/internal/notify"
	"github.com/me/pricedesk/internal/resource"
	"github.com/me/pricedesk/pkg/model"
)

var (
	// ErrBusy is returned when a mutation starts while another is submitting.
	ErrBusy = errors.New("another change is still being submitted")
	// ErrNoSelection is returned by Update when no item is selected for editing.
	ErrNoSelection = errors.New("no item selected")
	// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
	ErrNoPendingDelete = errors.New("no delete awaiting confirmation")
	// ErrStale is returned by a fetch whose response was superseded by a newer fetch.
	ErrStale = errors.New("fetch superseded by a newer request")
)

// Backend is the authenticated HTTP surface the controller talks to.
// *pricing.Client implements it.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
	Put(ctx context.Context, path string, body any) ([]byte, error)
	Delete(ctx context.Context, path string) ([]byte, error)
}

// Modal is the form currently open over the list.
type Modal string

const (
	ModalNone   Modal = ""
	ModalCreate Modal = "create"
	ModalEdit   Modal = "edit"
)

// View is a consistent snapshot of a controller's display state.
type View struct {
	Schema   resource.Schema
	Items    []model.PricingItem // current page window
	Filtered int                 // items matching the filter
	Filter   FilterState
	Page     PageState
	Loading  bool
	Loaded   bool
	Mutation model.MutationState
	Modal    Modal
	EditID   string
	Form     map[string]string
	Pending  string // id awaiting delete confirmation
}

// Controller owns the list lifecycle for one resource schema.
// It is safe for concurrent use.
type Controller struct {
	schema   resource.Schema
	backend  Backend
	notifier notify.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	items    []model.PricingItem
	loaded   bool
	loading  bool
	fresh    bool // set by a mutation's re-fetch, consumed by Show
	filter   FilterState
	page     PageState
	gen      uint64
	cancel   context.CancelFunc
	mutation model.MutationState
	modal    Modal
	editID   string
	form     map[string]string
	pending  string
}

// New creates a controller for schema.
func New(schema resource.Schema, backend Backend, notifier notify.Notifier, logger *slog.Logger) *Controller {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	size := schema.PageSize
	if size <= 0 {
		size = resource.DefaultPageSize
	}
	return &Controller{
		schema:   schema,
		backend:  backend,
		notifier: notifier,
		logger:   logger.With("component", "listing", "resource", schema.Name),
		filter:   FilterState{Field: schema.FilterField},
		page:     PageState{Page: 1, PageSize: size, Computed: 1},
		mutation: model.MutationStateIdle,
	}
}

// Schema returns the controller's resource schema.
func (c *Controller) Schema() resource.Schema { return c.schema }

// Fetch reloads the collection from page 1.
func (c *Controller) Fetch(ctx context.Context) error {
	return c.fetch(ctx, 1)
}

// Load sets the filter and fetches the requested page in one round trip.
// The page is clamped once the collection is known.
func (c *Controller) Load(ctx context.Context, filterValue string, page int) error {
	c.mu.Lock()
	c.filter.Value = strings.TrimSpace(filterValue)
	c.mu.Unlock()
	return c.fetch(ctx, page)
}

// Show is Load for a render that follows a mutation. When the mutation's own
// re-fetch already holds filterValue and page, it is shown without another
// GET. Either way the next Show loads again.
func (c *Controller) Show(ctx context.Context, filterValue string, page int) error {
	if page < 1 {
		page = 1
	}
	c.mu.Lock()
	reuse := c.fresh && c.loaded &&
		c.filter.Value == strings.TrimSpace(filterValue) && c.page.Page == page
	c.fresh = false
	c.mu.Unlock()
	if reuse {
		c.logger.Debug("showing collection loaded by mutation", "page", page)
		return nil
	}
	return c.Load(ctx, filterValue, page)
}

// Refresh re-fetches keeping the current page.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	page := c.page.Page
	c.mu.Unlock()
	return c.fetch(ctx, page)
}

// fetch issues the GET for page, superseding any fetch still in flight.
// A superseded fetch returns ErrStale and leaves state untouched.
func (c *Controller) fetch(ctx context.Context, page int) error {
	return c.fetchPage(ctx, page, false)
}

// fetchPage is fetch; fresh marks a successful result as reusable by Show.
func (c *Controller) fetchPage(ctx context.Context, page int, fresh bool) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	c.fresh = false
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	query := c.queryLocked(page)
	c.mu.Unlock()
	defer cancel()

	c.logger.Debug("fetching collection", "page", page, "query", query.Encode())
	body, err := c.backend.Get(ctx, c.schema.Path, query)
	var res envelope.Result
	if err == nil {
		res, err = envelope.Parse(body)
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("dropping superseded response", "gen", gen)
		return ErrStale
	}
	c.loading = false
	c.cancel = nil
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("fetch failed", "error", err)
		notify.Report(c.notifier, err)
		return err
	}
	c.items = res.Items
	c.loaded = true
	c.fresh = fresh
	c.page.ServerTotal = 0
	if c.schema.Paging == model.PagingServer {
		c.page.ServerTotal = res.TotalPages
		if c.page.ServerTotal == 0 && res.TotalItems > 0 {
			c.page.ServerTotal = TotalPages(res.TotalItems, c.page.PageSize)
		}
		if c.page.ServerTotal == 0 {
			c.page.ServerTotal = page
		}
	}
	c.page.Page = page
	c.recomputeLocked()
	c.logger.Debug("collection loaded", "items", len(res.Items), "source", res.Source,
		"page", c.page.Page, "total_pages", c.page.TotalPages())
	c.mu.Unlock()
	return nil
}

func (c *Controller) queryLocked(page int) url.Values {
	if c.schema.Paging != model.PagingServer {
		return nil
	}
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(c.page.PageSize)},
	}
}

// recomputeLocked derives the client-side total and clamps the page.
func (c *Controller) recomputeLocked() {
	c.page.Computed = TotalPages(len(Filter(c.items, c.filter)), c.page.PageSize)
	c.page = c.page.Clamp()
}

// SetFilter changes the filter value and resets to page 1. In server-side
// mode this re-fetches page 1; otherwise the loaded collection is re-sliced.
func (c *Controller) SetFilter(ctx context.Context, value string) error {
	c.mu.Lock()
	c.filter.Value = strings.TrimSpace(value)
	server := c.schema.Paging == model.PagingServer
	if !server {
		c.page.Page = 1
		c.recomputeLocked()
	}
	c.mu.Unlock()
	if server {
		return c.fetch(ctx, 1)
	}
	return nil
}

// SetPage moves to page, clamped to the known range. In server-side mode
// the page is fetched.
func (c *Controller) SetPage(ctx context.Context, page int) error {
	c.mu.Lock()
	page = ClampPage(page, c.page.TotalPages())
	server := c.schema.Paging == model.PagingServer
	if !server {
		c.page.Page = page
	}
	c.mu.Unlock()
	if server {
		return c.fetch(ctx, page)
	}
	return nil
}

// Next moves one page forward unless already on the last page.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	p := c.page
	c.mu.Unlock()
	if !p.HasNext() {
		return nil
	}
	return c.SetPage(ctx, p.Page+1)
}

// Prev moves one page back unless already on the first page.
func (c *Controller) Prev(ctx context.Context) error {
	c.mu.Lock()
	p := c.page
	c.mu.Unlock()
	if !p.HasPrev() {
		return nil
	}
	return c.SetPage(ctx, p.Page-1)
}

// View returns a snapshot of the display state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	filtered := Filter(c.items, c.filter)
	window := filtered
	if c.schema.Paging != model.PagingServer {
		window = Window(filtered, c.page.Page, c.page.PageSize)
	}
	form := make(map[string]string, len(c.form))
	for k, v := range c.form {
		form[k] = v
	}
	return View{
		Schema:   c.schema,
		Items:    append([]model.PricingItem(nil), window...),
		Filtered: len(filtered),
		Filter:   c.filter,
		Page:     c.page,
		Loading:  c.loading,
		Loaded:   c.loaded,
		Mutation: c.mutation,
		Modal:    c.modal,
		EditID:   c.editID,
		Form:     form,
		Pending:  c.pending,
	}
}

// Collect returns every loaded item matching the filter, across pages in
// client-side mode.
func (c *Controller) Collect() []model.PricingItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.PricingItem(nil), Filter(c.items, c.filter)...)
}

// LoadAll loads every item matching filterValue, walking all pages in
// server-side mode. The controller is left on the last page fetched.
func (c *Controller) LoadAll(ctx context.Context, filterValue string) ([]model.PricingItem, error) {
	if err := c.Load(ctx, filterValue, 1); err != nil {
		return nil, err
	}
	items := c.Collect()
	if c.schema.Paging != model.PagingServer {
		return items, nil
	}
	c.mu.Lock()
	total := c.page.TotalPages()
	c.mu.Unlock()
	for page := 2; page <= total; page++ {
		if err := c.Load(ctx, filterValue, page); err != nil {
			return nil, err
		}
		items = append(items, c.Collect()...)
	}
	return items, nil
}

// Find returns the loaded item with id.
func (c *Controller) Find(id string) (model.PricingItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findLocked(id)
}

func (c *Controller) findLocked(id string) (model.PricingItem, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return model.PricingItem{}, false
}

// OpenCreate opens an empty create form.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = ModalCreate
	c.editID = ""
	c.form = map[string]string{}
}

// OpenEdit selects id for editing, prefilling the form from the loaded item.
func (c *Controller) OpenEdit(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNoSelection
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = ModalEdit
	c.editID = id
	c.form = map[string]string{}
	if it, ok := c.findLocked(id); ok {
		c.form = c.schema.FormValues(it)
	}
	return nil
}

// CloseModal dismisses the open form and its state.
func (c *Controller) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeModalLocked()
}

func (c *Controller) closeModalLocked() {
	c.modal = ModalNone
	c.editID = ""
	c.form = nil
}

// Create validates values, POSTs them and re-fetches on success. Nothing is
// sent when validation fails.
func (c *Controller) Create(ctx context.Context, values map[string]string) error {
	if err := c.begin(values); err != nil {
		return err
	}
	payload, err := c.payload(values)
	if err == nil {
		_, err = c.backend.Post(ctx, c.schema.Path, payload)
	}
	if err := c.finish(err, model.MutationCreate); err != nil {
		return err
	}
	notify.Success(c.notifier, "%s created", c.singular())
	c.refetch(ctx)
	return nil
}

// Update validates values and PUTs them to the selected item. The item is
// the one selected by OpenEdit.
func (c *Controller) Update(ctx context.Context, values map[string]string) error {
	c.mu.Lock()
	id := c.editID
	c.mu.Unlock()
	return c.UpdateItem(ctx, id, values)
}

// UpdateItem is Update with an explicit target id.
func (c *Controller) UpdateItem(ctx context.Context, id string, values map[string]string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		notify.Report(c.notifier, ErrNoSelection)
		return ErrNoSelection
	}
	if err := c.begin(values); err != nil {
		return err
	}
	payload, err := c.payload(values)
	if err == nil {
		_, err = c.backend.Put(ctx, c.schema.ItemPath(id), payload)
	}
	if err := c.finish(err, model.MutationUpdate); err != nil {
		return err
	}
	notify.Success(c.notifier, "%s %s updated", c.singular(), id)
	c.refetch(ctx)
	return nil
}

// RequestDelete arms the inline confirmation for id. Nothing is sent.
func (c *Controller) RequestDelete(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNoSelection
	}
	c.mu.Lock()
	c.pending = id
	c.mu.Unlock()
	return nil
}

// CancelDelete dismisses the pending confirmation.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.pending = ""
	c.mu.Unlock()
}

// ConfirmDelete issues exactly one DELETE for the pending item, then one
// re-fetch. When the deleted item was alone on a page past the first, the
// list steps back a page.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.pending
	if id == "" {
		c.mu.Unlock()
		return ErrNoPendingDelete
	}
	if c.mutation == model.MutationStateSubmitting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.transitionLocked(model.MutationStateSubmitting)
	c.pending = ""
	page := c.page.Page
	onPage := c.windowLenLocked()
	c.mu.Unlock()

	_, err := c.backend.Delete(ctx, c.schema.ItemPath(id))
	if err := c.finish(err, model.MutationDelete); err != nil {
		return err
	}
	notify.Success(c.notifier, "%s %s deleted", c.singular(), id)

	if onPage <= 1 && page > 1 {
		page--
	}
	c.refetchPage(ctx, page)
	return nil
}

func (c *Controller) windowLenLocked() int {
	filtered := Filter(c.items, c.filter)
	if c.schema.Paging == model.PagingServer {
		return len(filtered)
	}
	return len(Window(filtered, c.page.Page, c.page.PageSize))
}

// begin moves the mutation to Submitting and records the form values.
func (c *Controller) begin(values map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mutation == model.MutationStateSubmitting {
		return ErrBusy
	}
	c.transitionLocked(model.MutationStateSubmitting)
	c.form = make(map[string]string, len(values))
	for k, v := range values {
		c.form[k] = v
	}
	return nil
}

// payload validates locally; a failure means no request is sent.
func (c *Controller) payload(values map[string]string) (map[string]any, error) {
	if verr := c.schema.Validate(values); verr != nil {
		return nil, verr
	}
	return c.schema.Payload(values)
}

// finish settles a mutation: on error the form stays open and the error is
// reported; on success the form is cleared and the modal closed. Either way
// the state returns to Idle.
func (c *Controller) finish(err error, kind model.MutationKind) error {
	c.mu.Lock()
	if err != nil {
		c.transitionLocked(model.MutationStateFailure)
		c.transitionLocked(model.MutationStateIdle)
		c.mu.Unlock()
		c.logger.Info("mutation failed", "kind", kind, "error", err)
		notify.Report(c.notifier, err)
		return err
	}
	c.transitionLocked(model.MutationStateSuccess)
	c.closeModalLocked()
	c.transitionLocked(model.MutationStateIdle)
	c.mu.Unlock()
	c.logger.Info("mutation succeeded", "kind", kind)
	return nil
}

func (c *Controller) transitionLocked(next model.MutationState) {
	if !c.mutation.CanTransitionTo(next) {
		c.logger.Error("invalid mutation transition", "from", c.mutation, "to", next)
	}
	c.mutation = next
}

// refetch reloads the current page after a successful create or update.
func (c *Controller) refetch(ctx context.Context) {
	c.mu.Lock()
	page := c.page.Page
	c.mu.Unlock()
	c.refetchPage(ctx, page)
}

// refetchPage is the single GET that follows a mutation. A successful one
// marks the state fresh for the next Show.
func (c *Controller) refetchPage(ctx context.Context, page int) {
	if err := c.fetchPage(ctx, page, true); err != nil && !errors.Is(err, ErrStale) {
		c.logger.Warn("re-fetch after mutation failed", "error", err)
	}
}

func (c *Controller) singular() string {
	t := strings.TrimSuffix(c.schema.Title, "s")
	if t == "" {
		return fmt.Sprintf("%s item", c.schema.Name)
	}
	return t
}
