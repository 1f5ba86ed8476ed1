package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/pricedesk/internal/export"
	"github.com/me/pricedesk/internal/listing"
	"github.com/me/pricedesk/internal/notify"
	"github.com/me/pricedesk/internal/pricing"
	"github.com/me/pricedesk/internal/resource"
	"github.com/me/pricedesk/internal/session"
	"github.com/me/pricedesk/internal/store"
	"github.com/me/pricedesk/pkg/model"
)

// UI handles the web admin panel.
type UI struct {
	store     store.Store
	sessions  *SessionManager
	registry  *resource.Registry
	desks     *deskRegistry
	apiBase   string
	logger    *slog.Logger
	startTime time.Time
	secure    bool // Use secure cookies (HTTPS)
}

// Config holds UI configuration.
type Config struct {
	APIBaseURL string             // pricing API base URL
	Registry   *resource.Registry // nil uses the built-in schemas
	Secure     bool               // Use secure cookies for HTTPS
	SessionTTL time.Duration      // zero uses SessionDuration
	HTTPClient *http.Client       // nil uses a default client
}

// New creates a new UI handler.
func New(st store.Store, logger *slog.Logger, cfg Config) *UI {
	logger = logger.With("component", "ui")
	reg := cfg.Registry
	if reg == nil {
		reg, _ = resource.NewRegistry(nil)
	}
	return &UI{
		store:     st,
		sessions:  NewSessionManager(st, cfg.SessionTTL),
		registry:  reg,
		desks:     newDeskRegistry(st, cfg.APIBaseURL, cfg.HTTPClient, logger),
		apiBase:   cfg.APIBaseURL,
		logger:    logger,
		startTime: time.Now(),
		secure:    cfg.Secure,
	}
}

// HandleLogin renders the login page.
func (ui *UI) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if sess, _ := ui.sessions.GetSessionFromRequest(r); sess != nil && sess.HasToken() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := map[string]any{
		"Title": "Login - pricedesk",
		"Error": r.URL.Query().Get("error"),
	}
	ui.render(w, "login", data)
}

// HandleLoginPost exchanges the submitted credentials for a pricing API
// token and opens a browser session holding it.
func (ui *UI) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=Invalid+request", http.StatusSeeOther)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		http.Redirect(w, r, "/login?error=Email+and+password+required", http.StatusSeeOther)
		return
	}

	client := pricing.NewClient(ui.apiBase, nil, ui.logger)
	if ui.desks.httpClient != nil {
		client.HTTPClient = ui.desks.httpClient
	}
	token, err := client.Login(r.Context(), email, password)
	if err != nil {
		ui.logger.Warn("login failed", "email", email, "error", err)
		msg := "Invalid credentials"
		if !errors.Is(err, pricing.ErrInvalidCredentials) {
			msg = "Pricing service unavailable"
		}
		http.Redirect(w, r, "/login?error="+url.QueryEscape(msg), http.StatusSeeOther)
		return
	}

	sess, err := ui.sessions.CreateSession(r.Context(), email, token, session.TokenExpiry(token))
	if err != nil {
		ui.logger.Error("create session failed", "error", err)
		http.Redirect(w, r, "/login?error=Session+creation+failed", http.StatusSeeOther)
		return
	}
	SetSessionCookie(w, sess, ui.secure)

	ui.logger.Info("user logged in", "username", email, "session", sess.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session and redirects to login.
func (ui *UI) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, _ := ui.sessions.GetSessionFromRequest(r); sess != nil {
		_ = ui.sessions.DeleteSession(r.Context(), sess.ID)
		ui.desks.drop(sess.ID)
		ui.logger.Info("user logged out", "username", sess.Username, "session", sess.ID)
	}
	ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// resourceCard is one dashboard tile.
type resourceCard struct {
	Schema resource.Schema
	Items  int
	Pages  int
	Error  string
}

// HandleDashboard renders per-resource counts and recent activity.
func (ui *UI) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	d, err := ui.desks.get(sess)
	if err != nil {
		ui.renderError(w, r, "Failed to open session", err)
		return
	}

	var cards []resourceCard
	for _, schema := range ui.registry.Pricings() {
		// A private controller keeps the dashboard from moving the list pages.
		c := listing.New(schema, d.client, notify.Discard, ui.logger)
		card := resourceCard{Schema: schema}
		if err := c.Fetch(r.Context()); err != nil {
			if errors.Is(err, model.ErrSessionExpired) {
				ui.sessionExpired(w, r, sess)
				return
			}
			card.Error = "unavailable"
		} else {
			v := c.View()
			card.Items = v.Filtered
			card.Pages = v.Page.TotalPages()
		}
		cards = append(cards, card)
	}

	activity, err := ui.store.ListActivity(r.Context(), 10)
	if err != nil {
		ui.logger.Warn("list activity failed", "error", err)
	}

	data := map[string]any{
		"Title":    "Dashboard - pricedesk",
		"Cards":    cards,
		"Activity": activity,
		"Uptime":   time.Since(ui.startTime).Round(time.Second).String(),
	}
	ui.renderPage(w, r, "dashboard", data)
}

// --- Resource list handlers ---

// formField is a form input rendered in the create/edit modal.
type formField struct {
	resource.Field
	Value   string
	Checked bool
}

// tableRow is one rendered table row.
type tableRow struct {
	ID      string
	Cells   []string
	Pending bool
}

// HandleList renders the requested filter/page. After a mutation's redirect
// the controller's own re-fetch is shown as is.
func (ui *UI) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if err := c.Show(r.Context(), q.Get("filter"), page); err != nil {
		if ui.handleAPIError(w, r, sess, err) {
			return
		}
	}

	v := c.View()
	rows := make([]tableRow, 0, len(v.Items))
	for _, it := range v.Items {
		row := tableRow{ID: it.ID, Pending: it.ID == v.Pending}
		for _, col := range schema.Columns {
			row.Cells = append(row.Cells, schema.Cell(it, col.Field))
		}
		rows = append(rows, row)
	}

	var fields []formField
	for _, f := range schema.Fields {
		val := v.Form[f.Name]
		ff := formField{Field: f, Value: val}
		if f.Kind == resource.KindBool {
			ff.Checked, _ = model.ParseBool(val)
		}
		fields = append(fields, ff)
	}

	var filterOptions []string
	if f, ok := schema.Field(schema.FilterField); ok {
		filterOptions = f.Options
	}

	data := map[string]any{
		"Title":         schema.Title + " - pricedesk",
		"Schema":        schema,
		"View":          v,
		"Rows":          rows,
		"Fields":        fields,
		"BaseURL":       listURL(schema),
		"FormAction":    formAction(schema, v),
		"FilterOptions": filterOptions,
		"PrevURL":       pageLink(schema, v, v.Page.Page-1),
		"NextURL":       pageLink(schema, v, v.Page.Page+1),
		"CSVURL":        exportLink(schema, v, export.FormatCSV),
		"XLSXURL":       exportLink(schema, v, export.FormatXLSX),
	}
	ui.renderPage(w, r, "pricings/list", data)
}

// HandleOpenCreate opens the create modal.
func (ui *UI) HandleOpenCreate(w http.ResponseWriter, r *http.Request) {
	_, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}
	c.OpenCreate()
	ui.redirectList(w, r, schema, c)
}

// HandleOpenEdit opens the edit modal for an item.
func (ui *UI) HandleOpenEdit(w http.ResponseWriter, r *http.Request) {
	_, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}
	if err := c.OpenEdit(chi.URLParam(r, "id")); err != nil {
		ui.renderNotFound(w, r, "No item selected")
		return
	}
	ui.redirectList(w, r, schema, c)
}

// HandleCloseModal dismisses the open modal.
func (ui *UI) HandleCloseModal(w http.ResponseWriter, r *http.Request) {
	_, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}
	c.CloseModal()
	ui.redirectList(w, r, schema, c)
}

// HandleCreate submits the create form.
func (ui *UI) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}
	values, err := formValues(r, schema)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if err := c.Create(r.Context(), values); err != nil {
		if ui.handleAPIError(w, r, sess, err) {
			return
		}
	} else {
		ui.recordActivity(r.Context(), sess, model.MutationCreate, schema, "")
	}
	ui.redirectList(w, r, schema, c)
}

// HandleUpdate submits the edit form for an item.
func (ui *UI) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}
	values, err := formValues(r, schema)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	if err := c.UpdateItem(r.Context(), id, values); err != nil {
		if ui.handleAPIError(w, r, sess, err) {
			return
		}
	} else {
		ui.recordActivity(r.Context(), sess, model.MutationUpdate, schema, id)
	}
	ui.redirectList(w, r, schema, c)
}

// HandleDeleteRequest arms the inline delete confirmation.
func (ui *UI) HandleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	_, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}
	if err := c.RequestDelete(chi.URLParam(r, "id")); err != nil {
		ui.renderNotFound(w, r, "No item selected")
		return
	}
	ui.redirectList(w, r, schema, c)
}

// HandleDeleteCancel dismisses the inline delete confirmation.
func (ui *UI) HandleDeleteCancel(w http.ResponseWriter, r *http.Request) {
	_, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}
	c.CancelDelete()
	ui.redirectList(w, r, schema, c)
}

// HandleDeleteConfirm deletes the item awaiting confirmation.
func (ui *UI) HandleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	sess, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}
	id := c.View().Pending
	if id != chi.URLParam(r, "id") {
		// The confirmation on screen is not the one armed; arm it instead.
		if err := c.RequestDelete(chi.URLParam(r, "id")); err != nil {
			ui.renderNotFound(w, r, "No item selected")
			return
		}
		ui.redirectList(w, r, schema, c)
		return
	}
	if err := c.ConfirmDelete(r.Context()); err != nil {
		if ui.handleAPIError(w, r, sess, err) {
			return
		}
	} else {
		ui.recordActivity(r.Context(), sess, model.MutationDelete, schema, id)
	}
	ui.redirectList(w, r, schema, c)
}

// HandleExport downloads the filtered listing as CSV or XLSX.
func (ui *UI) HandleExport(w http.ResponseWriter, r *http.Request) {
	sess, schema, c, ok := ui.listContext(w, r)
	if !ok {
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := c.LoadAll(r.Context(), r.URL.Query().Get("filter"))
	if err != nil {
		if ui.handleAPIError(w, r, sess, err) {
			return
		}
		ui.redirectList(w, r, schema, c)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, export.NewTable(schema, items)); err != nil {
		ui.renderError(w, r, "Export failed", err)
		return
	}
	ui.recordActivity(r.Context(), sess, model.MutationExport, schema, string(format))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", schema.Name, format))
	buf.WriteTo(w)
}

// --- Helpers ---

// listContext resolves the resource of the request and its controller.
func (ui *UI) listContext(w http.ResponseWriter, r *http.Request) (*model.Session, resource.Schema, *listing.Controller, bool) {
	sess := SessionFromContext(r.Context())
	name := chi.URLParam(r, "type")
	if name == "" {
		name = resource.Settings.Name
	}
	schema, ok := ui.registry.Lookup(name)
	if !ok {
		ui.renderNotFound(w, r, fmt.Sprintf("Unknown resource %q", name))
		return nil, resource.Schema{}, nil, false
	}
	d, err := ui.desks.get(sess)
	if err != nil {
		ui.renderError(w, r, "Failed to open session", err)
		return nil, resource.Schema{}, nil, false
	}
	return sess, schema, d.controller(schema), true
}

// handleAPIError redirects to login when the API rejected the token and
// reports whether it did. Other errors were already queued as toasts.
func (ui *UI) handleAPIError(w http.ResponseWriter, r *http.Request, sess *model.Session, err error) bool {
	if errors.Is(err, model.ErrSessionExpired) {
		ui.sessionExpired(w, r, sess)
		return true
	}
	ui.logger.Debug("request completed with error", "path", r.URL.Path, "error", err)
	return false
}

// sessionExpired ends a browser session whose API token was rejected.
func (ui *UI) sessionExpired(w http.ResponseWriter, r *http.Request, sess *model.Session) {
	if sess != nil {
		_ = ui.sessions.DeleteSession(r.Context(), sess.ID)
		ui.desks.drop(sess.ID)
	}
	ClearSessionCookie(w)
	redirectToLogin(w, r, "Your session has expired. Please log in again.")
}

func (ui *UI) recordActivity(ctx context.Context, sess *model.Session, kind model.MutationKind, schema resource.Schema, itemID string) {
	a := &model.Activity{Action: kind, Resource: schema.Name, ItemID: itemID}
	if sess != nil {
		a.Username = sess.Username
	}
	if kind == model.MutationExport {
		a.ItemID, a.Detail = "", itemID
	}
	if err := ui.store.RecordActivity(ctx, a); err != nil {
		ui.logger.Warn("record activity failed", "error", err)
	}
}

// redirectList returns to the list at the controller's current filter and page.
func (ui *UI) redirectList(w http.ResponseWriter, r *http.Request, schema resource.Schema, c *listing.Controller) {
	target := listURL(schema)
	if q := pageQuery(c.View()); q != "" {
		target += "?" + q
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func listURL(schema resource.Schema) string {
	if schema.Name == resource.Settings.Name {
		return "/settings"
	}
	return "/pricings/" + schema.Name
}

// pageLink is the list URL for page under the current filter.
func pageLink(schema resource.Schema, v listing.View, page int) string {
	v.Page.Page = page
	if q := pageQuery(v); q != "" {
		return listURL(schema) + "?" + q
	}
	return listURL(schema)
}

// formAction is where the open modal submits: the collection for create,
// the item for edit.
func formAction(schema resource.Schema, v listing.View) string {
	if v.Modal == listing.ModalEdit {
		return listURL(schema) + "/" + url.PathEscape(v.EditID)
	}
	return listURL(schema)
}

func exportLink(schema resource.Schema, v listing.View, f export.Format) string {
	q := url.Values{"format": {string(f)}}
	if v.Filter.Value != "" {
		q.Set("filter", v.Filter.Value)
	}
	return listURL(schema) + "/export?" + q.Encode()
}

func pageQuery(v listing.View) string {
	q := url.Values{}
	if v.Filter.Value != "" {
		q.Set("filter", v.Filter.Value)
	}
	if v.Page.Page > 1 {
		q.Set("page", strconv.Itoa(v.Page.Page))
	}
	return q.Encode()
}

// formValues reads the schema's fields from a submitted form. Unchecked
// checkboxes are absent from the form and read as false.
func formValues(r *http.Request, schema resource.Schema) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(schema.Fields))
	for _, f := range schema.Fields {
		v := r.PostForm.Get(f.Name)
		if f.Kind == resource.KindBool && v == "" {
			v = "false"
		}
		values[f.Name] = v
	}
	return values, nil
}

// redirectToLogin sends the browser to the login page, using HX-Redirect for
// htmx requests so the whole page navigates.
func redirectToLogin(w http.ResponseWriter, r *http.Request, msg string) {
	target := "/login"
	if msg != "" {
		target += "?error=" + url.QueryEscape(msg)
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// renderPage renders an authenticated page, attaching the session and its
// queued toasts.
func (ui *UI) renderPage(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	sess := SessionFromContext(r.Context())
	data["Session"] = sess
	if sess != nil {
		toasts, err := ui.store.PopNotifications(r.Context(), sess.ID)
		if err != nil {
			ui.logger.Warn("pop notifications failed", "error", err)
		}
		data["Toasts"] = toasts
	}
	data["Resources"] = ui.registry.Pricings()
	ui.render(w, name, data)
}

func (ui *UI) render(w http.ResponseWriter, name string, data map[string]any) {
	ui.renderStatus(w, http.StatusOK, name, data)
}

func (ui *UI) renderStatus(w http.ResponseWriter, status int, name string, data map[string]any) {
	var buf bytes.Buffer
	if err := renderTemplate(&buf, name, data); err != nil {
		ui.logger.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (ui *UI) renderError(w http.ResponseWriter, r *http.Request, message string, err error) {
	ui.logger.Error(message, "error", err)
	data := map[string]any{
		"Title":   "Error - pricedesk",
		"Message": message,
		"Session": SessionFromContext(r.Context()),
	}
	ui.renderStatus(w, http.StatusInternalServerError, "error", data)
}

func (ui *UI) renderNotFound(w http.ResponseWriter, r *http.Request, message string) {
	data := map[string]any{
		"Title":   "Not Found - pricedesk",
		"Message": message,
		"Session": SessionFromContext(r.Context()),
	}
	ui.renderStatus(w, http.StatusNotFound, "error", data)
}

// Sessions returns the browser session manager.
func (ui *UI) Sessions() *SessionManager {
	return ui.sessions
}
