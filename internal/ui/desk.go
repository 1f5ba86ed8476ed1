package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/me/pricedesk/internal/listing"
	"github.com/me/pricedesk/internal/notify"
	"github.com/me/pricedesk/internal/pricing"
	"github.com/me/pricedesk/internal/resource"
	"github.com/me/pricedesk/internal/session"
	"github.com/me/pricedesk/internal/store"
	"github.com/me/pricedesk/pkg/model"
)

// desk is the per-browser-session workspace: the API session, its
// authenticated client and one list controller per resource.
type desk struct {
	id       string
	session  *session.Session
	client   *pricing.Client
	notifier notify.Notifier
	logger   *slog.Logger

	mu    sync.Mutex
	lists map[string]*listing.Controller
}

// controller returns the list controller for schema, creating it on first use.
func (d *desk) controller(schema resource.Schema) *listing.Controller {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.lists[schema.Name]
	if !ok {
		c = listing.New(schema, d.client, d.notifier, d.logger)
		d.lists[schema.Name] = c
	}
	return c
}

// deskRegistry maps browser session IDs to desks.
type deskRegistry struct {
	store      store.Store
	apiBase    string
	httpClient *http.Client
	logger     *slog.Logger

	mu    sync.Mutex
	desks map[string]*desk
}

func newDeskRegistry(st store.Store, apiBase string, httpClient *http.Client, logger *slog.Logger) *deskRegistry {
	return &deskRegistry{
		store:      st,
		apiBase:    apiBase,
		httpClient: httpClient,
		logger:     logger,
		desks:      map[string]*desk{},
	}
}

// get returns the desk for a browser session, building it from the stored token.
func (r *deskRegistry) get(sess *model.Session) (*desk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.desks[sess.ID]; ok {
		return d, nil
	}

	apiSess, err := session.New(sessionTokens{store: r.store, id: sess.ID})
	if err != nil {
		return nil, fmt.Errorf("open api session: %w", err)
	}
	logger := r.logger.With("session", sess.ID)
	client := pricing.NewClient(r.apiBase, apiSess, logger)
	if r.httpClient != nil {
		client.HTTPClient = r.httpClient
	}

	id := sess.ID
	d := &desk{
		id:      id,
		session: apiSess,
		client:  client,
		notifier: notify.Func(func(n model.Notification) {
			if err := r.store.PushNotification(context.Background(), id, n); err != nil {
				logger.Warn("queue notification failed", "error", err)
			}
		}),
		logger: logger,
		lists:  map[string]*listing.Controller{},
	}
	apiSess.OnInvalidate(func() {
		logger.Info("pricing API rejected token, session logged out")
		r.drop(id)
	})
	r.desks[id] = d
	return d, nil
}

// drop forgets a desk; the next request rebuilds it from the store.
func (r *deskRegistry) drop(id string) {
	r.mu.Lock()
	delete(r.desks, id)
	r.mu.Unlock()
}
