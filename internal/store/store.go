package store

import (
	"context"

	"github.com/me/pricedesk/pkg/model"
)

// Store persists web panel state: browser sessions, queued toast
// notifications and the admin activity trail. Pricing data itself is
// never stored; the remote API owns it.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, sess *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	UpdateSessionToken(ctx context.Context, id, token string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	// Notifications queued for the next page render
	PushNotification(ctx context.Context, sessionID string, n model.Notification) error
	PopNotifications(ctx context.Context, sessionID string) ([]model.Notification, error)

	// Activity trail
	RecordActivity(ctx context.Context, a *model.Activity) error
	ListActivity(ctx context.Context, limit int) ([]*model.Activity, error)
	ListUserActivity(ctx context.Context, username string, limit int) ([]*model.Activity, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
