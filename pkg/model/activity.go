package model

import "time"

// Activity is one entry of the admin audit trail: a mutation or export
// performed through the web panel.
type Activity struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	Action    MutationKind `json:"action"`
	Resource  string       `json:"resource"`
	ItemID    string       `json:"item_id,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// MutationExport records a listing export in the audit trail.
const MutationExport MutationKind = "export"
