package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/me/pricedesk/pkg/model"
)

func TestReport_ValidationErrorPerField(t *testing.T) {
	var rec Recorder
	verr := model.NewFieldValidationError("invalid")
	verr.Add("buy_price", "The buy price field is required.")
	verr.Add("network_id", "The selected network is invalid.")
	verr.Add("network_id", "The network id must be an integer.")

	Report(&rec, fmt.Errorf("create airtime: %w", verr))

	got := rec.All()
	if len(got) != 3 {
		t.Fatalf("got %d notifications, want 3: %+v", len(got), got)
	}
	for _, n := range got {
		if n.Level != model.LevelError {
			t.Errorf("level = %q, want error", n.Level)
		}
		if n.Field == "" {
			t.Errorf("field missing on %+v", n)
		}
	}
}

func TestReport_Taxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"transport", &model.TransportError{Method: "GET", Path: "/x", Err: errors.New("dial tcp: refused")}, "Network error"},
		{"server with message", &model.ServerError{Status: 500, Message: "Database unavailable"}, "Database unavailable"},
		{"server without message", &model.ServerError{Status: 502}, "HTTP 502"},
		{"unauthorized", fmt.Errorf("list: %w", model.ErrSessionExpired), "session has expired"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Recorder
			Report(&rec, tt.err)
			got := rec.Drain()
			if len(got) != 1 {
				t.Fatalf("got %d notifications, want 1", len(got))
			}
			if !strings.Contains(got[0].Message, tt.want) {
				t.Errorf("message = %q, want it to contain %q", got[0].Message, tt.want)
			}
			if len(rec.All()) != 0 {
				t.Error("Drain should clear the recorder")
			}
		})
	}
}

func TestReport_IgnoresNilAndCanceled(t *testing.T) {
	var rec Recorder
	Report(&rec, nil)
	Report(&rec, &model.TransportError{Method: "GET", Path: "/x", Err: context.Canceled})
	if n := len(rec.All()); n != 0 {
		t.Errorf("got %d notifications, want 0", n)
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	Success(w, "Created %s", "airtime pricing")
	Report(w, errors.New("nope"))

	out := buf.String()
	if !strings.Contains(out, "✓ Created airtime pricing") {
		t.Errorf("missing success line: %q", out)
	}
	if !strings.Contains(out, "✗ nope") {
		t.Errorf("missing error line: %q", out)
	}
}
