package model

import (
	"testing"
	"time"
)

func TestSession_Expiry(t *testing.T) {
	now := time.Now()
	sess := &Session{ExpiresAt: now.Add(time.Hour), TokenExp: now.Add(-time.Minute)}
	if sess.IsExpired() {
		t.Error("session should not be expired")
	}
	if !sess.IsTokenExpired() {
		t.Error("token should be expired")
	}

	sess.TokenExp = time.Time{}
	if sess.IsTokenExpired() {
		t.Error("zero token expiry should not count as expired")
	}
}

func TestSession_HasToken(t *testing.T) {
	sess := &Session{Token: "abc"}
	if !sess.HasToken() {
		t.Error("expected token")
	}
	sess.Token = ""
	if sess.HasToken() {
		t.Error("cleared token should report false")
	}
}
