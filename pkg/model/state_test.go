package model

import "testing"

func TestMutationState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    MutationState
		terminal bool
	}{
		{MutationStateIdle, false},
		{MutationStateSubmitting, false},
		{MutationStateSuccess, true},
		{MutationStateFailure, true},
	}
	for _, tt := range tests {
		if got := tt.state.IsTerminal(); got != tt.terminal {
			t.Errorf("MutationState(%q).IsTerminal() = %v, want %v", tt.state, got, tt.terminal)
		}
	}
}

func TestMutationState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from  MutationState
		to    MutationState
		valid bool
	}{
		{MutationStateIdle, MutationStateSubmitting, true},
		{MutationStateSubmitting, MutationStateSuccess, true},
		{MutationStateSubmitting, MutationStateFailure, true},
		{MutationStateSuccess, MutationStateIdle, true},
		{MutationStateFailure, MutationStateIdle, true},

		{MutationStateIdle, MutationStateSuccess, false},
		{MutationStateSubmitting, MutationStateIdle, false},
		{MutationStateSubmitting, MutationStateSubmitting, false},
		{MutationStateFailure, MutationStateSubmitting, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.valid {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestParsePaging(t *testing.T) {
	if p, ok := ParsePaging("server"); !ok || p != PagingServer {
		t.Errorf("ParsePaging(server) = %q, %v", p, ok)
	}
	if p, ok := ParsePaging("client"); !ok || p != PagingClient {
		t.Errorf("ParsePaging(client) = %q, %v", p, ok)
	}
	if _, ok := ParsePaging("both"); ok {
		t.Error("ParsePaging(both) should fail")
	}
}
