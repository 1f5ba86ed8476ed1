package model

// MutationState represents the lifecycle state of a create, update or delete
// request issued by a list controller.
type MutationState string

const (
	MutationStateIdle       MutationState = "IDLE"
	MutationStateSubmitting MutationState = "SUBMITTING"
	MutationStateSuccess    MutationState = "SUCCESS"
	MutationStateFailure    MutationState = "FAILURE"
)

// String returns the string representation of the mutation state.
func (s MutationState) String() string {
	return string(s)
}

// IsTerminal returns true if the mutation has finished, successfully or not.
func (s MutationState) IsTerminal() bool {
	switch s {
	case MutationStateSuccess, MutationStateFailure:
		return true
	}
	return false
}

// ValidMutationTransitions defines the allowed state transitions for mutations.
// Success and Failure fall straight back to Idle; nothing is retried.
var ValidMutationTransitions = map[MutationState][]MutationState{
	MutationStateIdle:       {MutationStateSubmitting},
	MutationStateSubmitting: {MutationStateSuccess, MutationStateFailure},
	MutationStateSuccess:    {MutationStateIdle},
	MutationStateFailure:    {MutationStateIdle},
}

// CanTransitionTo returns true if moving from the current state to next is valid.
func (s MutationState) CanTransitionTo(next MutationState) bool {
	for _, allowed := range ValidMutationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MutationKind identifies which mutation a controller is performing.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Paging identifies where a resource's collection is paginated.
type Paging string

const (
	// PagingClient fetches the full collection and slices it locally.
	PagingClient Paging = "client"
	// PagingServer requests one page at a time with page/limit parameters.
	PagingServer Paging = "server"
)

// ParsePaging converts a config string to a Paging mode.
func ParsePaging(s string) (Paging, bool) {
	switch Paging(s) {
	case PagingClient, PagingServer:
		return Paging(s), true
	}
	return "", false
}
