package tui

const (
	TopicActions = "pickem.actions"
	TopicState   = "pickem.state"
)

const (
	DomainTypeActionDispatched = "action.dispatched"
	DomainTypeStateSnapshot    = "state.snapshot"
	DomainTypeRequestSettled   = "request.settled"
)
