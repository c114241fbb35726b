// Package events declares the observability event payloads published on
// the event bus. Subscribers (tracing, logging) consume them without the
// publishing packages knowing about any telemetry backend.
package events

import "time"

// Store call modes.
const (
	ModeByIDs      = "ids"
	ModeByRelation = "relation"
)

// GraphQLStart is emitted before executing a GraphQL operation.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted after executing a GraphQL operation.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// StoreCall is emitted for every store lookup a flush dispatches.
type StoreCall struct {
	Kind     string
	Mode     string
	Relation string // set for ModeByRelation
	Keys     int
	Duration time.Duration
	Err      error
}

// FetchFlush is emitted when a flush completes, successfully or not.
type FetchFlush struct {
	Buckets  int
	Duration time.Duration
	Err      error
}
