package model

import "time"

// Standard topics. The bus routes arbitrary topics; these are the ones the
// cache layer and its collaborators agree on.
const (
	TopicConnectionAdded        = "connection.added"
	TopicConnectionRemoved      = "connection.removed"
	TopicConnectionStateChanged = "connection.stateChanged"
	TopicQueryExecuted          = "query.executed"
)

// ConnectionAdded is the payload of TopicConnectionAdded.
type ConnectionAdded struct {
	ConnectionID string
}

// ConnectionRemoved is the payload of TopicConnectionRemoved.
type ConnectionRemoved struct {
	ConnectionID string
}

// ConnectionStateChanged is the payload of TopicConnectionStateChanged.
type ConnectionStateChanged struct {
	ConnectionID string
	OldState     string
	NewState     string
	Err          error
}

// QueryExecuted is the payload of TopicQueryExecuted, published by the query
// executor after every statement. The cache manager inspects Query to decide
// whether cached results for ConnectionID must be invalidated.
type QueryExecuted struct {
	ConnectionID string
	Query        string
	Duration     time.Duration
	RowsAffected int64
	Err          error
}
