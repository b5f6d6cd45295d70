package domain

// QueryState mirrors the Athena execution states this pipeline cares about.
type QueryState string

const (
	QueryQueued    QueryState = "QUEUED"
	QueryRunning   QueryState = "RUNNING"
	QuerySucceeded QueryState = "SUCCEEDED"
	QueryFailed    QueryState = "FAILED"
	QueryCancelled QueryState = "CANCELLED"
)

// Terminal reports whether the query has stopped running.
func (s QueryState) Terminal() bool {
	return s == QuerySucceeded || s == QueryFailed || s == QueryCancelled
}

// QueryExecution - a finished (or abandoned) Athena query
type QueryExecution struct {
	ID     string
	State  QueryState
	Reason string
}
