package logging

// StandardFields defines the standardized field names for structured logging
// across all components to ensure consistency and enable better log analysis.
//
// This ensures that all components use the same field names for similar data,
// making it easier to query, filter, and analyze logs in aggregation systems.
//
//nolint:gochecknoglobals // Intentional global constants for standardized field names
var StandardFields = struct {
	// Operation Context
	Component     string
	Operation     string
	CorrelationID string

	// Remote Identifiers
	Authority  string
	QueryID    string
	SourceID   string
	Repo       string
	PRNumber   string
	BranchName string
	RemoteName string

	// Pagination
	Page         string
	PagesFetched string
	ItemCount    string

	// Timing and Performance
	DurationMs string
	StartTime  string

	// Error Information
	Error     string
	ErrorType string
	ExitCode  string

	// Status and Progress
	Status         string
	Classification string
}{
	// Operation Context
	Component:     "component",
	Operation:     "operation",
	CorrelationID: "correlation_id",

	// Remote Identifiers
	Authority:  "authority",
	QueryID:    "query_id",
	SourceID:   "source_id",
	Repo:       "repo",
	PRNumber:   "pr_number",
	BranchName: "branch_name",
	RemoteName: "remote_name",

	// Pagination
	Page:         "page",
	PagesFetched: "pages_fetched",
	ItemCount:    "item_count",

	// Timing and Performance
	DurationMs: "duration_ms",
	StartTime:  "start_time",

	// Error Information
	Error:     "error",
	ErrorType: "error_type",
	ExitCode:  "exit_code",

	// Status and Progress
	Status:         "status",
	Classification: "classification",
}

// ComponentNames defines standardized component identifiers used in the
// StandardFields.Component log field.
//
//nolint:gochecknoglobals // Intentional global constants for component names
var ComponentNames = struct {
	HostDetect   string
	Pagination   string
	Conversation string
	Association  string
	Git          string
	API          string
	CLI          string
}{
	HostDetect:   "hostdetect",
	Pagination:   "pagination",
	Conversation: "conversation",
	Association:  "association",
	Git:          "git",
	API:          "api",
	CLI:          "cli",
}
