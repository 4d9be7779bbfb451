package domain

import "context"

// CompletionClient talks to an external AI completion provider.
type CompletionClient interface {
	// Complete sends a single completion request and returns the decoded
	// result. It performs no retries; retry policy is a caller concern.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResult, error)

	// Name returns the client identifier.
	Name() string
}

// ClientRegistry manages available completion clients.
type ClientRegistry interface {
	// Register adds a client to the registry.
	Register(ctx context.Context, client CompletionClient) error

	// Get retrieves a client by name.
	Get(ctx context.Context, name string) (CompletionClient, error)

	// List returns all registered client names.
	List(ctx context.Context) ([]string, error)
}

// UsageLogStore persists append-only usage-log entries and answers the count
// query quota checks are derived from.
type UsageLogStore interface {
	// Append writes one usage-log entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *UsageLogEntry) error

	// CountByUser returns the number of entries recorded for a user.
	CountByUser(ctx context.Context, userID string) (int, error)
}
