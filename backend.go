package groundbase

import "context"

// Backend defines the five primitive operations a storage variant must
// support. Records and filters at this boundary are already in the storage
// naming convention; Store does the translating. Both variants must honor
// identical external behavior — only transport differs — and neither may leak
// a backend-native error type past this boundary: everything is mapped to the
// sentinel taxonomy in errors.go.
type Backend interface {
	// GetOne returns the first match in engine order, or (nil, nil) when
	// nothing matches. Absence is not an error at this layer.
	GetOne(ctx context.Context, table string, filter Filter) (Record, error)

	// GetMany returns every match, ordered by the optional hint. An empty
	// result is an empty slice, never an error.
	GetMany(ctx context.Context, table string, filter Filter, orderBy *OrderBy) ([]Record, error)

	// Insert stores the record and returns it as stored, including any
	// backend-assigned identity column.
	Insert(ctx context.Context, table string, rec Record) (Record, error)

	// Update applies patch to every record matching filter and returns the
	// updated records. Updating zero records is not an error.
	Update(ctx context.Context, table string, patch Record, filter Filter) ([]Record, error)

	// Delete removes matching records and returns how many went away.
	Delete(ctx context.Context, table string, filter Filter) (int64, error)

	// EnsureCounterTable creates the counter table for a sequence if it does
	// not exist. The one piece of schema this layer owns.
	EnsureCounterTable(ctx context.Context, table string) error

	// Ping checks connectivity/health of the underlying store.
	Ping(ctx context.Context) error

	// Name identifies the variant ("sqlite", "postgres") for metrics labels.
	Name() string

	// Close releases connections and file handles.
	Close() error
}

// BackendConfig identifies which backend variant is active and holds its
// connection parameters. Read once at process start, immutable afterwards;
// there is no hot-reload and no mid-process switching.
type BackendConfig struct {
	// ForceEmbedded selects the embedded backend regardless of hosted
	// availability. Always wins.
	ForceEmbedded bool

	// HostedURL is the PostgreSQL connection URL of the hosted backend.
	// Absence (or a syntactically invalid value) is not an error — it is the
	// signal to fall back to the embedded backend.
	HostedURL string

	// HostedKey is the hosted backend access credential. Applied as the
	// connection password when the URL does not carry one.
	HostedKey string

	// EmbeddedPath is the SQLite database file for the embedded backend.
	EmbeddedPath string
}

// Validate checks if the BackendConfig is usable at all. A missing hosted URL
// is fine (embedded fallback); a missing embedded path is only a problem when
// nothing else is configured either.
func (c BackendConfig) Validate() error {
	if c.ForceEmbedded && c.EmbeddedPath == "" {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"field":  "EmbeddedPath",
			"reason": "force-embedded requires an embedded database path",
		})
	}
	if c.HostedURL == "" && c.EmbeddedPath == "" {
		return WithContext(ErrInvalidConfig, map[string]interface{}{
			"reason": "neither hosted URL nor embedded path configured",
		})
	}
	return nil
}
