package groundbase

import "github.com/jackc/pgx/v5/pgxpool"

// Backend selection happens exactly once, at process start, and the result is
// an immutable value the caller injects wherever it is needed. There is no
// package-level active-backend flag and nothing ever re-reads the
// environment per call; components that want the adapter hold a reference.

// Variant identifies which backend a config resolves to.
type Variant string

const (
	VariantEmbedded Variant = "embedded"
	VariantHosted   Variant = "hosted"
)

// ChooseVariant applies the selection policy without opening anything:
//
//  1. an explicit force-embedded override always wins;
//  2. a present, syntactically valid hosted URL selects the hosted variant;
//  3. otherwise embedded.
//
// Validity here is syntax only. Bad credentials are not detected at selection
// time; they surface on first use as ErrBackendUnavailable.
func ChooseVariant(cfg BackendConfig) Variant {
	if cfg.ForceEmbedded {
		return VariantEmbedded
	}
	if cfg.HostedURL != "" {
		if _, err := pgxpool.ParseConfig(cfg.HostedURL); err == nil {
			return VariantHosted
		}
	}
	return VariantEmbedded
}

// SelectBackend resolves the config to a concrete adapter. Called once per
// process, from Open; the returned Backend is shared read-only by every
// subsequent call and is never swapped mid-process.
func SelectBackend(cfg BackendConfig) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch ChooseVariant(cfg) {
	case VariantHosted:
		return NewPostgresBackend(cfg.HostedURL, cfg.HostedKey)
	default:
		return NewSQLiteBackend(cfg.EmbeddedPath)
	}
}
