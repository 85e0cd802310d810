// Package types provides shared types and error definitions for the wukong library.
//
// This is a leaf package with zero wukong imports to prevent import cycles.
// All packages in wukong can safely import this package.
//
// # Errors
//
// Every failure is surfaced as an [*Error] carrying an [ErrorKind] and a
// human-readable message:
//
//	docs, err := manager.All(ctx)
//	if err != nil {
//	    var werr *types.Error
//	    if errors.As(err, &werr) && werr.Kind == types.KindTransport {
//	        // every node failed, decide on backoff
//	    }
//	}
//
// Each kind unwraps to a sentinel so errors.Is works too:
//
//	if errors.Is(err, types.ErrDuplicateKey) {
//	    // document already indexed
//	}
//
// Per-node failures collected during failover are available as [*StatusError]
// and [*NodeError] through errors.As on the transport error.
//
// # Logging and Metrics
//
// [Logger] and [MetricsCollector] are the pluggable observability interfaces.
// *slog.Logger satisfies [Logger] without an adapter.
package types
