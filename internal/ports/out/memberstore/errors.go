package memberstore

import "errors"

var (
	// ErrNotFound indicates the requested member does not exist in the
	// queried source.
	ErrNotFound = errors.New("member not found")

	// ErrUnreachable classifies transport-level failures: the API could not
	// be reached at all. Well-formed 4xx/5xx responses are never classified
	// this way. The text mirrors the browser fetch error so offline
	// suppression in the view layer matches both.
	ErrUnreachable = errors.New("failed to fetch")

	// ErrRequiresRemote marks operations with no local fallback: trash
	// mutations and stats are only authoritative on the server.
	ErrRequiresRemote = errors.New("operation requires a reachable API")
)
