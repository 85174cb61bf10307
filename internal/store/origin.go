package store

import "context"

// Origin identifies who is performing a mutating call. Writes made by
// the sync engine must not re-dirty records; any other write to a
// synced record flips its synced flag back to false.
type Origin int

const (
	OriginUser Origin = iota
	OriginSync
)

type originKey struct{}

// WithOrigin returns a context carrying the write origin.
func WithOrigin(ctx context.Context, o Origin) context.Context {
	return context.WithValue(ctx, originKey{}, o)
}

// OriginFrom extracts the write origin from a context, defaulting to
// OriginUser when none was set.
func OriginFrom(ctx context.Context) Origin {
	if o, ok := ctx.Value(originKey{}).(Origin); ok {
		return o
	}
	return OriginUser
}
