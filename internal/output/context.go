package output

import "context"

// Private key types so values cannot collide with other packages.
type (
	formatKey    struct{}
	queryKey     struct{}
	yesKey       struct{}
	limitKey     struct{}
	sortFieldKey struct{}
	sortDescKey  struct{}
	quietKey     struct{}
)

func valueFrom[T any](ctx context.Context, key any, def T) T {
	if ctx == nil {
		return def
	}
	if v, ok := ctx.Value(key).(T); ok {
		return v
	}
	return def
}

// WithFormat returns a new context with the output format attached.
func WithFormat(ctx context.Context, format Format) context.Context {
	return context.WithValue(ctx, formatKey{}, format)
}

// FormatFromContext returns the output format, FormatText when unset.
func FormatFromContext(ctx context.Context) Format {
	return valueFrom(ctx, formatKey{}, FormatText)
}

// WithQuery adds a jq query string to context.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// QueryFromContext retrieves the jq query from context.
func QueryFromContext(ctx context.Context) string {
	return valueFrom(ctx, queryKey{}, "")
}

// WithYes sets the --yes flag in context.
func WithYes(ctx context.Context, yes bool) context.Context {
	return context.WithValue(ctx, yesKey{}, yes)
}

// YesFromContext returns true if --yes flag is set.
func YesFromContext(ctx context.Context) bool {
	return valueFrom(ctx, yesKey{}, false)
}

// WithLimit sets the --limit value in context.
func WithLimit(ctx context.Context, limit int) context.Context {
	return context.WithValue(ctx, limitKey{}, limit)
}

// LimitFromContext returns the --limit value (0 = unlimited).
func LimitFromContext(ctx context.Context) int {
	return valueFrom(ctx, limitKey{}, 0)
}

// WithSort sets sort field and direction in context.
func WithSort(ctx context.Context, field string, desc bool) context.Context {
	ctx = context.WithValue(ctx, sortFieldKey{}, field)
	return context.WithValue(ctx, sortDescKey{}, desc)
}

// SortFromContext returns sort field and direction.
func SortFromContext(ctx context.Context) (field string, desc bool) {
	return valueFrom(ctx, sortFieldKey{}, ""), valueFrom(ctx, sortDescKey{}, false)
}

// WithQuiet sets the --quiet flag in context.
func WithQuiet(ctx context.Context, quiet bool) context.Context {
	return context.WithValue(ctx, quietKey{}, quiet)
}

// QuietFromContext returns true if --quiet flag is set.
func QuietFromContext(ctx context.Context) bool {
	return valueFrom(ctx, quietKey{}, false)
}
