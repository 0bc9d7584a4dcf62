package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/jumpviz/internal/api"
	"github.com/salmonumbrella/jumpviz/internal/output"
)

type errorFormatKey struct{}

// WithErrorFormat stores the --error-format value in the context.
func WithErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, format)
}

// ErrorFormatFromContext returns the stored --error-format value, or "".
func ErrorFormatFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	format, _ := ctx.Value(errorFormatKey{}).(string)
	return format
}

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("invalid --error-format %q (expected auto|text|json|yaml)", format)
	}
}

func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format == "" || format == "auto" {
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON, output.FormatNDJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderrFromContext(ctx), err)
}

// errorEnvelope is the structured form of a command error.
type errorEnvelope struct {
	Error errorBody `json:"error" yaml:"error"`
}

type errorBody struct {
	Message  string `json:"message" yaml:"message"`
	Type     string `json:"type" yaml:"type"`
	Category string `json:"category" yaml:"category"`
}

func buildErrorEnvelope(err error) errorEnvelope {
	typ, category := classifyError(err)
	return errorEnvelope{Error: errorBody{
		Message:  err.Error(),
		Type:     typ,
		Category: category,
	}}
}

// classifyError maps an error to its envelope type and category. Errors the
// user can fix are "user"; everything else is "system".
func classifyError(err error) (typ, category string) {
	var (
		authErr       api.AuthenticationError
		validationErr api.ValidationError
		notFoundErr   api.NotFoundError
	)
	switch {
	case errors.As(err, &authErr):
		return "auth", "user"
	case errors.As(err, &validationErr):
		return "validation", "user"
	case errors.As(err, &notFoundErr):
		return "not_found", "user"
	case errors.Is(err, context.Canceled):
		return "canceled", "user"
	default:
		return "error", "system"
	}
}
