package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/fleet/pkg/errorbank"
)

// Builder assembles the fleet JSON envelope. Success bodies look like
// {success, statusCode, data, meta}; failures carry an error object instead of
// data and, when the request is traced, the trace id in meta.
type Builder struct {
	ctx    echo.Context
	status int
	data   any
	err    error
	meta   map[string]any
}

// New instantiates a Builder for the provided request context.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK}
}

// OK renders data with status 200.
func OK(ctx echo.Context, data any) error {
	return New(ctx).WithData(data).Build()
}

// Fail renders err with the status derived from its kind.
func Fail(ctx echo.Context, err error) error {
	return New(ctx).WithError(err).Build()
}

// WithStatus overrides the response status code.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

// WithData attaches a success payload.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithError records an error to be rendered.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// WithMeta appends auxiliary metadata to the response.
func (b *Builder) WithMeta(key string, value any) *Builder {
	if key == "" {
		return b
	}
	if b.meta == nil {
		b.meta = make(map[string]any)
	}
	b.meta[key] = value
	return b
}

// Build finalises and emits the HTTP response.
func (b *Builder) Build() error {
	if b.err != nil {
		return b.buildError()
	}
	return b.buildSuccess()
}

func (b *Builder) buildSuccess() error {
	if b.status == http.StatusNoContent {
		return b.ctx.NoContent(b.status)
	}
	payload := struct {
		Success    bool           `json:"success"`
		StatusCode int            `json:"statusCode"`
		Data       any            `json:"data,omitempty"`
		Meta       map[string]any `json:"meta,omitempty"`
	}{
		Success:    true,
		StatusCode: b.status,
		Data:       b.data,
		Meta:       b.meta,
	}
	return b.ctx.JSON(b.status, payload)
}

type errorBody struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (b *Builder) buildError() error {
	appErr := errorbank.From(b.err)
	status := b.status
	if status < 400 {
		status = appErr.StatusCode()
	}

	if sc := trace.SpanContextFromContext(b.ctx.Request().Context()); sc.HasTraceID() {
		b.WithMeta("traceId", sc.TraceID().String())
	}

	payload := struct {
		Success    bool           `json:"success"`
		StatusCode int            `json:"statusCode"`
		Error      errorBody      `json:"error"`
		Meta       map[string]any `json:"meta,omitempty"`
	}{
		Success:    false,
		StatusCode: status,
		Error: errorBody{
			Kind:    string(appErr.Kind()),
			Message: appErr.Message(),
			Details: appErr.Details(),
		},
		Meta: b.meta,
	}
	return b.ctx.JSON(status, payload)
}
