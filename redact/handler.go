package redact

import (
	"context"
	"io"
	"log/slog"
)

// Handler wraps a slog.Handler and masks PII field values in each record's
// message before it is rendered. Time, level, and attributes pass through
// untouched.
type Handler struct {
	inner     slog.Handler
	fields    []string
	mask      string
	separator string
}

// NewHandler wraps inner with message redaction for the given fields.
func NewHandler(inner slog.Handler, fields []string, mask, separator string) *Handler {
	return &Handler{inner: inner, fields: fields, mask: mask, separator: separator}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level,
		Filter(h.fields, h.mask, r.Message, h.separator), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(a)
		return true
	})
	return h.inner.Handle(ctx, masked)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		inner:     h.inner.WithAttrs(attrs),
		fields:    h.fields,
		mask:      h.mask,
		separator: h.separator,
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		inner:     h.inner.WithGroup(name),
		fields:    h.fields,
		mask:      h.mask,
		separator: h.separator,
	}
}

// NewLogger builds a text logger writing to w with PII redaction applied to
// every message. A nil fields slice selects DefaultFields.
func NewLogger(w io.Writer, fields []string) *slog.Logger {
	if fields == nil {
		fields = DefaultFields
	}
	inner := slog.NewTextHandler(w, nil)
	return slog.New(NewHandler(inner, fields, DefaultMask, DefaultSeparator))
}
