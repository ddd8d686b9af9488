package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Span interface {
	// End the span, the status is set according to the error pointer, if it is not nil.
	End(errPtr *error, opts ...trace.SpanEndOption)
	SetAttributes(kv ...attribute.KeyValue)
	AddEvent(name string, kv ...attribute.KeyValue)
}

type span struct {
	span trace.Span
}

func (s *span) SetAttributes(kv ...attribute.KeyValue) {
	s.span.SetAttributes(kv...)
}

func (s *span) AddEvent(name string, kv ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(kv...))
}

func (s *span) End(errPtr *error, opts ...trace.SpanEndOption) {
	if errPtr != nil {
		if err := *errPtr; err != nil {
			s.span.RecordError(err)
			s.span.SetStatus(codes.Error, err.Error())
		} else {
			s.span.SetStatus(codes.Ok, "")
		}
	}
	s.span.End(opts...)
}
