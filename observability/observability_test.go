package observability

import (
	"context"
	"errors"
	"testing"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "test")
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestFieldConstructors(t *testing.T) {
	cases := []struct {
		field Field
		key   string
	}{
		{String("op", "split"), "op"},
		{Int("pages", 12), "pages"},
		{Int64("bytes", 1 << 20), "bytes"},
		{Float64("percent", 42.5), "percent"},
		{Error("err", errors.New("boom")), "err"},
	}
	for _, c := range cases {
		if c.field.Key() != c.key {
			t.Errorf("expected key %q, got %q", c.key, c.field.Key())
		}
		if c.field.Value() == nil {
			t.Errorf("field %q lost its value", c.key)
		}
	}
}
