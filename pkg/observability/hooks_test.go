package observability

import (
	"context"
	"testing"
	"time"
)

type recordingAssemblyHooks struct {
	NoopAssemblyHooks
	validateStarts int
	layoutStarts   int
}

func (h *recordingAssemblyHooks) OnValidateStart(context.Context, int, int) {
	h.validateStarts++
}

func (h *recordingAssemblyHooks) OnLayoutStart(context.Context, int) {
	h.layoutStarts++
}

type recordingCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (h *recordingCacheHooks) OnCacheHit(context.Context, string) { h.hits++ }

func TestHookRegistration(t *testing.T) {
	defer Reset()
	ctx := context.Background()

	rec := &recordingAssemblyHooks{}
	SetAssemblyHooks(rec)

	Assembly().OnValidateStart(ctx, 3, 2)
	Assembly().OnLayoutStart(ctx, 3)
	Assembly().OnLayoutComplete(ctx, time.Millisecond, nil)

	if rec.validateStarts != 1 {
		t.Errorf("validateStarts = %d, want 1", rec.validateStarts)
	}
	if rec.layoutStarts != 1 {
		t.Errorf("layoutStarts = %d, want 1", rec.layoutStarts)
	}

	cacheRec := &recordingCacheHooks{}
	SetCacheHooks(cacheRec)
	Cache().OnCacheHit(ctx, "layout")
	if cacheRec.hits != 1 {
		t.Errorf("hits = %d, want 1", cacheRec.hits)
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingAssemblyHooks{}
	SetAssemblyHooks(rec)
	SetAssemblyHooks(nil)

	Assembly().OnValidateStart(context.Background(), 1, 0)
	if rec.validateStarts != 1 {
		t.Error("nil registration should not replace the current hooks")
	}
}

func TestReset(t *testing.T) {
	rec := &recordingAssemblyHooks{}
	SetAssemblyHooks(rec)
	Reset()

	Assembly().OnValidateStart(context.Background(), 1, 0)
	if rec.validateStarts != 0 {
		t.Error("Reset should restore the no-op hooks")
	}
}
