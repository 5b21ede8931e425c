package source

import (
	"context"
	"time"
)

// staticAdapter serves fixed indicative fields for providers without a stable
// free programmatic endpoint (volcano activity, tide stations, satellite
// catalogs). Results are tagged like any other adapter so specialists treat
// them uniformly.
type staticAdapter struct {
	name   string
	fields map[string]any
}

// Static returns an adapter that always succeeds with fixed fields.
func Static(name string, fields map[string]any) Adapter {
	return &staticAdapter{name: name, fields: fields}
}

func (a *staticAdapter) Name() string { return a.name }

func (a *staticAdapter) Fetch(ctx context.Context, lat, lon float64) Result {
	// Honor cancellation like a real call would.
	select {
	case <-ctx.Done():
		return Result{Source: a.name, Success: false, Err: ctx.Err().Error()}
	case <-time.After(10 * time.Millisecond):
	}

	fields := make(map[string]any, len(a.fields))
	for k, v := range a.fields {
		fields[k] = v
	}
	return Result{Source: a.name, Success: true, Fields: fields}
}
