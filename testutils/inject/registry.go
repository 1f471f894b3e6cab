package inject

import (
	"context"

	"github.com/golang/geo/s2"

	"go.viam.com/landmark/services/buildings"
)

// Registry is an injected building registry.
type Registry struct {
	buildings.Registry
	QueryFunc func(ctx context.Context, box s2.Rect, fields []string) ([]map[string]interface{}, error)
}

// Query calls the injected Query or the real version.
func (r *Registry) Query(ctx context.Context, box s2.Rect, fields []string) ([]map[string]interface{}, error) {
	if r.QueryFunc == nil {
		return r.Registry.Query(ctx, box, fields)
	}
	return r.QueryFunc(ctx, box, fields)
}
