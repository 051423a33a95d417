package job

import "context"

// Params carries named arguments into a job handler. Trigger fires use
// the definition's defaults; manual runs may override individual keys.
type Params map[string]any

// Merge returns a copy of p with values from overrides applied on top.
// Either side may be nil.
func (p Params) Merge(overrides Params) Params {
	merged := make(Params, len(p)+len(overrides))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// HandlerFunc is the unit of work a job executes. The returned value is
// recorded as the job's last result on success; the returned error marks
// the attempt failed and eligible for retry.
type HandlerFunc func(ctx context.Context, params Params) (any, error)

// Definition describes what a job does. It is immutable once registered:
// the registry stores a copy, and later changes to the caller's value
// have no effect.
type Definition struct {
	// Name is a human-readable display name, distinct from the job id.
	Name string

	// Description explains what the job does. Informational only.
	Description string

	// Handler is the function executed on every trigger fire and
	// manual run.
	Handler HandlerFunc

	// DefaultParams are passed to the handler when a trigger fires.
	DefaultParams Params
}

// clone returns a copy of the definition with its own params map.
func (d Definition) clone() Definition {
	cp := d
	cp.DefaultParams = Params(nil).Merge(d.DefaultParams)
	return cp
}
