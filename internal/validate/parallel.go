package validate

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"scir/internal/ir"
)

// ValidateConcurrent validates a module with one task per function, bounded
// by GOMAXPROCS. Functions never share mutable validation state, and the
// merged result is sorted into the same order Validate produces, so the two
// entry points are interchangeable.
func ValidateConcurrent(ctx context.Context, m *ir.Module) ([]Diagnostic, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	perFunc := make([][]Diagnostic, len(m.Functions))
	for i, f := range m.Functions {
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perFunc[i] = validateFunction(m, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	diags := checkDeclarations(m)
	for _, d := range perFunc {
		diags = append(diags, d...)
	}
	sortDiagnostics(diags, functionOrder(m))
	return diags, nil
}
