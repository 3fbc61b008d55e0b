// Package collect drives link collection: it fans a Collector out over the
// functions of a module and applies the gathered evidence to the type graph.
// Collection may run in parallel, graph mutation never does.
package collect

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dla/internal/ir"
	"dla/internal/typegraph"
)

// Link is one pending relation between two observation points, not yet
// applied to the graph. OE is meaningful for Instance links only.
type Link struct {
	Kind typegraph.LinkKind
	Src  typegraph.LayoutTypePtr
	Tgt  typegraph.LayoutTypePtr
	OE   typegraph.OffsetExpression
}

// Access is one observed memory access: evidence that the layout behind Ptr
// was used with the given footprint.
type Access struct {
	Ptr  typegraph.LayoutTypePtr
	Site ir.AccessID
	Size uint64
}

// Evidence is everything a Collector found in one function.
type Evidence struct {
	Links    []Link
	Accesses []Access
}

// Collector inspects one function of the lifted program and reports the
// layout evidence it finds. Implementations must be safe for concurrent
// calls on distinct functions and must not touch the type graph.
type Collector interface {
	CollectFunction(ctx context.Context, m *ir.Module, fn ir.ValueID) (Evidence, error)
}

// Run collects evidence for every function of the graph's module, at most
// workers functions at a time, then applies it to ts sequentially in
// function registration order. The first collection error aborts the run
// and nothing is applied.
func Run(ctx context.Context, ts *typegraph.TypeSystem, c Collector, workers int, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	m := ts.Module()
	fns := m.Functions()
	results := make([]Evidence, len(fns))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			ev, err := c.CollectFunction(ctx, m, fn)
			if err != nil {
				return fmt.Errorf("collect %s: %w", m.MustValue(fn).Name, err)
			}
			results[i] = ev
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, ev := range results {
		apply(ts, ev)
		log.Debug("applied evidence",
			zap.String("function", m.MustValue(fns[i]).Name),
			zap.Int("links", len(ev.Links)),
			zap.Int("accesses", len(ev.Accesses)))
	}
	return nil
}

func apply(ts *typegraph.TypeSystem, ev Evidence) {
	for _, a := range ev.Accesses {
		n, _ := ts.EnsureLayoutType(a.Ptr)
		ts.RecordAccess(n, a.Site, a.Size)
	}
	for _, l := range ev.Links {
		src, _ := ts.EnsureLayoutType(l.Src)
		tgt, _ := ts.EnsureLayoutType(l.Tgt)
		switch l.Kind {
		case typegraph.LinkEquality:
			ts.AddEqualityLink(src, tgt)
		case typegraph.LinkInheritance:
			ts.AddInheritanceLink(src, tgt)
		case typegraph.LinkInstance:
			ts.AddInstanceLink(src, tgt, l.OE)
		default:
			panic(fmt.Errorf("collect: link with kind %d", l.Kind))
		}
	}
}
