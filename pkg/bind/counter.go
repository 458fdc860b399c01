package bind

import "github.com/vango-dev/pulse/pkg/reactive"

// Counter is the demo graph: a count and its double.
type Counter struct {
	Count  *reactive.Signal[int]
	Double *reactive.Computed[int]
}

// NewCounter builds the counter graph and registers both cells in reg as
// "count" and "double", plus an "increment" action. opts apply to both
// cells; any WithName among them is overridden.
func NewCounter(reg *Registry, initial int, opts ...reactive.Option) (*Counter, error) {
	count := reactive.NewSignal(initial, named(opts, "count")...)
	double := reactive.NewComputed(func() int {
		return count.Get() * 2
	}, []reactive.Source{count}, named(opts, "double")...)

	if err := reg.Register(count); err != nil {
		return nil, err
	}
	if err := reg.Register(double); err != nil {
		return nil, err
	}

	c := &Counter{Count: count, Double: double}
	if err := reg.RegisterAction("increment", c.Increment); err != nil {
		return nil, err
	}
	return c, nil
}

// Increment adds one to the count.
func (c *Counter) Increment() {
	c.Count.Update(func(n int) int { return n + 1 })
}

func named(opts []reactive.Option, name string) []reactive.Option {
	out := make([]reactive.Option, 0, len(opts)+1)
	out = append(out, opts...)
	return append(out, reactive.WithName(name))
}
