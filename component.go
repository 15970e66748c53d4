package hxwrap

// Chain collects view transforms and applies them in order on Build.
//
// Chains are immutable: Map returns a new Chain and leaves the receiver
// usable, so a common prefix can be shared:
//
//	base := hxwrap.Compose(view).Map(withAuth)
//	admin := base.Map(withAdminFlag).Build()
//	plain := base.Build()
type Chain[P any] struct {
	source     func() View[P]
	transforms []func(View[P]) View[P]
}

// Compose starts a chain from view.
func Compose[P any](view View[P]) Chain[P] {
	return Chain[P]{source: func() View[P] { return view }}
}

// Map appends a transform that keeps the props type.
func (c Chain[P]) Map(fn func(View[P]) View[P]) Chain[P] {
	transforms := make([]func(View[P]) View[P], len(c.transforms), len(c.transforms)+1)
	copy(transforms, c.transforms)
	return Chain[P]{source: c.source, transforms: append(transforms, fn)}
}

// Build applies every transform to the source view and returns the result.
func (c Chain[P]) Build() View[P] {
	v := c.source()
	for _, fn := range c.transforms {
		v = fn(v)
	}
	return v
}

// Unwrap is an alias for Build.
func (c Chain[P]) Unwrap() View[P] {
	return c.Build()
}

// Then appends a transform that changes the props type, e.g. WithAsync
// turning a View[Props] into a View[Vars]. Transforms added before Then
// run first.
func Then[P, Q any](c Chain[P], fn func(View[P]) View[Q]) Chain[Q] {
	return Chain[Q]{source: func() View[Q] { return fn(c.Build()) }}
}
