// Package hxwrap provides higher-order wrappers for templ views: default
// props, feature-flag gating, visibility and redirect guards, shared-state
// injection, and asynchronous data loading with placeholder and error
// views.
//
// # Views and Wrappers
//
// A View[P] turns props into a templ.Component. A wrapper takes a View and
// returns a new one, so wrappers stack:
//
//	Profile := hxwrap.Compose(profileView).
//	    Map(func(v hxwrap.View[ProfileProps]) hxwrap.View[ProfileProps] {
//	        return hxwrap.WithFlag(v, "v2")
//	    }).
//	    Map(func(v hxwrap.View[ProfileProps]) hxwrap.View[ProfileProps] {
//	        return hxwrap.WithDefault(v, ProfileProps{Compact: true})
//	    }).
//	    Build()
//
// Transforms are applied in the order they were added, when Build runs.
// Then chains a wrapper that changes the props type, such as WithAsync.
//
// # Context Instead of Globals
//
// Feature flags travel in the context.Context that templ passes to Render.
// WithFlags (or the FlagProvider component) installs them; WithFlag and
// FlagsEnabled read them. Nothing is looked up from package state.
//
// # Asynchronous Data
//
// WithAsync binds a fetch function to a view. The fetched value is merged
// over the view's input props by field name, data winning:
//
//	userCard := hxwrap.WithAsync(cardView,
//	    func(ctx context.Context, v CardVars) (CardData, error) {
//	        return repo.LoadUser(ctx, v.UserID)
//	    }, nil)
//
//	// Live instance, refreshed by its triggers:
//	m := userCard.Mount(ctx, CardVars{UserID: 7})
//	defer m.Close()
//	m.Component().Render(ctx, w)
//
//	// One-shot server render that waits for the first result:
//	userCard.View()(CardVars{UserID: 7}).Render(ctx, w)
//
// While the fetch is pending the placeholder view renders; a failed fetch
// renders the error view with CatchProps. The fetch lifecycle itself lives
// in lib/async; shared state lives in lib/store.
package hxwrap
