// Package hxwrapecho provides Echo framework integration for hxwrap views.
//
// Serve an async view at a URL whose vars travel in a signed token:
//
//	e := echo.New()
//	ep := hxwrapecho.Mount(e, "/_w/user-card", userCard, hxwrapecho.WithKey(key))
//	href, _ := ep.URL(CardVars{UserID: 7}) // "/_w/user-card?v=..."
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware, hxwrapecho.Flags(flagsForUser))
//	hxwrapecho.MountGroup(g, "/user-card", userCard)
package hxwrapecho

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/pthm/hxwrap"
	"github.com/pthm/hxwrap/lib/encoding"
)

// VarsParam is the query parameter carrying the vars token.
const VarsParam = "v"

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	key       []byte
	encrypted bool
	live      bool
	idle      time.Duration
}

// WithKey sets the signing key for vars tokens.
// The key should be at least 32 bytes of cryptographically random data.
// If not provided, a random key is generated (suitable for development only).
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithEncryptedVars makes vars tokens opaque instead of signed.
func WithEncryptedVars() Option {
	return func(o *options) {
		o.encrypted = true
	}
}

// WithLive keeps one mounted instance per distinct vars token and renders
// its current state on every request, so clients can poll the URL and
// observe interval, reconnect and retry refetches. Instances not
// requested for idle are closed by a sweep that runs every idle period
// and before each request, until Close. Without WithLive each request
// renders a one-shot view that waits for the fetch under the request
// context.
func WithLive(idle time.Duration) Option {
	return func(o *options) {
		o.live = true
		o.idle = idle
	}
}

// Endpoint serves one async view.
type Endpoint[V, T, P any] struct {
	async *hxwrap.Async[V, T, P]
	codec *hxwrap.Codec
	path  string
	live  bool
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	instances map[string]*instance[V, T, P]

	stopOnce sync.Once
	stop     chan struct{}
}

type instance[V, T, P any] struct {
	m    *hxwrap.Mounted[V, T, P]
	seen time.Time
}

// Mount serves a on e at path.
func Mount[V, T, P any](e *echo.Echo, path string, a *hxwrap.Async[V, T, P], opts ...Option) *Endpoint[V, T, P] {
	ep := newEndpoint(path, a, opts)
	e.GET(path, ep.handle)
	return ep
}

// MountGroup serves a on g at path, sharing the group's middleware.
func MountGroup[V, T, P any](g *echo.Group, path string, a *hxwrap.Async[V, T, P], opts ...Option) *Endpoint[V, T, P] {
	ep := newEndpoint(path, a, opts)
	g.GET(path, ep.handle)
	return ep
}

func newEndpoint[V, T, P any](path string, a *hxwrap.Async[V, T, P], opts []Option) *Endpoint[V, T, P] {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxwrapecho: failed to generate random key: %v", err))
		}
	}

	var codecOpts []encoding.Option
	if o.encrypted {
		codecOpts = append(codecOpts, encoding.Encrypted())
	}
	codec, err := hxwrap.NewCodec(key, codecOpts...)
	if err != nil {
		panic(fmt.Sprintf("hxwrapecho: codec: %v", err))
	}

	ep := &Endpoint[V, T, P]{
		async:     a,
		codec:     codec,
		path:      path,
		live:      o.live,
		idle:      o.idle,
		now:       time.Now,
		instances: make(map[string]*instance[V, T, P]),
		stop:      make(chan struct{}),
	}
	if ep.live && ep.idle > 0 {
		go ep.sweepEvery(ep.idle)
	}
	return ep
}

func (ep *Endpoint[V, T, P]) sweepEvery(d time.Duration) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ep.stop:
			return
		case <-t.C:
			ep.sweep("")
		}
	}
}

// sweep closes instances idle for longer than ep.idle, except keep.
func (ep *Endpoint[V, T, P]) sweep(keep string) {
	if ep.idle <= 0 {
		return
	}
	now := ep.now()

	ep.mu.Lock()
	var expired []*hxwrap.Mounted[V, T, P]
	for k, in := range ep.instances {
		if k != keep && now.Sub(in.seen) > ep.idle {
			expired = append(expired, in.m)
			delete(ep.instances, k)
		}
	}
	ep.mu.Unlock()

	for _, m := range expired {
		m.Close()
	}
}

// URL returns the endpoint path with vars encoded in the query string.
// Paths mounted on a group are relative to the group prefix.
func (ep *Endpoint[V, T, P]) URL(vars V) (string, error) {
	token, err := hxwrap.EncodeVars(ep.codec, vars)
	if err != nil {
		return "", err
	}
	return ep.path + "?" + url.Values{VarsParam: {token}}.Encode(), nil
}

// Live returns the number of live instances.
func (ep *Endpoint[V, T, P]) Live() int {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	return len(ep.instances)
}

// Close stops the idle sweep and tears down every live instance.
func (ep *Endpoint[V, T, P]) Close() {
	ep.stopOnce.Do(func() { close(ep.stop) })

	ep.mu.Lock()
	instances := ep.instances
	ep.instances = make(map[string]*instance[V, T, P])
	ep.mu.Unlock()

	for _, in := range instances {
		in.m.Close()
	}
}

func (ep *Endpoint[V, T, P]) handle(c echo.Context) error {
	token := c.QueryParam(VarsParam)
	vars, err := hxwrap.DecodeVars[V](ep.codec, token)
	if err != nil {
		if hxwrap.IsDecodeError(err) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid vars")
		}
		return err
	}

	if !ep.live {
		return Render(c, ep.async.View()(vars))
	}
	return Render(c, ep.acquire(token, vars).Component())
}

// acquire returns the live instance for token, mounting it on first use,
// after sweeping idle instances.
func (ep *Endpoint[V, T, P]) acquire(token string, vars V) *hxwrap.Mounted[V, T, P] {
	ep.sweep(token)

	ep.mu.Lock()
	defer ep.mu.Unlock()
	in, ok := ep.instances[token]
	if !ok {
		in = &instance[V, T, P]{m: ep.async.Mount(context.Background(), vars)}
		ep.instances[token] = in
	}
	in.seen = ep.now()
	return in.m
}

// Flags installs the flags returned by resolve into the request context,
// for hxwrap.WithFlag and hxwrap.FlagsEnabled.
//
//	e.Use(hxwrapecho.Flags(func(c echo.Context) []string {
//	    return userFlags(c)
//	}))
func Flags(resolve func(c echo.Context) []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			c.SetRequest(r.WithContext(hxwrap.WithFlags(r.Context(), resolve(c)...)))
			return next(c)
		}
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return hxwrapecho.Render(c, Profile(props))
//	}
func Render(c echo.Context, component templ.Component) error {
	return hxwrap.Render(c.Response(), c.Request(), component)
}
