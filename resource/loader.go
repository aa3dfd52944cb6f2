// Package resource loads the images a layout references and hands them to the
// rasterizer through readiness futures.
//
// Sources may be http(s) URLs, data: URIs, file:// URLs or plain file paths.
// Concurrent loads of one source share a single fetch, and decoded images
// are cached for a configurable TTL.
package resource

import (
	"context"
	"fmt"
	"image"
	"time"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"resty.dev/v3"

	"github.com/lvillar/docsmith"
	"github.com/lvillar/docsmith/internal/cache"
	"github.com/lvillar/docsmith/internal/logger"
)

// Defaults for NewLoader.
const (
	DefaultTimeout          = 15 * time.Second
	DefaultRetryCount       = 2
	DefaultRetryWaitTime    = 200 * time.Millisecond
	DefaultRetryMaxWaitTime = 2 * time.Second
	DefaultCacheTTL         = 10 * time.Minute
	DefaultMaxBytes         = 20 << 20
	DefaultUserAgent        = "docsmith/1.0"
	preloadLimit            = 4
)

// HTTPOptions configures the HTTP client used for remote images.
type HTTPOptions struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	UserAgent        string
	MaxBytes         int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTP configures the HTTP client. Zero fields keep their defaults.
func WithHTTP(o HTTPOptions) Option {
	return func(l *Loader) {
		if o.RetryCount > 0 {
			l.http.RetryCount = o.RetryCount
		}
		if o.RetryWaitTime > 0 {
			l.http.RetryWaitTime = o.RetryWaitTime
		}
		if o.RetryMaxWaitTime > 0 {
			l.http.RetryMaxWaitTime = o.RetryMaxWaitTime
		}
		if o.Timeout > 0 {
			l.http.Timeout = o.Timeout
		}
		if o.UserAgent != "" {
			l.http.UserAgent = o.UserAgent
		}
		if o.MaxBytes > 0 {
			l.http.MaxBytes = o.MaxBytes
		}
	}
}

// WithClient uses c for remote images instead of building a client.
func WithClient(c *resty.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithCacheTTL sets how long decoded images are kept. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(l *Loader) { l.ttl = ttl }
}

// WithBaseDir resolves relative file paths against dir.
func WithBaseDir(dir string) Option {
	return func(l *Loader) { l.baseDir = dir }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = logger.OrNop(log) }
}

// WithFollowPages makes remote sources that answer with an HTML page resolve
// to the page's preview image.
func WithFollowPages(follow bool) Option {
	return func(l *Loader) { l.followPages = follow }
}

// Loader fetches and decodes images. It is safe for concurrent use.
type Loader struct {
	client      *resty.Client
	ownsClient  bool
	http        HTTPOptions
	group       singleflight.Group
	cache       cache.Cache[string, image.Image]
	ttl         time.Duration
	baseDir     string
	followPages bool
	log         *zap.Logger
}

// NewLoader returns a Loader configured by opts.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		http: HTTPOptions{
			RetryCount:       DefaultRetryCount,
			RetryWaitTime:    DefaultRetryWaitTime,
			RetryMaxWaitTime: DefaultRetryMaxWaitTime,
			Timeout:          DefaultTimeout,
			UserAgent:        DefaultUserAgent,
			MaxBytes:         DefaultMaxBytes,
		},
		ttl:         DefaultCacheTTL,
		followPages: true,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.client == nil {
		l.client = resty.New().
			SetRetryCount(l.http.RetryCount).
			SetRetryWaitTime(l.http.RetryWaitTime).
			SetRetryMaxWaitTime(l.http.RetryMaxWaitTime).
			SetTimeout(l.http.Timeout).
			SetResponseBodyLimit(l.http.MaxBytes).
			SetHeader("User-Agent", l.http.UserAgent)
		l.ownsClient = true
	}
	if l.ttl > 0 {
		l.cache = cache.NewTTLCache[string, image.Image]()
	} else {
		l.cache = cache.NoopCache[string, image.Image]{}
	}
	return l
}

// Sweep drops expired images from the cache and returns how many were
// removed. Long-running callers run it periodically.
func (l *Loader) Sweep() int {
	if c, ok := l.cache.(interface{ Sweep() int }); ok {
		return c.Sweep()
	}
	return 0
}

// Close releases the HTTP client when the Loader created it.
func (l *Loader) Close() error {
	if l.ownsClient {
		return l.client.Close()
	}
	return nil
}

// Pending is the readiness future of one load.
type Pending struct {
	src  string
	done chan struct{}
	img  image.Image
	err  error
}

// Source returns the source being loaded.
func (p *Pending) Source() string { return p.src }

// Done is closed once the load has finished.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the image is decoded or ctx is done.
func (p *Pending) Wait(ctx context.Context) (image.Image, error) {
	select {
	case <-p.done:
		return p.img, p.err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %w", docsmith.ErrResourceLoad, p.src, ctx.Err())
	}
}

// Load starts loading src and returns immediately. The fetch is shared with
// concurrent loads of the same source and survives cancellation of ctx, so
// other waiters are not starved by one caller giving up.
func (l *Loader) Load(ctx context.Context, src string) *Pending {
	p := &Pending{src: src, done: make(chan struct{})}
	if img, ok := l.cache.Get(src); ok {
		p.img = img
		close(p.done)
		return p
	}
	ch := l.group.DoChan(src, func() (any, error) {
		img, err := l.fetch(context.WithoutCancel(ctx), src, 0)
		if err != nil {
			return nil, err
		}
		l.cache.Set(src, img, l.ttl)
		return img, nil
	})
	go func() {
		defer close(p.done)
		res := <-ch
		if res.Err != nil {
			p.err = fmt.Errorf("%w: %s: %w", docsmith.ErrResourceLoad, src, res.Err)
			logger.FromContext(ctx).Warn("image load failed", zap.String("src", abbreviate(src)), zap.Error(res.Err))
			return
		}
		p.img = res.Val.(image.Image)
	}()
	return p
}

// Get loads src and waits for it.
func (l *Loader) Get(ctx context.Context, src string) (image.Image, error) {
	return l.Load(ctx, src).Wait(ctx)
}

// Preload loads every source concurrently and returns the decoded images
// keyed by source. It fails if any source fails.
func (l *Loader) Preload(ctx context.Context, sources []string) (map[string]image.Image, error) {
	pending := make([]*Pending, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, src := range sources {
		if src == "" || seen[src] {
			continue
		}
		seen[src] = true
		pending = append(pending, l.Load(ctx, src))
	}

	out := make(map[string]image.Image, len(pending))
	imgs := make([]image.Image, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadLimit)
	for i, p := range pending {
		g.Go(func() error {
			img, err := p.Wait(gctx)
			if err != nil {
				return err
			}
			imgs[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, p := range pending {
		out[p.src] = imgs[i]
	}
	return out, nil
}

func abbreviate(src string) string {
	const limit = 64
	if len(src) <= limit {
		return src
	}
	return src[:limit] + "..."
}
