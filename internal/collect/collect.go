// Package collect implements the collection layer: the clients that talk to
// autocomplete, trend, video-search, and comment providers. Everything here
// returns empty results on no-data and a wrapped internalerr.ErrCollection
// on transport failure; rate limiting and quota bookkeeping live here so
// the engine never has to think about them.
package collect

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/cognicore/vidgap/pkg/vidgap"
	"github.com/cognicore/vidgap/pkg/vidgap/config"
	"github.com/cognicore/vidgap/pkg/vidgap/internalerr"
)

// Quota unit costs per video API call type.
const (
	quotaSearch  = 100
	quotaVideos  = 1
	quotaChannel = 1
)

// HTTPCollector talks to the real providers.
type HTTPCollector struct {
	cfg    config.Config
	apiKey string
	client *http.Client
	log    logrus.FieldLogger

	// one limiter per provider so a chatty autocomplete loop cannot
	// starve the metered video API
	autocompleteLimit *rate.Limiter
	trendsLimit       *rate.Limiter
	videoLimit        *rate.Limiter

	// atomic: one collector serves concurrent analyses
	quotaUsed atomic.Int64
}

var _ vidgap.Collector = (*HTTPCollector)(nil)

// Options configures an HTTPCollector.
type Options struct {
	Config config.Config

	// APIKey is the video platform Data API key. Empty disables the
	// video endpoints (they return ErrCollection).
	APIKey string

	HTTPClient *http.Client
	Log        logrus.FieldLogger
}

// New creates a collector with per-provider rate limiters derived from the
// configured requests-per-minute.
func New(opts Options) *HTTPCollector {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	rpm := opts.Config.Collect.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	perProvider := rate.Limit(float64(rpm) / 60.0)

	return &HTTPCollector{
		cfg:               opts.Config,
		apiKey:            opts.APIKey,
		client:            client,
		log:               log,
		autocompleteLimit: rate.NewLimiter(perProvider, 5),
		trendsLimit:       rate.NewLimiter(perProvider, 2),
		videoLimit:        rate.NewLimiter(perProvider, 5),
	}
}

// QuotaUsed reports the metered API units consumed this session.
func (c *HTTPCollector) QuotaUsed() int {
	return int(c.quotaUsed.Load())
}

func (c *HTTPCollector) trackQuota(units int) {
	c.quotaUsed.Add(int64(units))
}

func collectionErr(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", internalerr.ErrCollection, provider, err)
}
