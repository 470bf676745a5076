// Package keepalive pings the service's own health endpoint at a fixed
// interval so free-tier hosts do not idle the instance out.
package keepalive

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	log      zerolog.Logger
}

// NewPinger returns a nil pinger when url is empty; Run on a nil pinger is
// a no-op.
func NewPinger(url string, interval time.Duration) *Pinger {
	if url == "" {
		return nil
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Pinger{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Str("component", "keepalive").Logger(),
	}
}

// Run blocks until ctx is cancelled. Ping failures are logged and the loop
// keeps going; this loop never touches storage or credentials.
func (p *Pinger) Run(ctx context.Context) {
	if p == nil {
		return
	}

	p.log.Info().Str("url", p.url).Dur("interval", p.interval).Msg("keepalive started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("keepalive stopped")
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.log.Warn().Err(err).Msg("keepalive request build failed")
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Warn().Err(err).Msg("keepalive ping failed")
		return
	}
	resp.Body.Close()

	p.log.Debug().Int("status", resp.StatusCode).Msg("keepalive ping")
}
