package youtube

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/samber/lo"
)

const defaultThumbnailHost = "https://i.ytimg.com"

// Size tiers probed for a poster, most detailed first.
var posterSizes = []string{"maxresdefault", "sddefault", "hqdefault"}

// PosterCandidates returns the fixed ordered probe list for an
// identifier: three size tiers, webp before jpg within each tier.
func PosterCandidates(host string, id VideoID) []string {
	return lo.FlatMap(posterSizes, func(size string, _ int) []string {
		return []string{
			fmt.Sprintf("%s/vi_webp/%s/%s.webp", host, id, size),
			fmt.Sprintf("%s/vi/%s/%s.jpg", host, id, size),
		}
	})
}

// PosterResolver discovers preview images for video identifiers by
// probing the thumbnail host. Results are cached per identifier in a
// shared PosterCache.
type PosterResolver struct {
	client *http.Client
	cache  PosterCache
	log    *slog.Logger
	host   string
}

// NewPosterResolver returns a resolver using the given HTTP client and
// shared cache. A nil client falls back to http.DefaultClient; a nil
// logger discards output.
func NewPosterResolver(client *http.Client, cache PosterCache, log *slog.Logger) *PosterResolver {
	if client == nil {
		client = http.DefaultClient
	}
	if cache == nil {
		cache = NewInMemoryPosterCache()
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PosterResolver{client: client, cache: cache, log: log, host: defaultThumbnailHost}
}

// Cached returns the cached poster URL for id, if any.
func (r *PosterResolver) Cached(id VideoID) (string, bool) {
	return r.cache.Get(id)
}

// Resolve finds a poster for id and calls announce exactly once with
// the winning URL, or with "" when every candidate fails. A cache hit
// announces synchronously without any network traffic. Candidates are
// probed sequentially with lightweight HEAD requests; only the status
// class is inspected. Cancelling ctx mid-flight suppresses the
// announcement entirely.
func (r *PosterResolver) Resolve(ctx context.Context, id VideoID, announce func(url string)) {
	if url, ok := r.cache.Get(id); ok {
		announce(url)
		return
	}
	for _, candidate := range PosterCandidates(r.host, id) {
		if ctx.Err() != nil {
			return
		}
		if r.probe(ctx, candidate) {
			r.cache.Put(id, candidate)
			if ctx.Err() != nil {
				return
			}
			announce(candidate)
			return
		}
	}
	if ctx.Err() != nil {
		return
	}
	// Exhausted: an explicit "no poster" signal, distinct from
	// "not yet resolved".
	announce("")
}

// probe reports whether the candidate URL is reachable. Network errors
// and error-class statuses both count as a miss.
func (r *PosterResolver) probe(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Debug("poster probe failed", slog.String("url", url), slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}
