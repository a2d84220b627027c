package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"cadence/internal/catalog"
	"cadence/internal/config"
	"cadence/internal/featurecache"
	"cadence/internal/services/llm"
)

// minFreeBytes is the floor for the data volume. The catalog and cache are
// small, but exports and logs accumulate between cleanups.
const minFreeBytes = 256 << 20

const probeTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the volume holding path has room left for the
// catalog, cache, exports, and logs.
func CheckDiskSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs %s: %v", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	detail := fmt.Sprintf("%.1f GiB free", float64(free)/float64(1<<30))
	if free < minFreeBytes {
		return Result{Name: name, Detail: detail + " (below 256 MiB minimum)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// CheckCatalog opens the catalog database and runs its integrity check.
func CheckCatalog(ctx context.Context, cfg *config.Config) Result {
	const name = "Catalog database"

	store, err := catalog.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open failed: %v", err)}
	}
	defer store.Close()

	health, err := store.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed: %v", err)}
	}
	if !health.IntegrityCheck {
		detail := "integrity check failed"
		if health.Error != "" {
			detail = health.Error
		}
		return Result{Name: name, Detail: detail}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d tracks", health.TotalTracks)}
}

// CheckCache loads the resolution cache. A missing file passes; a corrupt
// file degrades to an empty cache, which the cache logs and this check
// surfaces only as a count.
func CheckCache(cfg *config.Config) Result {
	const name = "Resolution cache"

	cache := featurecache.NewCache(cfg.Paths.CacheFile, 1, nil)
	count := cache.Count()
	if count == 0 {
		return Result{Name: name, Passed: true, Detail: "empty"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d cached resolutions", count)}
}

// CheckProviders pings the base endpoint of every enabled provider.
func CheckProviders(ctx context.Context, cfg *config.Config) []Result {
	type target struct {
		name     string
		provider config.Provider
	}
	targets := []target{
		{"Deezer", cfg.Providers.Deezer},
		{"MusicBrainz", cfg.Providers.MusicBrainz},
		{"AcousticBrainz", cfg.Providers.AcousticBrainz},
		{"GetSongBPM", cfg.Providers.GetSongBPM},
		{"iTunes", cfg.Providers.ITunes},
		{"Genius", cfg.Providers.Genius},
	}

	var results []Result
	for _, tgt := range targets {
		if !tgt.provider.Enabled {
			continue
		}
		results = append(results, CheckEndpoint(ctx, tgt.name, tgt.provider.BaseURL, cfg.Providers.UserAgent))
	}
	return results
}

// CheckEndpoint verifies that the base URL answers HTTP at all. Any response
// short of a server error counts; providers routinely return 400 or 404 for
// a bare base-path request.
func CheckEndpoint(ctx context.Context, name, baseURL, agent string) Result {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	if agent = strings.TrimSpace(agent); agent != "" {
		req.Header.Set("User-Agent", agent)
	}

	client := &http.Client{Timeout: probeTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("unreachable (%v)", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("endpoint unhealthy (%d)", resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: "reachable"}
}

// CheckLLM verifies that the annotation API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// summarizeLLMError produces a human-readable summary for LLM health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (annotation API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (annotation API unreachable)"
	}
	return err.Error()
}
