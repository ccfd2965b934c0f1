// Package registry holds the HTTP clients for the collaborating vessel and
// meta services. Both sit behind circuit breakers so a dead upstream fails
// fast instead of tying up request handlers.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/seakeeper/seakeeper/pkg/types"
)

// DefaultShipTypeCode is assumed when the meta service cannot resolve a
// vessel's ship type. Analytics stays available with tanker parameters
// rather than failing outright.
const DefaultShipTypeCode = "I001"

var (
	// ErrVesselNotFound means the vessel service has no such vessel.
	ErrVesselNotFound = errors.New("registry: vessel not found")
	// ErrUpstreamRejected means an upstream answered with an unexpected status.
	ErrUpstreamRejected = errors.New("registry: upstream rejected request")
	// ErrUpstreamUnavailable means the upstream could not be reached, or its
	// breaker is open.
	ErrUpstreamUnavailable = errors.New("registry: upstream unavailable")
)

// Client resolves vessel particulars through the vessel service and ship
// type codes through the meta service.
type Client struct {
	vesselURL string
	metaURL   string
	http      *http.Client
	vesselCB  *gobreaker.CircuitBreaker
	metaCB    *gobreaker.CircuitBreaker
	log       *slog.Logger

	mu        sync.RWMutex
	shipTypes map[int]string
}

// New creates a registry client for the two upstream base URLs.
func New(vesselURL, metaURL string, log *slog.Logger) *Client {
	return &Client{
		vesselURL: vesselURL,
		metaURL:   metaURL,
		http:      &http.Client{Timeout: 10 * time.Second},
		vesselCB: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "vessel-service",
			// a 404 is a valid answer, not an upstream fault
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrVesselNotFound)
			},
		}),
		metaCB:    gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "meta-service"}),
		log:       log,
	}
}

// vesselResponse is the wire shape of the vessel service. gross_tone keeps
// the upstream's field spelling.
type vesselResponse struct {
	DeadWeight   float64 `json:"dead_weight"`
	GrossTonnage float64 `json:"gross_tone"`
	ShipType     int     `json:"ship_type"`
	Pitch        float64 `json:"pitch"`
}

// shipTypeEntry is one row of the meta service's ship type listing.
type shipTypeEntry struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
}

// Vessel fetches a vessel's particulars and resolves its ship type code.
// Meta-service failure is not fatal: the code degrades to
// DefaultShipTypeCode with a warning.
func (c *Client) Vessel(ctx context.Context, vesselID int) (*types.VesselInfo, error) {
	url := fmt.Sprintf("%s/vessel/%d", c.vesselURL, vesselID)
	body, err := c.get(ctx, c.vesselCB, url)
	if err != nil {
		return nil, err
	}
	var vr vesselResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("%w: decoding vessel %d: %v", ErrUpstreamRejected, vesselID, err)
	}
	info := &types.VesselInfo{
		VesselID:     vesselID,
		DeadWeight:   vr.DeadWeight,
		GrossTonnage: vr.GrossTonnage,
		Pitch:        vr.Pitch,
	}
	if info.Pitch == 0 {
		info.Pitch = types.DefaultPitch
	}
	info.ShipTypeCode = c.shipTypeCode(ctx, vr.ShipType)
	return info, nil
}

// shipTypeCode maps a ship type id to its code through the meta service's
// listing, loaded once and cached for the life of the process.
func (c *Client) shipTypeCode(ctx context.Context, id int) string {
	c.mu.RLock()
	cached := c.shipTypes
	c.mu.RUnlock()

	if cached == nil {
		loaded, err := c.loadShipTypes(ctx)
		if err != nil {
			c.log.Warn("ship type lookup degraded to default",
				"ship_type_id", id, "default", DefaultShipTypeCode, "error", err)
			return DefaultShipTypeCode
		}
		c.mu.Lock()
		if c.shipTypes == nil {
			c.shipTypes = loaded
		}
		cached = c.shipTypes
		c.mu.Unlock()
	}

	code, ok := cached[id]
	if !ok {
		return DefaultShipTypeCode
	}
	return code
}

func (c *Client) loadShipTypes(ctx context.Context) (map[int]string, error) {
	body, err := c.get(ctx, c.metaCB, c.metaURL+"/meta/ship_type")
	if err != nil {
		return nil, err
	}
	var entries []shipTypeEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: decoding ship types: %v", ErrUpstreamRejected, err)
	}
	m := make(map[int]string, len(entries))
	for _, e := range entries {
		m[e.ID] = e.Code
	}
	return m, nil
}

// get performs one upstream GET through the given breaker, translating
// transport and status failures into the registry error taxonomy.
func (c *Client) get(ctx context.Context, cb *gobreaker.CircuitBreaker, url string) ([]byte, error) {
	body, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrVesselNotFound
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: %s returned %d", ErrUpstreamRejected, url, resp.StatusCode)
		}
		return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	})
	if err != nil {
		if errors.Is(err, ErrVesselNotFound) || errors.Is(err, ErrUpstreamRejected) {
			return nil, err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: breaker open for %s", ErrUpstreamUnavailable, url)
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return body.([]byte), nil
}
