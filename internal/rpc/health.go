package rpc

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/stark20/internal/starknet"
)

// probeTimeout bounds a single endpoint probe.
const probeTimeout = 5 * time.Second

// Probe measures one endpoint.
type Probe func(ctx context.Context, url string) Endpoint

// HealthCheck dials url and measures block height latency and chain id.
func HealthCheck(ctx context.Context, url string) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	ep := Endpoint{URL: url, Checked: true}
	c, err := starknet.Dial(ctx, url)
	if err != nil {
		ep.Err = err
		return ep
	}
	defer c.Close()

	start := time.Now()
	block, err := c.BlockNumber(ctx)
	if err != nil {
		ep.Err = err
		return ep
	}
	ep.Latency = time.Since(start)
	ep.BlockNumber = block

	if ep.ChainID, err = c.ChainID(ctx); err != nil {
		ep.Err = err
		return ep
	}
	ep.Healthy = true
	return ep
}

// Benchmark probes every url concurrently. Results keep the input order.
// Endpoints reporting a chain other than wantChain (when set) are unhealthy.
func Benchmark(ctx context.Context, urls []string, wantChain string, probe Probe) []Endpoint {
	if probe == nil {
		probe = HealthCheck
	}
	out := make([]Endpoint, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			ep := probe(gctx, u)
			if ep.Healthy && wantChain != "" && ep.ChainID != wantChain {
				ep.Healthy = false
				ep.Err = fmt.Errorf("chain %s, want %s", ep.ChainID, wantChain)
			}
			out[i] = ep
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Select returns the best URL among urls. A single URL is returned without
// probing.
func Select(ctx context.Context, urls []string, algo Algorithm, probe Probe) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}
	ep, err := NewPicker(algo).Pick(Benchmark(ctx, urls, "", probe))
	if err != nil {
		return "", err
	}
	return ep.URL, nil
}
