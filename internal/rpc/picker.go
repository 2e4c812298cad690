// Package rpc chooses which Starknet node endpoint the client talks to.
package rpc

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrNoHealthyRPC is returned when no endpoint can be selected.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm names an endpoint selection strategy.
type Algorithm string

const (
	AlgorithmFastest    Algorithm = "fastest"
	AlgorithmRoundRobin Algorithm = "round-robin"
	AlgorithmFailover   Algorithm = "failover"
)

// Endpoints lagging the best block by more than this are skipped.
const maxBlockLag = 3

// ParseAlgorithm validates an algorithm name. Empty means fastest.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmRoundRobin, AlgorithmFailover:
		return a, nil
	}
	return "", fmt.Errorf("unknown rpc algorithm %q (want fastest, round-robin or failover)", s)
}

// Endpoint is a node endpoint and what was measured about it.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     string
	Checked     bool // a health check ran
	Healthy     bool // meaningful only when Checked
	Err         error
}

// usable reports whether e may be selected: unchecked endpoints get the
// benefit of the doubt.
func (e Endpoint) usable() bool { return !e.Checked || e.Healthy }

// Picker selects one endpoint per call. Safe for concurrent use.
type Picker struct {
	algo Algorithm
	mu   sync.Mutex
	next int
}

// NewPicker returns a picker using algo.
func NewPicker(algo Algorithm) *Picker {
	return &Picker{algo: algo}
}

// Pick chooses an endpoint from the list.
func (p *Picker) Pick(endpoints []Endpoint) (Endpoint, error) {
	switch p.algo {
	case AlgorithmFailover:
		for _, e := range endpoints {
			if e.usable() {
				return e, nil
			}
		}
		return Endpoint{}, ErrNoHealthyRPC
	case AlgorithmRoundRobin:
		live := fresh(endpoints)
		if len(live) == 0 {
			return Endpoint{}, ErrNoHealthyRPC
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		e := live[p.next%len(live)]
		p.next = (p.next + 1) % len(live)
		return e, nil
	default:
		live := fresh(endpoints)
		if len(live) == 0 {
			return Endpoint{}, ErrNoHealthyRPC
		}
		sort.SliceStable(live, func(i, j int) bool { return faster(live[i], live[j]) })
		return live[0], nil
	}
}

// fresh returns usable endpoints within maxBlockLag of the best block.
func fresh(endpoints []Endpoint) []Endpoint {
	var best uint64
	for _, e := range endpoints {
		if e.usable() && e.BlockNumber > best {
			best = e.BlockNumber
		}
	}
	var out []Endpoint
	for _, e := range endpoints {
		if !e.usable() {
			continue
		}
		if e.BlockNumber > 0 && best-e.BlockNumber > maxBlockLag {
			continue
		}
		out = append(out, e)
	}
	return out
}

// faster orders by latency; unmeasured endpoints sort last.
func faster(a, b Endpoint) bool {
	switch {
	case a.Latency == 0:
		return false
	case b.Latency == 0:
		return true
	}
	return a.Latency < b.Latency
}
