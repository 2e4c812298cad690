// Package journal keeps a local history of submitted write calls and their
// confirmation outcome.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/stark20/internal/felt"
	"github.com/Mohsinsiddi/stark20/internal/txflow"
)

// ErrRecordNotFound is returned when no record matches a hash or id.
var ErrRecordNotFound = errors.New("journal record not found")

// DefaultLimit caps the number of records kept on disk.
const DefaultLimit = 500

// Record is one submitted transaction.
type Record struct {
	ID          string            `json:"id"`
	Hash        string            `json:"hash"`
	Operation   string            `json:"operation"`
	Contract    string            `json:"contract"`
	State       string            `json:"state"`
	Message     string            `json:"message,omitempty"`
	Error       string            `json:"error,omitempty"`
	Event       string            `json:"event,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Journal is a JSON-file backed transaction history. An empty path keeps
// records in memory only.
type Journal struct {
	mu      sync.Mutex
	path    string
	limit   int
	records []*Record
	loaded  bool
	log     zerolog.Logger
}

// Open returns a journal stored at path. The file is read lazily.
func Open(path string) *Journal {
	return &Journal{path: path, limit: DefaultLimit, log: zerolog.Nop()}
}

// NewInMemory returns a journal that is never written to disk.
func NewInMemory() *Journal {
	return &Journal{limit: DefaultLimit, loaded: true, log: zerolog.Nop()}
}

// WithLogger sets the logger that reports history that could not be read or
// written while observing transitions.
func (j *Journal) WithLogger(l zerolog.Logger) *Journal {
	j.log = l
	return j
}

// DefaultPath returns ~/.stark20/txs.json inside configDir.
func DefaultPath(configDir string) string {
	return filepath.Join(configDir, "txs.json")
}

// Observe records pipeline transitions. Pass it to txflow.WithObserver.
func (j *Journal) Observe(tr txflow.Transition) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.load(); err != nil {
		j.log.Error().Err(err).Str("tx", tr.Tx.Hash).Msg("journal not recorded")
		return
	}

	rec := j.byHash(tr.Tx.Hash)
	if rec == nil {
		rec = &Record{
			ID:          uuid.NewString(),
			Hash:        tr.Tx.Hash,
			Operation:   tr.Tx.Operation,
			SubmittedAt: tr.Tx.SubmittedAt,
		}
		if tr.Tx.Contract != nil {
			rec.Contract = felt.FormatAddress(tr.Tx.Contract)
		}
		if rec.SubmittedAt.IsZero() {
			rec.SubmittedAt = tr.At
		}
		j.records = append(j.records, rec)
	}
	rec.State = tr.To.String()
	rec.UpdatedAt = tr.At
	if o := tr.Outcome; o != nil {
		rec.Message = o.Message
		if o.Err != nil {
			rec.Error = o.Err.Error()
		}
		if o.Event != nil {
			rec.Event = o.Event.EventName()
			rec.Fields = o.Event.Fields()
		}
	}
	if err := j.save(); err != nil {
		j.log.Error().Err(err).Str("tx", tr.Tx.Hash).Str("path", j.path).Msg("journal not saved")
	}
}

// List returns up to n records, newest first. n <= 0 returns all.
func (j *Journal) List(n int) ([]*Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.load(); err != nil {
		return nil, err
	}
	out := make([]*Record, len(j.records))
	copy(out, j.records)
	sort.SliceStable(out, func(a, b int) bool { return out[a].SubmittedAt.After(out[b].SubmittedAt) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Find returns the record with the given transaction hash or id.
func (j *Journal) Find(ref string) (*Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.load(); err != nil {
		return nil, err
	}
	for _, r := range j.records {
		if r.ID == ref || felt.SameAddress(r.Hash, ref) {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, ref)
}

// Clear removes every record.
func (j *Journal) Clear() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = nil
	j.loaded = true
	return j.save()
}

func (j *Journal) byHash(hash string) *Record {
	for _, r := range j.records {
		if r.Hash == hash {
			return r
		}
	}
	return nil
}

func (j *Journal) load() error {
	if j.loaded {
		return nil
	}
	data, err := os.ReadFile(j.path)
	if errors.Is(err, os.ErrNotExist) {
		j.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}
	if err := json.Unmarshal(data, &j.records); err != nil {
		return fmt.Errorf("parsing journal: %w", err)
	}
	j.loaded = true
	return nil
}

func (j *Journal) save() error {
	if j.path == "" {
		return nil
	}
	if over := len(j.records) - j.limit; over > 0 {
		j.records = j.records[over:]
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(j.records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(j.path, data, 0o600)
}
