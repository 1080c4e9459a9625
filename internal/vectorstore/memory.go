package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const snapshotFile = "collection.json"

// MemoryBackend is an in-process collection using brute-force cosine distance.
// When dir is set the collection is loaded from and flushed to a JSON snapshot
// after every write.
type MemoryBackend struct {
	mu        sync.RWMutex
	records   map[string]Record
	order     []string
	dimension int
	path      string
}

type snapshot struct {
	Dimension int      `json:"dimension"`
	Records   []Record `json:"records"`
}

func NewMemoryBackend(dir string) (*MemoryBackend, error) {
	b := &MemoryBackend{records: map[string]Record{}}
	if dir == "" {
		return b, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create persist directory failed: %w", err)
	}
	b.path = filepath.Join(dir, snapshotFile)
	if err := b.load(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *MemoryBackend) Name() string { return "memory" }

// Add inserts all records or none. Existing ids are rejected with ErrDuplicateID.
func (b *MemoryBackend) Add(ctx context.Context, records []Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	dim := b.dimension
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := b.records[r.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		if _, ok := seen[r.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = struct{}{}
		if dim == 0 {
			dim = len(r.Embedding)
		}
		if len(r.Embedding) != dim {
			return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(r.Embedding), dim)
		}
	}

	b.dimension = dim
	for _, r := range records {
		b.records[r.ID] = r
		b.order = append(b.order, r.ID)
	}
	return b.flush()
}

func (b *MemoryBackend) Query(ctx context.Context, embedding []float32, k int, where map[string]interface{}) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.dimension != 0 && len(embedding) != b.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(embedding), b.dimension)
	}

	matches := make([]Match, 0, len(b.records))
	for _, id := range b.order {
		r := b.records[id]
		if !matchesFilter(r.Metadata, where) {
			continue
		}
		matches = append(matches, Match{Record: r, Distance: cosineDistance(embedding, r.Embedding)})
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (b *MemoryBackend) Get(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.records[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// Delete removes the given ids; unknown ids are ignored.
func (b *MemoryBackend) Delete(ctx context.Context, ids ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := b.records[id]; ok {
			drop[id] = struct{}{}
			delete(b.records, id)
		}
	}
	if len(drop) == 0 {
		return nil
	}
	kept := b.order[:0]
	for _, id := range b.order {
		if _, ok := drop[id]; !ok {
			kept = append(kept, id)
		}
	}
	b.order = kept
	if len(b.records) == 0 {
		b.dimension = 0
	}
	return b.flush()
}

func (b *MemoryBackend) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.records), nil
}

func (b *MemoryBackend) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = map[string]Record{}
	b.order = nil
	b.dimension = 0
	return b.flush()
}

func (b *MemoryBackend) load() error {
	raw, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot failed: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("parse snapshot failed: %w", err)
	}
	b.dimension = snap.Dimension
	for _, r := range snap.Records {
		b.records[r.ID] = r
		b.order = append(b.order, r.ID)
	}
	return nil
}

// flush must be called with the write lock held.
func (b *MemoryBackend) flush() error {
	if b.path == "" {
		return nil
	}
	snap := snapshot{Dimension: b.dimension, Records: make([]Record, 0, len(b.order))}
	for _, id := range b.order {
		snap.Records = append(snap.Records, b.records[id])
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot failed: %w", err)
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write snapshot failed: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace snapshot failed: %w", err)
	}
	return nil
}

func matchesFilter(md, where map[string]interface{}) bool {
	for k, want := range where {
		got, ok := md[k]
		if !ok || !scalarEqual(got, want) {
			return false
		}
	}
	return true
}

// scalarEqual compares metadata values, treating all numeric types alike so
// that values reloaded from a JSON snapshot still match integer filters.
func scalarEqual(a, b interface{}) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return a == b
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
