package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("document_not_found")

const (
	OpEq            = "=="
	OpNeq           = "!="
	OpLt            = "<"
	OpLte           = "<="
	OpGt            = ">"
	OpGte           = ">="
	OpArrayContains = "array-contains"
	OpIn            = "in"
	OpNotIn         = "not-in"
)

// Filter is one conjunct of a query predicate. Field supports dotted paths
// into nested documents (e.g. "metadata.workflow_run_id").
type Filter struct {
	Field string
	Op    string
	Value interface{}
}

type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
	Offset  int
}

// Store is a collection/document JSON store persisted to a single state
// file. Timestamps are stored as RFC3339 UTC strings, so lexicographic
// comparison is chronological comparison.
type Store struct {
	mu        sync.RWMutex
	state     map[string]map[string]map[string]interface{}
	stateFile string
}

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{
		state:     map[string]map[string]map[string]interface{}{},
		stateFile: filepath.Join(dataDir, "documents.json"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemStore returns a store without file persistence, for tests.
func NewMemStore() *Store {
	return &Store{state: map[string]map[string]map[string]interface{}{}}
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.stateFile)
	if errors.Is(err, os.ErrNotExist) {
		return s.saveLocked()
	}
	if err != nil {
		return err
	}
	var state map[string]map[string]map[string]interface{}
	if err := json.Unmarshal(b, &state); err != nil {
		return err
	}
	if state == nil {
		state = map[string]map[string]map[string]interface{}{}
	}
	s.state = state
	return nil
}

func (s *Store) saveLocked() error {
	if s.stateFile == "" {
		return nil
	}
	b, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.stateFile, b, 0o644)
}

func (s *Store) Get(collection, id string) (map[string]interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs, ok := s.state[collection]
	if !ok {
		return nil, false
	}
	doc, ok := docs[id]
	if !ok {
		return nil, false
	}
	return cloneDoc(doc), true
}

// Create stores a document and returns it with its id filled in. An empty
// id gets a generated one.
func (s *Store) Create(collection string, doc map[string]interface{}, id string) (map[string]interface{}, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, errors.New("collection is required")
	}
	if id == "" {
		id = uuid.NewString()
	}
	stored := cloneDoc(doc)
	if stored == nil {
		stored = map[string]interface{}{}
	}
	stored["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state[collection] == nil {
		s.state[collection] = map[string]map[string]interface{}{}
	}
	if _, exists := s.state[collection][id]; exists {
		return nil, fmt.Errorf("document %s/%s already exists", collection, id)
	}
	s.state[collection][id] = stored
	if err := s.saveLocked(); err != nil {
		return nil, err
	}
	return cloneDoc(stored), nil
}

// Update merges partial into an existing document, top-level key by key.
// Nested values are replaced, not deep-merged.
func (s *Store) Update(collection, id string, partial map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.state[collection]
	if !ok {
		return ErrNotFound
	}
	doc, ok := docs[id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range cloneDoc(partial) {
		doc[k] = v
	}
	return s.saveLocked()
}

func (s *Store) Query(collection string, q Query) []map[string]interface{} {
	s.mu.RLock()
	out := make([]map[string]interface{}, 0)
	for _, doc := range s.state[collection] {
		if matchesAll(doc, q.Filters) {
			out = append(out, cloneDoc(doc))
		}
	}
	s.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := compareValues(fieldValue(out[i], q.OrderBy), fieldValue(out[j], q.OrderBy)) < 0
			if q.Desc {
				return !less
			}
			return less
		})
	} else {
		// Deterministic order even without OrderBy.
		sort.SliceStable(out, func(i, j int) bool {
			return stringField(out[i], "id") < stringField(out[j], "id")
		})
	}

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []map[string]interface{}{}
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func matchesAll(doc map[string]interface{}, filters []Filter) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

func matches(doc map[string]interface{}, f Filter) bool {
	got := fieldValue(doc, f.Field)
	switch f.Op {
	case OpEq:
		return compareValues(got, f.Value) == 0
	case OpNeq:
		return compareValues(got, f.Value) != 0
	case OpLt:
		return compareValues(got, f.Value) < 0
	case OpLte:
		return compareValues(got, f.Value) <= 0
	case OpGt:
		return compareValues(got, f.Value) > 0
	case OpGte:
		return compareValues(got, f.Value) >= 0
	case OpArrayContains:
		arr, ok := got.([]interface{})
		if !ok {
			return false
		}
		for _, item := range arr {
			if compareValues(item, f.Value) == 0 {
				return true
			}
		}
		return false
	case OpIn:
		for _, candidate := range valueList(f.Value) {
			if compareValues(got, candidate) == 0 {
				return true
			}
		}
		return false
	case OpNotIn:
		for _, candidate := range valueList(f.Value) {
			if compareValues(got, candidate) == 0 {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func valueList(v interface{}) []interface{} {
	switch list := v.(type) {
	case []interface{}:
		return list
	case []string:
		out := make([]interface{}, 0, len(list))
		for _, item := range list {
			out = append(out, item)
		}
		return out
	default:
		return []interface{}{v}
	}
}

func fieldValue(doc map[string]interface{}, path string) interface{} {
	parts := strings.Split(path, ".")
	var current interface{} = doc
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

func stringField(doc map[string]interface{}, field string) string {
	s, _ := fieldValue(doc, field).(string)
	return s
}

// compareValues orders nil < bool < number < string; unlike kinds never
// compare equal.
func compareValues(a, b interface{}) int {
	if a == nil || b == nil {
		if a == nil && b == nil {
			return 0
		}
		if a == nil {
			return -1
		}
		return 1
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
		return -1
	}
	if _, bok := toFloat(b); bok {
		return 1
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			if ab == bb {
				return 0
			}
			if !ab {
				return -1
			}
			return 1
		}
		return -1
	}
	if _, bok := b.(bool); bok {
		return 1
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func cloneDoc(doc map[string]interface{}) map[string]interface{} {
	if doc == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// Encode converts a tagged struct into a document via its json tags.
func Encode(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode fills a tagged struct from a document.
func Decode(doc map[string]interface{}, out interface{}) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
