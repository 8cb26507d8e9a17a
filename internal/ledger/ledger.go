package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Namespace scopes a set of record ids to one Airtable table.
type Namespace struct {
	BaseID  string
	TableID string
}

func (n Namespace) String() string {
	return n.BaseID + "/" + n.TableID
}

// MarshalText keeps the persisted key format "{baseId}/{tableId}".
func (n Namespace) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *Namespace) UnmarshalText(text []byte) error {
	parsed, err := ParseNamespace(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseNamespace splits "{baseId}/{tableId}" on the first slash. Base ids never
// contain a slash, table names may.
func ParseNamespace(s string) (Namespace, error) {
	base, table, ok := strings.Cut(s, "/")
	if !ok || base == "" || table == "" {
		return Namespace{}, fmt.Errorf("invalid ledger namespace %q", s)
	}
	return Namespace{BaseID: base, TableID: table}, nil
}

// Snapshot maps a namespace to the set of record ids already handled.
type Snapshot map[Namespace]map[string]bool

// Store persists snapshots. Save overwrites everything previously stored.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}

// Appender is a Store that can persist just the marks added since the last
// save instead of the whole snapshot.
type Appender interface {
	Append(ctx context.Context, added Snapshot) error
}

// Ledger is the in-memory view of a Store for the duration of a pass.
type Ledger struct {
	mu      sync.Mutex
	seen    Snapshot
	pending Snapshot
	store   Store
}

// Load reads the current snapshot from store. An empty store yields an empty ledger.
func Load(ctx context.Context, store Store) (*Ledger, error) {
	snapshot, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	if snapshot == nil {
		snapshot = Snapshot{}
	}

	return &Ledger{seen: snapshot, pending: Snapshot{}, store: store}, nil
}

func (l *Ledger) Contains(ns Namespace, recordID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.seen[ns][recordID]
}

// Mark records recordID as handled. Marking twice is a no-op.
func (l *Ledger) Mark(ns Namespace, recordID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seen[ns][recordID] {
		return
	}
	add(l.seen, ns, recordID)
	add(l.pending, ns, recordID)
}

// Save persists the ledger. An Appender receives only the marks made since
// the last successful save; any other store gets the whole snapshot.
func (l *Ledger) Save(ctx context.Context) error {
	appender, ok := l.store.(Appender)
	if !ok {
		if err := l.store.Save(ctx, l.Snapshot()); err != nil {
			return fmt.Errorf("failed to save ledger: %w", err)
		}
		l.mu.Lock()
		l.pending = Snapshot{}
		l.mu.Unlock()
		return nil
	}

	l.mu.Lock()
	added := l.pending
	l.pending = Snapshot{}
	l.mu.Unlock()

	if len(added) == 0 {
		return nil
	}

	if err := appender.Append(ctx, added); err != nil {
		l.mu.Lock()
		for ns, ids := range added {
			for id := range ids {
				add(l.pending, ns, id)
			}
		}
		l.mu.Unlock()
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

func add(s Snapshot, ns Namespace, recordID string) {
	ids, ok := s[ns]
	if !ok {
		ids = map[string]bool{}
		s[ns] = ids
	}
	ids[recordID] = true
}

// Snapshot returns a deep copy of the ledger contents.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(Snapshot, len(l.seen))
	for ns, ids := range l.seen {
		copied := make(map[string]bool, len(ids))
		for id, ok := range ids {
			copied[id] = ok
		}
		out[ns] = copied
	}
	return out
}

// Records returns the ids marked under ns in lexical order.
func (l *Ledger) Records(ns Namespace) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return sortedIDs(l.seen[ns])
}

// Namespaces returns every namespace with at least one record, sorted.
func (l *Ledger) Namespaces() []Namespace {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Namespace, 0, len(l.seen))
	for ns, ids := range l.seen {
		if len(ids) > 0 {
			out = append(out, ns)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func sortedIDs(ids map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for id, ok := range ids {
		if ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
