// Package filter provides a generic filter-and-sort engine over catalog
// collections. The engine never learns entity internals: entities expose
// their own key-to-value mapping through domain.Filterable, and callers
// register named comparators for sorting.
package filter

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"civitas/internal/domain"
)

// Comparator orders two items; it must fully order the collection. When
// ties are possible the comparator is expected to define a secondary key —
// the engine uses an unstable sort and makes no tie-break guarantee.
type Comparator[T domain.Filterable] func(a, b T) bool

// Predicate is a caller-supplied match function combined with the
// engine's built-in search and followed-only restrictions.
type Predicate[T domain.Filterable] func(item T, active map[string]map[string]struct{}, searchText string) bool

// Engine filters and sorts one working set. It derives views and never
// mutates the collection it was given.
type Engine[T domain.Filterable] struct {
	items       []T
	active      map[string]map[string]struct{}
	searchText  string
	comparators map[string]Comparator[T]
	defaultSort string
	sortName    string
	descending  bool

	showOnlyFollowed bool
	followed         map[uuid.UUID]struct{}
	identityOf       func(T) (uuid.UUID, bool)
}

// New creates an engine with a registered comparator table. Sorting starts
// on defaultSort ascending; unknown sort names fall back to defaultSort.
func New[T domain.Filterable](defaultSort string, comparators map[string]Comparator[T]) *Engine[T] {
	return &Engine[T]{
		active:      make(map[string]map[string]struct{}),
		comparators: comparators,
		defaultSort: defaultSort,
		sortName:    defaultSort,
	}
}

// SetCollection replaces the full working set.
func (e *Engine[T]) SetCollection(items []T) {
	e.items = append([]T(nil), items...)
}

// SetSearchText sets the free-text query matched case-insensitively
// against each item's display name.
func (e *Engine[T]) SetSearchText(q string) {
	e.searchText = q
}

// AddFilter activates a value under a filter key. Values under one key are
// OR'd; different keys are AND'd.
func (e *Engine[T]) AddFilter(value, key string) {
	set, ok := e.active[key]
	if !ok {
		set = make(map[string]struct{})
		e.active[key] = set
	}
	set[value] = struct{}{}
}

// RemoveFilter deactivates a value; removing the last value under a key
// removes the key entirely.
func (e *Engine[T]) RemoveFilter(value, key string) {
	set, ok := e.active[key]
	if !ok {
		return
	}
	delete(set, value)
	if len(set) == 0 {
		delete(e.active, key)
	}
}

// ActiveFilterCount counts active values across all keys.
func (e *Engine[T]) ActiveFilterCount() int {
	n := 0
	for _, set := range e.active {
		n += len(set)
	}
	return n
}

// HasActiveFilters reports whether any filter or search text is active.
func (e *Engine[T]) HasActiveFilters() bool {
	return len(e.active) > 0 || e.searchText != ""
}

// SetFollowed installs the follow set and identity accessor used by the
// followed-only restriction.
func (e *Engine[T]) SetFollowed(followed map[uuid.UUID]struct{}, identityOf func(T) (uuid.UUID, bool)) {
	e.followed = followed
	e.identityOf = identityOf
}

// SetShowOnlyFollowed toggles the followed-only restriction.
func (e *Engine[T]) SetShowOnlyFollowed(on bool) {
	e.showOnlyFollowed = on
}

// SortBy selects a registered comparator by name. Unknown names fall back
// to the default comparator. Changing the comparator resets ascending
// order.
func (e *Engine[T]) SortBy(name string) {
	if _, ok := e.comparators[name]; !ok {
		name = e.defaultSort
	}
	if name != e.sortName {
		e.sortName = name
		e.descending = false
	}
}

// ToggleOrder flips between ascending and descending without changing the
// active comparator.
func (e *Engine[T]) ToggleOrder() {
	e.descending = !e.descending
}

// SortName returns the active comparator name.
func (e *Engine[T]) SortName() string { return e.sortName }

// Descending reports the active sort order.
func (e *Engine[T]) Descending() bool { return e.descending }

// Filter applies the caller predicate plus the built-in search and
// followed-only restrictions, then sorts by the active comparator. The
// result is a fresh slice; the working set is never reordered.
func (e *Engine[T]) Filter(predicate Predicate[T]) []T {
	query := strings.ToLower(e.searchText)

	out := make([]T, 0, len(e.items))
	for _, item := range e.items {
		if query != "" && !strings.Contains(strings.ToLower(item.DisplayName()), query) {
			continue
		}
		if e.showOnlyFollowed && !e.isFollowed(item) {
			continue
		}
		if predicate != nil && !predicate(item, e.active, e.searchText) {
			continue
		}
		out = append(out, item)
	}

	cmp := e.comparators[e.sortName]
	if cmp == nil {
		cmp = e.comparators[e.defaultSort]
	}
	if cmp != nil {
		less := cmp
		if e.descending {
			less = func(a, b T) bool { return cmp(b, a) }
		}
		sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	}

	return out
}

// MatchAll is the standard predicate: every active key must be satisfied
// by the entity's own Matches dispatch.
func MatchAll[T domain.Filterable](item T, active map[string]map[string]struct{}, _ string) bool {
	for key, values := range active {
		if !item.Matches(key, values) {
			return false
		}
	}
	return true
}

func (e *Engine[T]) isFollowed(item T) bool {
	if e.identityOf == nil || e.followed == nil {
		return false
	}
	id, ok := e.identityOf(item)
	if !ok {
		return false
	}
	_, ok = e.followed[id]
	return ok
}
