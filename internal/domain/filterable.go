package domain

// Filterable is implemented by catalog entities so the filter engine can
// evaluate named filters without knowing entity internals. Each entity
// owns its mapping from filter keys to the values it satisfies; an entity
// must return true for keys it does not recognize so that foreign filters
// never restrict it.
type Filterable interface {
	// DisplayName is the field searched by free-text queries.
	DisplayName() string

	// Matches reports whether the entity satisfies any of the values
	// active under the given filter key.
	Matches(key string, values map[string]struct{}) bool
}
