package recurrence

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// Compiled matchers are immutable, so one instance per expression is shared
// between goroutines.
var matchers = cache.New(30*time.Minute, time.Hour)

func cached(expr string) (*Matcher, bool) {
	v, ok := matchers.Get(expr)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Matcher)
	return m, ok
}

func store(expr string, m *Matcher) {
	matchers.SetDefault(expr, m)
}

// CachedExpressions reports how many compiled matchers are currently held.
func CachedExpressions() int {
	return matchers.ItemCount()
}

// FlushCache drops every compiled matcher.
func FlushCache() {
	matchers.Flush()
}
