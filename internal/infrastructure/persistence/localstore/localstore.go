// Package localstore implements the structured store for meals,
// favorites, the shopping list, the provider credential, and scalar
// preferences on top of an injected KVStore.
//
// Every collection lives under one logical key as a serialized JSON
// array; every mutation rewrites the whole collection. There is no
// transaction spanning collections and no schema version field: a crash
// between read and write loses at most the in-flight mutation, and
// concurrent writers outside this process are not coordinated (last
// write wins).
package localstore

import (
	"sync"
	"time"

	"github.com/daidai-0318/nanimeshi-web/internal/domain/pantry"
)

// Logical storage keys. The names are kept stable so data written by
// earlier versions of the app remains readable.
const (
	keyCredential = "nanimeshi-api-key"
	keyMeals      = "nanimeshi-meals"
	keyFavorites  = "nanimeshi-favorites"
	keyShopping   = "nanimeshi-shopping"
	keyTheme      = "nanimeshi-theme"
)

// idGenerator issues wall-clock-based identities disambiguated by a
// session counter, so same-millisecond inserts within one process stay
// unique. The counter does not persist; across restarts uniqueness
// relies on wall-clock separation.
type idGenerator struct {
	mutex   sync.Mutex
	counter int64
}

func (g *idGenerator) next() pantry.ID {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	id := pantry.ID(time.Now().UnixMilli() + g.counter)
	g.counter++
	return id
}
