package catalog

// Current picks the current snapshot out of a materialized timeline.
//
// Pinned sessions get the pinned generation's snapshot; unpinned sessions get
// the snapshot whose generation ranks highest under RankKeys. A false result
// is the "absent" outcome: the entity does not exist at the resolved
// generation (or has no snapshots at all). Timeline order does not matter.
func Current[S any](timeline []Snapshot[S], session *Session) (Snapshot[S], bool) {
	if pin, ok := session.Pinned(); ok {
		for _, snap := range timeline {
			if snap.Generation.ID == pin.ID {
				return snap, true
			}
		}
		return Snapshot[S]{}, false
	}

	var (
		best  Snapshot[S]
		found bool
	)
	for _, snap := range timeline {
		if !found || Outranks(snap.Generation, best.Generation) {
			best, found = snap, true
		}
	}
	return best, found
}

// Resolve returns key's current snapshot under session.
func Resolve[K comparable, S any](c *Snapshots[K, S], key K, session *Session) (Snapshot[S], bool) {
	if pin, ok := session.Pinned(); ok {
		return c.At(key, pin.ID)
	}
	return Current(c.timeline(key), session)
}

// Exists reports whether key is visible under session: always for unpinned
// sessions, otherwise only if key has a snapshot in the pinned generation.
func Exists[K comparable, S any](c *Snapshots[K, S], key K, session *Session) bool {
	pin, ok := session.Pinned()
	if !ok {
		return true
	}
	_, present := c.At(key, pin.ID)
	return present
}

// Filter returns the keys visible under session, preserving order.
func Filter[K comparable, S any](c *Snapshots[K, S], keys []K, session *Session) []K {
	out := make([]K, 0, len(keys))
	for _, key := range keys {
		if Exists(c, key, session) {
			out = append(out, key)
		}
	}
	return out
}
