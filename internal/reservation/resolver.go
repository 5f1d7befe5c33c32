package reservation

// Decision is the outcome of resolving a candidate against its overlap set.
type Decision struct {
	Admit bool
	// Evict holds every overlapping reservation when the candidate
	// pre-empts them. It is empty for a conflict-free admission.
	Evict []*Reservation
	// MaxExistingPriority is the highest priority in the overlap set,
	// zero when the set is empty.
	MaxExistingPriority int
}

// Resolve applies the pre-emption rule. A candidate is admitted when nothing
// overlaps it or when its priority is strictly greater than every
// overlapping reservation's, in which case all of them are evicted. Equal
// priority keeps the incumbent.
func Resolve(candidate *Reservation, overlaps []*Reservation) Decision {
	if len(overlaps) == 0 {
		return Decision{Admit: true}
	}

	maxExisting := 0
	for _, r := range overlaps {
		if r.PriorityLevel > maxExisting {
			maxExisting = r.PriorityLevel
		}
	}

	if candidate.PriorityLevel <= maxExisting {
		return Decision{MaxExistingPriority: maxExisting}
	}

	evict := make([]*Reservation, len(overlaps))
	copy(evict, overlaps)
	return Decision{
		Admit:               true,
		Evict:               evict,
		MaxExistingPriority: maxExisting,
	}
}

// EvictIDs returns the ids of the reservations to evict.
func (d Decision) EvictIDs() []string {
	ids := make([]string, len(d.Evict))
	for i, r := range d.Evict {
		ids[i] = r.ID
	}
	return ids
}
