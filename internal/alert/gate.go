package alert

// Gate is the rider's session state: availability, whether an order is
// already in hand, and the orders surfaced since the rider last came online.
// It is owned by the engine loop and is not safe for concurrent use.
type Gate struct {
	online    bool
	hasActive bool
	seen      seenSet
}

func NewGate() *Gate {
	return &Gate{seen: newSeenSet()}
}

// CanPoll reports whether new work may be offered to the rider.
func (g *Gate) CanPoll() bool {
	return g.online && !g.hasActive
}

func (g *Gate) Online() bool         { return g.online }
func (g *Gate) HasActiveOrder() bool { return g.hasActive }

// SetOnline returns true when the call changed availability. Coming online
// from offline starts a fresh seen-set.
func (g *Gate) SetOnline(online bool) bool {
	if g.online == online {
		return false
	}
	if online {
		g.seen = newSeenSet()
	}
	g.online = online
	return true
}

func (g *Gate) SetActiveOrder(active bool) bool {
	if g.hasActive == active {
		return false
	}
	g.hasActive = active
	return true
}

func (g *Gate) Seen(orderID string) bool {
	return g.seen.contains(orderID)
}

// MarkSeen returns false if the order was already seen.
func (g *Gate) MarkSeen(orderID string) bool {
	return g.seen.add(orderID)
}

// SeenIDs returns a copy in insertion order.
func (g *Gate) SeenIDs() []string {
	return g.seen.list()
}

type seenSet struct {
	order []string
	index map[string]struct{}
}

func newSeenSet() seenSet {
	return seenSet{order: []string{}, index: make(map[string]struct{})}
}

func (s *seenSet) add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *seenSet) contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *seenSet) list() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
