package vessel

import "sort"

// QueueKind names one of the three priority queues
type QueueKind string

const (
	QueueEmergencyInbound QueueKind = "emergency_inbound"
	QueueRegularInbound   QueueKind = "regular_inbound"
	QueueOutbound         QueueKind = "outbound"
)

// Queue holds the ships of one priority class in processing order.
// Ships are upserted by (id, direction) through a map-backed index.
type Queue struct {
	kind  QueueKind
	ships []*Ship
	index map[ShipKey]*Ship
}

// NewQueue creates an empty queue of the given kind
func NewQueue(kind QueueKind) *Queue {
	return &Queue{
		kind:  kind,
		index: make(map[ShipKey]*Ship),
	}
}

func (q *Queue) Kind() QueueKind { return q.kind }
func (q *Queue) Len() int        { return len(q.ships) }

// Ships returns the queue contents in current order. The slice is shared;
// callers must not modify it.
func (q *Queue) Ships() []*Ship { return q.ships }

// Upsert inserts a ship for the request, or refreshes the existing one with the
// same key. The returned bool is true when a new ship was created.
func (q *Queue) Upsert(req ShipRequest) (*Ship, bool) {
	if ship, ok := q.index[req.Key()]; ok {
		ship.Refresh(req)
		return ship, false
	}

	ship := NewShip(req)
	q.insert(ship)
	return ship, true
}

func (q *Queue) insert(ship *Ship) {
	q.ships = append(q.ships, ship)
	q.index[ship.Key()] = ship
}

// Find looks a ship up by key
func (q *Queue) Find(key ShipKey) (*Ship, bool) {
	ship, ok := q.index[key]
	return ship, ok
}

// Remove drops a ship from the queue. It reports whether the ship was present.
func (q *Queue) Remove(key ShipKey) bool {
	if _, ok := q.index[key]; !ok {
		return false
	}
	delete(q.index, key)
	for i, ship := range q.ships {
		if ship.Key() == key {
			q.ships = append(q.ships[:i], q.ships[i+1:]...)
			break
		}
	}
	return true
}

// Sort orders the queue for dock assignment: inbound queues by soonest cutoff,
// the outbound queue by arrival. Ties keep their current relative order.
func (q *Queue) Sort() {
	if q.kind == QueueOutbound {
		sort.SliceStable(q.ships, func(i, j int) bool {
			return q.ships[i].arrival < q.ships[j].arrival
		})
		return
	}
	sort.SliceStable(q.ships, func(i, j int) bool {
		return q.ships[i].cutoff < q.ships[j].cutoff
	})
}

// QueueSet is the three priority queues of the port
type QueueSet struct {
	emergencyInbound *Queue
	regularInbound   *Queue
	outbound         *Queue
}

// NewQueueSet creates the three empty queues
func NewQueueSet() *QueueSet {
	return &QueueSet{
		emergencyInbound: NewQueue(QueueEmergencyInbound),
		regularInbound:   NewQueue(QueueRegularInbound),
		outbound:         NewQueue(QueueOutbound),
	}
}

func (qs *QueueSet) EmergencyInbound() *Queue { return qs.emergencyInbound }
func (qs *QueueSet) RegularInbound() *Queue   { return qs.regularInbound }
func (qs *QueueSet) Outbound() *Queue         { return qs.outbound }

// InPriorityOrder returns the queues in the order docks are offered:
// emergency inbound, regular inbound, outbound.
func (qs *QueueSet) InPriorityOrder() []*Queue {
	return []*Queue{qs.emergencyInbound, qs.regularInbound, qs.outbound}
}

// Route picks the queue a request belongs to. Requests without a direction
// land in the regular inbound queue, where they stay inert.
func (qs *QueueSet) Route(req ShipRequest) *Queue {
	switch {
	case req.Direction == DirectionOutbound:
		return qs.outbound
	case req.Direction == DirectionInbound && req.Emergency:
		return qs.emergencyInbound
	default:
		return qs.regularInbound
	}
}

// Ingest upserts a request into its queue. A key already held by another
// queue (an inbound ship whose emergency flag changed) moves the existing ship
// with its dock linkage instead of creating a second one.
func (qs *QueueSet) Ingest(req ShipRequest) (*Ship, *Queue, bool) {
	queue := qs.Route(req)
	key := req.Key()
	for _, other := range qs.InPriorityOrder() {
		if other == queue {
			continue
		}
		if ship, ok := other.Find(key); ok {
			other.Remove(key)
			ship.Refresh(req)
			queue.insert(ship)
			return ship, queue, false
		}
	}
	ship, created := queue.Upsert(req)
	return ship, queue, created
}

// SortAll sorts every queue for dock assignment
func (qs *QueueSet) SortAll() {
	for _, q := range qs.InPriorityOrder() {
		q.Sort()
	}
}

// FindDocked returns the ship with the given key that is docked at dockID
func (qs *QueueSet) FindDocked(key ShipKey, dockID int) (*Ship, bool) {
	for _, q := range qs.InPriorityOrder() {
		if ship, ok := q.Find(key); ok && ship.IsDockedAt(dockID) {
			return ship, true
		}
	}
	return nil, false
}

// Retire removes a fully processed ship that was docked at dockID
func (qs *QueueSet) Retire(key ShipKey, dockID int) bool {
	for _, q := range qs.InPriorityOrder() {
		if ship, ok := q.Find(key); ok && ship.IsDockedAt(dockID) {
			return q.Remove(key)
		}
	}
	return false
}

// Pending counts ships that could still be offered a dock at the given timestep
func (qs *QueueSet) Pending(timestep int) int {
	n := 0
	for _, q := range qs.InPriorityOrder() {
		for _, ship := range q.ships {
			if ship.IsDockable(timestep) {
				n++
			}
		}
	}
	return n
}

// Len counts every queued ship
func (qs *QueueSet) Len() int {
	return qs.emergencyInbound.Len() + qs.regularInbound.Len() + qs.outbound.Len()
}
