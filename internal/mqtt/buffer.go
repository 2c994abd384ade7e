package mqtt

import "log"

// publication is a message held back while the broker is unreachable.
type publication struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// offlineQueue keeps the most recent publications for replay once the
// connection is back. When full, the oldest entry is dropped.
// Not safe for concurrent use; RealClient guards it with its mutex.
type offlineQueue struct {
	items   []publication
	start   int
	size    int
	dropped uint64
}

func newOfflineQueue(capacity int) *offlineQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &offlineQueue{items: make([]publication, capacity)}
}

func (q *offlineQueue) push(p publication) {
	if q.size == len(q.items) {
		if q.dropped == 0 {
			log.Printf("mqtt: offline queue full (%d messages), dropping oldest", len(q.items))
		}
		q.items[q.start] = p
		q.start = (q.start + 1) % len(q.items)
		q.dropped++
		return
	}
	q.items[(q.start+q.size)%len(q.items)] = p
	q.size++
}

// drain returns queued publications oldest first and empties the queue.
func (q *offlineQueue) drain() []publication {
	if q.size == 0 {
		return nil
	}
	out := make([]publication, q.size)
	for i := range out {
		out[i] = q.items[(q.start+i)%len(q.items)]
	}
	q.start, q.size, q.dropped = 0, 0, 0
	return out
}

func (q *offlineQueue) len() int {
	return q.size
}
