/* broker.go
 * Contains the in-memory Broker implementing Notifier: buffered channel fan-out with
 * non-blocking publish. Messages for subscribers whose buffer is full are dropped,
 * which is what makes delivery at-most-once
 */

package notify

import (
	"log"
	"sync"

	"livescore/metrics"
)

// defaultBufferSize is the per-subscriber channel buffer.
const defaultBufferSize = 64

// Broker is an in-process broadcast hub. It implements Notifier.
type Broker struct {
	mu     sync.RWMutex
	buffer int
	subs   map[string]map[int]chan Message
	nextID int
	closed bool
}

// NewBroker creates a Broker. A bufferSize of 0 or less falls back to the default.
func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Broker{
		buffer: bufferSize,
		subs:   make(map[string]map[int]chan Message),
	}
}

// Publish delivers the message to every current subscriber of the topic. It never
// blocks: a subscriber that cannot keep up loses the message, and the drop is logged
// and counted but never surfaced to the caller.
func (b *Broker) Publish(topic string, kind string, payload any) {
	msg := Message{Kind: kind, Payload: payload}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for id, ch := range b.subs[topic] {
		select {
		case ch <- msg:
			metrics.RecordNotificationPublished(kind)
		default:
			metrics.RecordNotificationDropped(kind)
			log.Printf("notify: dropped %s for slow subscriber %d on %s", kind, id, topic)
		}
	}
}

// Subscribe registers a new subscriber on the topic. It returns the receive channel
// and a cancel function; cancel removes the subscriber and closes the channel, and is
// safe to call more than once.
func (b *Broker) Subscribe(topic string) (<-chan Message, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Message, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan Message)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = ch
	metrics.SubscriberConnected()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[topic][id]; ok {
				delete(b.subs[topic], id)
				close(ch)
				metrics.SubscriberDisconnected()
			}
		})
	}
	return ch, cancel
}

// Close shuts the broker down and closes every subscriber channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
			metrics.SubscriberDisconnected()
		}
		delete(b.subs, topic)
	}
}

var _ Notifier = (*Broker)(nil)
