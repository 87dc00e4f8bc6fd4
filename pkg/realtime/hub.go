package realtime

import "sync"

// Hub delivers encoded frames to registered members, either one at a time or
// to every member of a named channel.
type Hub struct {
	mu       sync.RWMutex
	buffer   int
	members  map[string]chan []byte
	channels map[string]map[string]struct{}
}

// NewHub creates an empty hub. buffer is the per-member queue size.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 10
	}
	return &Hub{
		buffer:   buffer,
		members:  make(map[string]chan []byte),
		channels: make(map[string]map[string]struct{}),
	}
}

// Register adds a member and returns its outbound queue. Registering an id
// twice returns the existing queue.
func (h *Hub) Register(id string) chan []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.members[id]; ok {
		return ch
	}
	ch := make(chan []byte, h.buffer)
	h.members[id] = ch
	return ch
}

// Unregister removes a member from every channel and closes its queue.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch, ok := h.members[id]
	if !ok {
		return
	}
	delete(h.members, id)
	close(ch)
	for name, set := range h.channels {
		delete(set, id)
		if len(set) == 0 {
			delete(h.channels, name)
		}
	}
}

// Join adds a registered member to a channel.
func (h *Hub) Join(channel, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.members[id]; !ok {
		return
	}
	set, ok := h.channels[channel]
	if !ok {
		set = make(map[string]struct{})
		h.channels[channel] = set
	}
	set[id] = struct{}{}
}

// Leave removes a member from a channel.
func (h *Hub) Leave(channel, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.channels[channel]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(h.channels, channel)
	}
}

// EmitTo queues msg for one member. It reports false when the member is
// unknown or its queue is full.
func (h *Hub) EmitTo(id string, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ch, ok := h.members[id]
	if !ok {
		return false
	}
	select {
	case ch <- msg:
		return true
	default:
		return false
	}
}

// Publish queues msg for every member of channel. It returns how many
// members accepted it and how many were joined at the time.
func (h *Hub) Publish(channel string, msg []byte) (delivered, members int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.channels[channel]
	for id := range set {
		select {
		case h.members[id] <- msg:
			delivered++
		default:
			// Lagging member; the frame is dropped.
		}
	}
	return delivered, len(set)
}
