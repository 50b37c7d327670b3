package session

// queuedMessage is one message accepted while the connection was not open.
type queuedMessage struct {
	kind    string
	payload any
}

// outgoingQueue buffers messages submitted before the connection reaches
// Connected, preserving submission order. Not safe for concurrent use on its
// own; the manager's lock guards it.
type outgoingQueue struct {
	items []queuedMessage
}

func (q *outgoingQueue) push(kind string, payload any) {
	q.items = append(q.items, queuedMessage{kind: kind, payload: payload})
}

// drain removes and returns every queued message in FIFO order.
func (q *outgoingQueue) drain() []queuedMessage {
	items := q.items
	q.items = nil
	return items
}

// requeueFront puts unsent messages back at the head, ahead of anything
// queued since. Used when a flush is interrupted mid-way.
func (q *outgoingQueue) requeueFront(items []queuedMessage) {
	if len(items) == 0 {
		return
	}
	q.items = append(items, q.items...)
}

func (q *outgoingQueue) len() int {
	return len(q.items)
}
