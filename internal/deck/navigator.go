package deck

import (
	"sync"

	"github.com/rotisserie/eris"
)

// ErrOutOfRange indicates a jump target outside the deck. Advance and
// Retreat never return it; they clamp instead.
var ErrOutOfRange = eris.New("slide index out of range")

// Position identifies the current slide within the deck.
type Position struct {
	Index int
	Total int
}

// Navigator tracks the current slide index and answers navigation
// commands. It is safe for concurrent use; HTTP handlers and the
// websocket hub share one instance. Subscribers receive a Position on
// every move.
type Navigator struct {
	mu      sync.Mutex
	index   int
	length  int
	wrap    bool
	subs    map[int]chan Position
	nextSub int
}

// NewNavigator creates a navigator over a deck of the given length,
// starting at slide 0.
func NewNavigator(length int, wrap bool) (*Navigator, error) {
	if length <= 0 {
		return nil, eris.New("navigator requires at least one slide")
	}

	return &Navigator{
		length: length,
		wrap:   wrap,
		subs:   make(map[int]chan Position),
	}, nil
}

// Current returns the present position.
func (n *Navigator) Current() Position {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Position{Index: n.index, Total: n.length}
}

// Advance moves one slide forward. At the last slide it stays put, or
// wraps to the first slide when the deck enables wrapping.
func (n *Navigator) Advance() Position {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case n.index < n.length-1:
		n.index++
	case n.wrap:
		n.index = 0
	}

	return n.publishLocked()
}

// Retreat mirrors Advance toward slide 0.
func (n *Navigator) Retreat() Position {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case n.index > 0:
		n.index--
	case n.wrap:
		n.index = n.length - 1
	}

	return n.publishLocked()
}

// JumpTo sets the index when the target is inside the deck and returns
// ErrOutOfRange otherwise, leaving the position unchanged.
func (n *Navigator) JumpTo(index int) (Position, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if index < 0 || index >= n.length {
		return Position{Index: n.index, Total: n.length}, eris.Wrapf(ErrOutOfRange, "jump to %d in deck of %d", index, n.length)
	}

	n.index = index
	return n.publishLocked(), nil
}

// Resize adjusts the deck length after a reload, clamping the index into
// the new range.
func (n *Navigator) Resize(length int) Position {
	n.mu.Lock()
	defer n.mu.Unlock()

	if length <= 0 {
		length = 1
	}
	n.length = length
	if n.index > length-1 {
		n.index = length - 1
	}

	return n.publishLocked()
}

// Subscribe registers for position updates. The returned cancel func must
// be called to release the subscription. Slow subscribers miss updates
// rather than blocking navigation.
func (n *Navigator) Subscribe() (<-chan Position, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextSub
	n.nextSub++

	ch := make(chan Position, 8)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

func (n *Navigator) publishLocked() Position {
	pos := Position{Index: n.index, Total: n.length}
	for _, sub := range n.subs {
		select {
		case sub <- pos:
		default:
		}
	}
	return pos
}
