// Package notify carries user-visible messages ("Added Lamp to cart") out of
// the stores without the stores knowing how they are shown.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

type Notifier interface {
	Notify(message string, kind Kind)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(string, Kind) {}

// OrNop returns n, or Nop when n is nil.
func OrNop(n Notifier) Notifier {
	if n == nil {
		return Nop{}
	}
	return n
}

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(message string, kind Kind) {
	fields := []zap.Field{zap.String("kind", string(kind)), zap.String("message", message)}
	switch kind {
	case KindError:
		n.logger.Error("notification", fields...)
	case KindWarning:
		n.logger.Warn("notification", fields...)
	default:
		n.logger.Info("notification", fields...)
	}
}

// Notification is one recorded message.
type Notification struct {
	Message string    `json:"message"`
	Kind    Kind      `json:"kind"`
	At      time.Time `json:"at"`
}

// Recorder keeps the most recent notifications until a view drains them.
// When full, the oldest entry is overwritten.
type Recorder struct {
	mu    sync.Mutex
	buf   []Notification
	start int
	size  int
	now   func() time.Time
}

func NewRecorder(capacity int) *Recorder {
	if capacity < 1 {
		capacity = 1
	}
	return &Recorder{buf: make([]Notification, capacity), now: time.Now}
}

func (r *Recorder) Notify(message string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := Notification{Message: message, Kind: kind, At: r.now()}
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = n
		r.size++
		return
	}
	r.buf[r.start] = n
	r.start = (r.start + 1) % len(r.buf)
}

// Drain returns the buffered notifications oldest first and empties the buffer.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Notification, 0, r.size)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	r.start, r.size = 0, 0
	return out
}

// Len reports how many notifications are waiting.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(message string, kind Kind) {
	for _, n := range m {
		if n != nil {
			n.Notify(message, kind)
		}
	}
}
