package notify

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Observer is told that state changed and should be re-read.
type Observer func()

// Bus fans a change notification out to every subscribed observer.
// Observers run synchronously, in subscription order, on the publisher's goroutine.
type Bus struct {
	mutex     sync.Mutex
	observers []Observer
	logger    log.FieldLogger
}

func NewBus(logger log.FieldLogger) *Bus {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Bus{logger: logger}
}

func (b *Bus) Subscribe(observer Observer) {
	if observer == nil {
		return
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.observers = append(b.observers, observer)
}

// Publish calls every observer once. A panicking observer is logged and skipped.
func (b *Bus) Publish() {
	b.mutex.Lock()
	observers := append([]Observer(nil), b.observers...)
	b.mutex.Unlock()

	for i, observer := range observers {
		b.call(i, observer)
	}
}

func (b *Bus) call(index int, observer Observer) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(log.Fields{"observer": index, "panic": r}).Error("change observer failed")
		}
	}()
	observer()
}
