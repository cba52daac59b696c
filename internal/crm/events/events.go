// Package events delivers change notifications to in-process subscribers,
// typically the presentation layer refreshing derived views.
package events

import (
	"sync"

	"github.com/gartstein/commtrack/internal/crm/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventType string

const (
	CompanyCreated       EventType = "company_created"
	CompanyUpdated       EventType = "company_updated"
	CompanyDeleted       EventType = "company_deleted"
	MethodCreated        EventType = "method_created"
	MethodUpdated        EventType = "method_updated"
	MethodDeleted        EventType = "method_deleted"
	CommunicationsLogged EventType = "communications_logged"
)

// Event describes one completed mutation. Exactly one of the payload
// fields is set, matching Type.
type Event struct {
	ID             uuid.UUID
	Type           EventType
	Company        *models.Company
	Method         *models.CommunicationMethod
	Communications []models.Communication
}

// Handler receives events on the notifier's delivery goroutine. Handlers
// must not block; slow consumers cause events to be dropped.
type Handler func(Event)

// Notifier fans mutations out to subscribers through a buffered queue so
// producers never wait on delivery.
type Notifier struct {
	mu        sync.Mutex
	handlers  []Handler
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
	done      chan struct{}
}

func NewNotifier(logger *zap.Logger) *Notifier {
	n := &Notifier{
		events:    make(chan Event, 1000),
		logger:    logger.Named("events"),
		closeChan: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go n.eventLoop()
	return n
}

// Subscribe registers a handler for all subsequent events.
func (n *Notifier) Subscribe(h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, h)
}

// Produce enqueues the event, assigning it an id. When the queue is full
// the event is dropped with a warning; mutations are never blocked on
// notification delivery.
func (n *Notifier) Produce(event Event) {
	event.ID = uuid.New()
	select {
	case n.events <- event:
	default:
		n.logger.Warn("event queue full, dropping event",
			zap.String("event_type", string(event.Type)),
		)
	}
}

func (n *Notifier) eventLoop() {
	defer close(n.done)
	for {
		select {
		case event := <-n.events:
			n.dispatch(event)
		case <-n.closeChan:
			return
		}
	}
}

func (n *Notifier) dispatch(event Event) {
	n.mu.Lock()
	handlers := append([]Handler(nil), n.handlers...)
	n.mu.Unlock()
	for _, h := range handlers {
		h(event)
	}
}

// Close stops delivery. Events still queued are discarded.
func (n *Notifier) Close() {
	close(n.closeChan)
	<-n.done
}
