package hanami

import (
	"context"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

type Event struct {
	Name string
	Data any
}

const AllEvents = "*"

type EventFunc func(context.Context, *Event)

type EventManager struct {
	logger *logrus.Entry

	events map[string][]EventFunc
	mu     sync.RWMutex
}

func NewEventManager(logger *logrus.Entry) *EventManager {
	return &EventManager{
		logger: logger,
		events: make(map[string][]EventFunc),
	}
}

func (em *EventManager) Register(name string, fnc EventFunc) *EventManager {
	em.mu.Lock()
	defer em.mu.Unlock()

	em.logger.Tracef("registering event %s", name)

	if em.events == nil {
		em.events = make(map[string][]EventFunc)
	}

	em.events[name] = append(em.events[name], fnc)
	return em
}

func (em *EventManager) Unregister(name string, fnc EventFunc) *EventManager {
	em.mu.Lock()
	defer em.mu.Unlock()

	handlers, ok := em.events[name]
	if !ok {
		return em
	}

	targetPtr := reflect.ValueOf(fnc).Pointer()
	newHandlers := make([]EventFunc, 0, len(handlers))

	for pos := range handlers {
		if reflect.ValueOf(handlers[pos]).Pointer() != targetPtr {
			newHandlers = append(newHandlers, handlers[pos])
		}
	}

	em.events[name] = newHandlers
	return em
}

// Dispatch calls the handlers registered for the type name of data
// ("hanami.SliceBooted") and for AllEvents, in registration order
func (em *EventManager) Dispatch(ctx context.Context, data any) {
	eventName := TypeNoPtr(data).String()

	em.logger.Tracef("dispatching event %s", eventName)

	em.mu.RLock()
	handlers := append(append([]EventFunc(nil), em.events[eventName]...), em.events[AllEvents]...)
	em.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{Name: eventName, Data: data}
	for _, handler := range handlers {
		handler(ctx, &event)
	}
}

// ***************************************************************************
// *  Events
// ***************************************************************************

const (
	EventShutdown      = "hanami.ApplicationShutdown"
	EventStateChanged  = "hanami.ApplicationStateChanged"
	EventSlicePrepared = "hanami.SlicePrepared"
	EventSliceBooted   = "hanami.SliceBooted"
)

type ApplicationShutdown struct{}

type ApplicationStateChanged struct {
	State ApplicationState
}

// SlicePrepared is dispatched once per slice, Slice is empty for the app
type SlicePrepared struct {
	Slice string
}

type SliceBooted struct {
	Slice string
}
