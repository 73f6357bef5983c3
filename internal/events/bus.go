package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Имена событий, которые ядро публикует наружу.
const (
	TerminalUpdated = "terminal.updated"
	SessionStarted  = "session.started"
	SessionEnded    = "session.ended"
	MemberRecharged = "member.recharged"
	MemberUpdated   = "member.updated"
	BookingCreated  = "booking.created"
	BookingUpdated  = "booking.updated"
)

type Event struct {
	Name    string    `json:"name"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

// Bus — публикация событий о смене состояния. Доставка best-effort и никогда
// не блокирует коммит: подписчики, не успевающие читать, теряют события.
type Bus interface {
	Emit(name string, payload any)
}

// Nop — заглушка для тестов и для работы без подписчиков.
type Nop struct{}

func (Nop) Emit(string, any) {}

// LogBus пишет события в лог. Удобен в дев-режиме.
type LogBus struct {
	Logger *zap.Logger
}

func (b LogBus) Emit(name string, payload any) {
	b.Logger.Debug("Event emitted", zap.String("event", name), zap.Any("payload", payload))
}

// Hub раздаёт события подписчикам через буферизованные каналы.
// Отправка неблокирующая: при переполненном буфере событие отбрасывается.
type Hub struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]chan Event
	logger  *zap.Logger
	dropped int
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[int]chan Event),
		logger: logger,
	}
}

// Subscribe возвращает канал событий и функцию отписки.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 64
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, buffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

func (h *Hub) Emit(name string, payload any) {
	event := Event{Name: name, Payload: payload, At: time.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
			h.dropped++
			if h.logger != nil {
				h.logger.Warn("Event dropped, subscriber buffer full", zap.String("event", name))
			}
		}
	}
}

// Dropped — счётчик потерянных событий, для диагностики.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}
