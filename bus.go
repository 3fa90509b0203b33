package ledger

import (
	"log"
	"sync"
)

// EventType identifies a domain event. The set is closed: subscribers
// key on these constants, and the store never publishes anything else.
type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventTransactionDeleted EventType = "transaction.deleted"
	EventTransferCreated    EventType = "transfer.created"
	EventInvestmentLinked   EventType = "investment.linked"
	EventLoanPayment        EventType = "loan.payment"

	EventAccountCreated EventType = "account.created"
	EventAccountUpdated EventType = "account.updated"
	EventAccountDeleted EventType = "account.deleted"

	EventCategoryCreated EventType = "category.created"
	EventCategoryUpdated EventType = "category.updated"
	EventCategoryDeleted EventType = "category.deleted"

	EventLoanCreated EventType = "loan.created"
	EventLoanDeleted EventType = "loan.deleted"

	EventVehicleCreated EventType = "vehicle.created"
	EventVehicleUpdated EventType = "vehicle.updated"
	EventVehicleDeleted EventType = "vehicle.deleted"

	EventInsuranceCreated EventType = "insurance.created"
	EventInsuranceUpdated EventType = "insurance.updated"
	EventInsuranceDeleted EventType = "insurance.deleted"

	EventGoalCreated EventType = "goal.created"
	EventGoalUpdated EventType = "goal.updated"
	EventGoalDeleted EventType = "goal.deleted"

	EventBillCreated EventType = "bill.created"
	EventBillUpdated EventType = "bill.updated"
	EventBillDeleted EventType = "bill.deleted"

	EventRuleCreated EventType = "rule.created"
	EventRuleDeleted EventType = "rule.deleted"

	EventStatementImported EventType = "statement.imported"
)

// Event is what subscribers receive: the event type plus the mutated
// entity as payload.
type Event struct {
	Type    EventType
	Payload any
}

// Handler consumes events. Handlers run synchronously on the
// publishing goroutine.
type Handler func(Event)

type subscriber struct {
	seq     int
	handler Handler
}

// EventBus is an in-process publish/subscribe channel. It is owned by
// the host application and injected into the Store, so the engine
// carries no process-wide state.
//
// Delivery is synchronous and in subscription order. There is no
// replay: a new subscriber only sees events published after it
// subscribed.
type EventBus struct {
	mu   sync.Mutex
	seq  int
	subs map[EventType][]*subscriber
	all  []*subscriber
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[EventType][]*subscriber)}
}

// Subscription is the handle returned by Subscribe. Unsubscribe is
// idempotent.
type Subscription struct {
	cancel func()
	once   sync.Once
}

// Unsubscribe removes the handler from the bus.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// Subscribe registers a handler for one event type.
func (b *EventBus) Subscribe(t EventType, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	sub := &subscriber{seq: b.seq, handler: h}
	b.subs[t] = append(b.subs[t], sub)
	return &Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs[t] = remove(b.subs[t], sub)
	}}
}

// SubscribeAll registers a catch-all handler that receives every event type.
func (b *EventBus) SubscribeAll(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	sub := &subscriber{seq: b.seq, handler: h}
	b.all = append(b.all, sub)
	return &Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = remove(b.all, sub)
	}}
}

func remove(subs []*subscriber, target *subscriber) []*subscriber {
	out := subs[:0:0]
	for _, s := range subs {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// Publish delivers the event to every matching subscriber, typed ones
// and catch-alls interleaved in subscription order. A panicking
// subscriber does not prevent delivery to the rest.
func (b *EventBus) Publish(e Event) {
	b.mu.Lock()
	targets := make([]*subscriber, 0, len(b.subs[e.Type])+len(b.all))
	targets = append(targets, b.subs[e.Type]...)
	targets = append(targets, b.all...)
	b.mu.Unlock()

	// Restore subscription order across the two lists.
	for i := 1; i < len(targets); i++ {
		for j := i; j > 0 && targets[j].seq < targets[j-1].seq; j-- {
			targets[j], targets[j-1] = targets[j-1], targets[j]
		}
	}

	for _, sub := range targets {
		deliver(sub, e)
	}
}

func deliver(sub *subscriber, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event subscriber panicked on %s: %v", e.Type, r)
		}
	}()
	sub.handler(e)
}
