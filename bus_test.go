package ledger

import (
	"testing"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var got []string

	bus.Subscribe(EventAccountCreated, func(Event) { got = append(got, "typed-1") })
	bus.SubscribeAll(func(Event) { got = append(got, "all") })
	bus.Subscribe(EventAccountCreated, func(Event) { got = append(got, "typed-2") })

	bus.Publish(Event{Type: EventAccountCreated})

	want := []string{"typed-1", "all", "typed-2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("delivery %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBusTypedSubscriberFiltersOtherTypes(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	bus.Subscribe(EventAccountCreated, func(Event) { calls++ })

	bus.Publish(Event{Type: EventAccountDeleted})
	bus.Publish(Event{Type: EventAccountCreated})

	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	sub := bus.Subscribe(EventAccountCreated, func(Event) { calls++ })

	bus.Publish(Event{Type: EventAccountCreated})
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent
	bus.Publish(Event{Type: EventAccountCreated})

	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}

func TestBusPanicIsolation(t *testing.T) {
	bus := NewEventBus()
	delivered := false
	bus.Subscribe(EventAccountCreated, func(Event) { panic("boom") })
	bus.Subscribe(EventAccountCreated, func(Event) { delivered = true })

	bus.Publish(Event{Type: EventAccountCreated})

	if !delivered {
		t.Error("panicking subscriber blocked delivery to the next one")
	}
}

// A subscriber querying the store from its handler must not deadlock:
// events are published after the store releases its lock.
func TestSubscriberCanQueryStore(t *testing.T) {
	bus := NewEventBus()
	s := NewStore(bus)

	var seen []string
	bus.Subscribe(EventAccountCreated, func(e Event) {
		for _, a := range s.Accounts() {
			seen = append(seen, a.Name)
		}
	})

	if _, err := s.CreateAccount(Account{Name: "Checking", Type: AccountChecking}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != "Checking" {
		t.Errorf("subscriber saw %v, want the created account", seen)
	}
}

func TestStorePublishesLifecycleEvents(t *testing.T) {
	bus := NewEventBus()
	s := NewStore(bus)

	var types []EventType
	bus.SubscribeAll(func(e Event) { types = append(types, e.Type) })

	a, err := s.CreateAccount(Account{Name: "Checking", Type: AccountChecking, OpeningBalance: BRL(100)})
	if err != nil {
		t.Fatal(err)
	}
	tx, err := s.CreateTransaction(Transaction{Account: a.ID, Amount: BRL(-10), Operation: OpPurchase})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteTransaction(tx.ID); err != nil {
		t.Fatal(err)
	}

	want := []EventType{EventAccountCreated, EventTransactionCreated, EventTransactionDeleted}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, types[i], want[i])
		}
	}
}
