package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	name   string
	filter string
	err    error

	mu     sync.Mutex
	events []Event
}

func (o *recordingObserver) OnEvent(event Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return o.err
}

func (o *recordingObserver) GetName() string { return o.name }

func (o *recordingObserver) ShouldHandle(eventType string) bool {
	return o.filter == "" || o.filter == eventType
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.events)
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(context.Background(), TypeDeckCreated, DeckEvent{DeckID: "d1", Name: "Aggro"})

	if event.Type != TypeDeckCreated {
		t.Errorf("Expected type %q, got %q", TypeDeckCreated, event.Type)
	}

	data, ok := GetTypedData[DeckEvent](event)
	if !ok {
		t.Fatal("Expected DeckEvent payload")
	}
	if data.DeckID != "d1" || data.Name != "Aggro" {
		t.Errorf("Unexpected payload: %+v", data)
	}

	if _, ok := GetTypedData[CardDrawnEvent](event); ok {
		t.Error("Expected GetTypedData to fail for wrong type")
	}
}

func TestNewEvent_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is accepted on purpose
	event := NewEvent(nil, TypeCardDrawn, CardDrawnEvent{})
	if event.Context == nil {
		t.Error("Expected background context")
	}
}

func TestDispatch_FiltersAndContinuesPastErrors(t *testing.T) {
	d := NewEventDispatcher()
	failing := &recordingObserver{name: "failing", err: errors.New("boom")}
	decksOnly := &recordingObserver{name: "decks", filter: TypeDeckCreated}
	d.Register(failing)
	d.Register(decksOnly)

	d.Dispatch(NewEvent(context.Background(), TypeDeckCreated, DeckEvent{}))
	d.Dispatch(NewEvent(context.Background(), TypeCardDrawn, CardDrawnEvent{}))

	if failing.count() != 2 {
		t.Errorf("Expected failing observer to see 2 events, got %d", failing.count())
	}
	if decksOnly.count() != 1 {
		t.Errorf("Expected filtered observer to see 1 event, got %d", decksOnly.count())
	}
}

func TestUnregister(t *testing.T) {
	d := NewEventDispatcher()
	a := &recordingObserver{name: "a"}
	b := &recordingObserver{name: "b"}
	d.Register(a)
	d.Register(b)
	d.Unregister(a)

	if d.ObserverCount() != 1 {
		t.Fatalf("Expected 1 observer, got %d", d.ObserverCount())
	}

	d.Dispatch(NewEvent(context.Background(), TypeDeckDeleted, DeckEvent{}))
	if a.count() != 0 || b.count() != 1 {
		t.Errorf("Expected only b notified, got a=%d b=%d", a.count(), b.count())
	}
}

func TestDispatchAsync(t *testing.T) {
	d := NewEventDispatcher()
	obs := &recordingObserver{name: "async"}
	d.Register(obs)

	d.DispatchAsync(NewEvent(context.Background(), TypeCollectionChanged, CollectionChangedEvent{Count: 3}))

	deadline := time.Now().Add(time.Second)
	for obs.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if obs.count() != 1 {
		t.Errorf("Expected async delivery, got %d events", obs.count())
	}
}

func TestLogObserver_ShouldHandle(t *testing.T) {
	tests := []struct {
		prefixes  []string
		eventType string
		want      bool
	}{
		{nil, TypeCardDrawn, true},
		{[]string{"deck:"}, TypeDeckSaved, true},
		{[]string{"deck:"}, TypeCardDrawn, false},
		{[]string{"deck:", "card:"}, TypeCardDrawn, true},
	}
	for _, tt := range tests {
		o := NewLogObserver(tt.prefixes...)
		if got := o.ShouldHandle(tt.eventType); got != tt.want {
			t.Errorf("ShouldHandle(%v, %s) = %v, want %v", tt.prefixes, tt.eventType, got, tt.want)
		}
	}

	if err := NewLogObserver().OnEvent(NewEvent(context.Background(), TypeDeckSaved, DeckSavedEvent{Name: "x"})); err != nil {
		t.Errorf("OnEvent() error = %v", err)
	}
}
