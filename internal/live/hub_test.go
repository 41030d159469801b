package live

import (
	"fmt"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()

	sub, backlog, err := hub.Subscribe(TopicMenuItems)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()
	if len(backlog) != 0 {
		t.Fatalf("expected empty backlog on a fresh topic, got %d", len(backlog))
	}

	hub.Publish(TopicMenuItems, Event{Entity: TopicMenuItems, Action: ActionCreated, ID: "42"})

	event := receive(t, sub)
	if event.Action != ActionCreated || event.ID != "42" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestLateJoinerGetsBacklog(t *testing.T) {
	hub := NewHub()

	first, _, err := hub.Subscribe(TopicOrders)
	if err != nil {
		t.Fatalf("subscribe first: %v", err)
	}
	defer first.Close()

	hub.Publish(TopicOrders, Event{Action: ActionCreated, ID: "a"})
	hub.Publish(TopicOrders, Event{Action: ActionUpdated, ID: "a"})

	second, backlog, err := hub.Subscribe(TopicOrders)
	if err != nil {
		t.Fatalf("subscribe second: %v", err)
	}
	defer second.Close()

	if len(backlog) != 2 {
		t.Fatalf("expected 2 buffered events, got %d", len(backlog))
	}
	if backlog[0].Action != ActionCreated || backlog[1].Action != ActionUpdated {
		t.Fatalf("backlog out of order: %+v", backlog)
	}
}

func TestBacklogIsBounded(t *testing.T) {
	hub := NewHub()

	keeper, _, err := hub.Subscribe(TopicCategories)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer keeper.Close()

	for i := 0; i < DefaultBufferSize+25; i++ {
		hub.Publish(TopicCategories, Event{Action: ActionUpdated, ID: fmt.Sprint(i)})
	}

	_, backlog, err := hub.Subscribe(TopicCategories)
	if err != nil {
		t.Fatalf("subscribe late: %v", err)
	}
	if len(backlog) != DefaultBufferSize {
		t.Fatalf("expected backlog capped at %d, got %d", DefaultBufferSize, len(backlog))
	}
	if backlog[len(backlog)-1].ID != fmt.Sprint(DefaultBufferSize+24) {
		t.Fatalf("expected newest event kept, got %s", backlog[len(backlog)-1].ID)
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(TopicLayouts)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < DefaultSubscriberBuffer*3; i++ {
			hub.Publish(TopicLayouts, Event{Action: ActionUpdated, ID: fmt.Sprint(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publisher blocked on a slow subscriber")
	}
	if got := len(sub.Events()); got != DefaultSubscriberBuffer {
		t.Fatalf("expected channel full at %d, got %d", DefaultSubscriberBuffer, got)
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	hub := NewHub()

	sub, _, err := hub.Subscribe(TopicSettings)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	sub.Close()
	sub.Close() // repeat close is harmless

	hub.Publish(TopicSettings, Event{Action: ActionUpdated, ID: "theme"})

	select {
	case event := <-sub.Events():
		t.Fatalf("received %+v after close", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeRejectsBlankTopic(t *testing.T) {
	hub := NewHub()
	if _, _, err := hub.Subscribe("  "); err == nil {
		t.Fatalf("expected error for blank topic")
	}
}

func TestValidTopic(t *testing.T) {
	for _, topic := range []string{TopicCategories, TopicMenuItems, TopicLayouts, TopicOrders, TopicSettings, TopicOfferings} {
		if !ValidTopic(topic) {
			t.Fatalf("%s should be a valid topic", topic)
		}
	}
	if ValidTopic("kitchen_cams") {
		t.Fatalf("unknown topic accepted")
	}
}
