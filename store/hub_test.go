package store

import (
	"testing"
	"time"

	"github.com/lasttodo/lasttodo/db"
)

func TestHub_PublishReachesOnlyThatUsersSubscribers(t *testing.T) {
	h := newHub()

	chA, stopA := h.subscribe("alice")
	defer stopA()
	chB, stopB := h.subscribe("bob")
	defer stopB()

	h.publish("alice", []db.Todo{{ID: "t1", Task: "Buy milk"}})

	select {
	case items := <-chA:
		if len(items) != 1 || items[0].ID != "t1" {
			t.Errorf("unexpected snapshot: %v", items)
		}
	case <-time.After(time.Second):
		t.Fatal("alice did not receive snapshot")
	}

	select {
	case items := <-chB:
		t.Errorf("bob received alice's snapshot: %v", items)
	default:
	}
}

func TestHub_PublishWithoutSubscribersIsNoOp(t *testing.T) {
	h := newHub()
	h.publish("alice", []db.Todo{{ID: "t1"}})
}

func TestHub_UnsubscribeClosesChannelOnce(t *testing.T) {
	h := newHub()

	ch, unsubscribe := h.subscribe("alice")
	unsubscribe()
	unsubscribe() // Second call must not panic

	if _, open := <-ch; open {
		t.Error("channel should be closed after unsubscribe")
	}
	if h.subscriberCount("alice") != 0 {
		t.Errorf("expected 0 subscribers, got %d", h.subscriberCount("alice"))
	}
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	h := newHub()

	_, stop := h.subscribe("alice")
	defer stop()

	// Fill the buffer and then some; publish must never block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			h.publish("alice", []db.Todo{{ID: "t1"}})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber channel")
	}
}

func TestHub_MultipleSubscribersEachReceive(t *testing.T) {
	h := newHub()

	ch1, stop1 := h.subscribe("alice")
	defer stop1()
	ch2, stop2 := h.subscribe("alice")
	defer stop2()

	h.publish("alice", []db.Todo{{ID: "t1"}})

	for i, ch := range []<-chan []db.Todo{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive snapshot", i+1)
		}
	}
}

func TestHub_ShutdownClosesAllChannels(t *testing.T) {
	h := newHub()

	chA, _ := h.subscribe("alice")
	chB, _ := h.subscribe("bob")

	h.shutdown()

	for _, ch := range []<-chan []db.Todo{chA, chB} {
		if _, open := <-ch; open {
			t.Error("channel should be closed after shutdown")
		}
	}
	if h.subscriberCount("alice") != 0 || h.subscriberCount("bob") != 0 {
		t.Error("expected no subscribers after shutdown")
	}
}
