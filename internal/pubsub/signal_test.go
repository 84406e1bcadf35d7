package pubsub

import (
	"testing"
	"time"
)

func TestSignal_EmitReachesSubscriber(t *testing.T) {
	s := NewSignal()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Emit()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("Expected notification, got none")
	}
}

func TestSignal_Coalesces(t *testing.T) {
	s := NewSignal()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Emit()
	s.Emit()
	s.Emit()

	<-ch

	select {
	case <-ch:
		// At most one more pending notification is acceptable.
		select {
		case <-ch:
			t.Fatal("Notifications did not coalesce")
		default:
		}
	default:
	}
}

func TestSignal_NoEmitAfterClose(t *testing.T) {
	s := NewSignal()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Close()
	s.Emit()

	select {
	case <-ch:
		t.Fatal("Received notification after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSignal_Unsubscribe(t *testing.T) {
	s := NewSignal()
	ch, cancel := s.Subscribe()

	cancel()
	s.Emit()

	select {
	case <-ch:
		t.Fatal("Received notification after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStream_LastValueWins(t *testing.T) {
	s := NewStream[int]()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Publish(1)
	s.Publish(2)
	s.Publish(3)

	select {
	case v := <-ch:
		if v != 3 {
			t.Errorf("Expected latest value 3, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected value, got none")
	}
}

func TestStream_LateSubscriberGetsLatest(t *testing.T) {
	s := NewStream[string]()
	s.Publish("hello")

	ch, cancel := s.Subscribe()
	defer cancel()

	select {
	case v := <-ch:
		if v != "hello" {
			t.Errorf("Expected %q, got %q", "hello", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected replayed value, got none")
	}
}

func TestStream_NoPublishAfterClose(t *testing.T) {
	s := NewStream[int]()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Close()
	s.Publish(42)

	select {
	case <-ch:
		t.Fatal("Received value after Close")
	case <-time.After(50 * time.Millisecond):
	}
}
