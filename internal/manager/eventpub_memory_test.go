package manager

import (
	"fmt"
	"testing"
)

func TestMemoryPublisher_KeepsMostRecent(t *testing.T) {
	p := NewMemoryPublisher(3)
	for i := 0; i < 5; i++ {
		p.Publish(Event{Name: fmt.Sprintf("e%d", i), Level: LevelInfo})
	}
	got := p.Notifications()
	if len(got) != 3 {
		t.Fatalf("expected 3 events got %d", len(got))
	}
	if got[0].Name != "e2" || got[2].Name != "e4" {
		t.Fatalf("expected e2..e4 got %+v", got)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Fatalf("expected distinct ids: %+v", got)
	}
	// returned slice is a copy
	got[0].Name = "x"
	if p.Notifications()[0].Name != "e2" {
		t.Fatalf("buffer mutated via returned slice")
	}
}

type recordingPublisher struct{ events []Event }

func (r *recordingPublisher) Publish(e Event) { r.events = append(r.events, e) }

func TestSetEventPublisher_ForwardsAndNilResetsNoop(t *testing.T) {
	m := NewWithConfig(ManagerConfig{})
	rec := &recordingPublisher{}
	m.SetEventPublisher(rec)
	m.publish(Event{Name: "hello", Level: LevelInfo})
	if len(rec.events) != 1 || len(m.Notifications().Notifications) != 1 {
		t.Fatalf("expected event forwarded and buffered")
	}
	m.SetEventPublisher(nil)
	m.publish(Event{Name: "again"})
	if len(rec.events) != 1 {
		t.Fatalf("expected no forwarding after reset")
	}
}
