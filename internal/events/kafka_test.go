package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs  []kafka.Message
	err   error
	close int
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.close++
	return nil
}

func testConfig() KafkaConfig {
	return KafkaConfig{BlocksTopic: "barbershop.blocks", BookingsTopic: "barbershop.bookings"}
}

func TestKafkaPublisher_RoutesByTypeAndKeysByStaff(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, testConfig(), nil)

	ev := New(TypeBlockToggled, "staff-a", map[string]string{"state": "blocked"})
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if err := p.Publish(context.Background(), New(TypeAppointmentBooked, "staff-b", nil)); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	if len(w.msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(w.msgs))
	}
	if w.msgs[0].Topic != "barbershop.blocks" || string(w.msgs[0].Key) != "staff-a" {
		t.Fatalf("msg[0] topic=%q key=%q", w.msgs[0].Topic, w.msgs[0].Key)
	}
	if w.msgs[1].Topic != "barbershop.bookings" || string(w.msgs[1].Key) != "staff-b" {
		t.Fatalf("msg[1] topic=%q key=%q", w.msgs[1].Topic, w.msgs[1].Key)
	}

	var decoded struct {
		ID   string            `json:"id"`
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.ID != ev.ID || decoded.Type != TypeBlockToggled || decoded.Data["state"] != "blocked" {
		t.Fatalf("payload = %+v", decoded)
	}

	c := &headerCarrier{headers: w.msgs[0].Headers}
	if c.Get("event_id") != ev.ID || c.Get("event_type") != TypeBlockToggled {
		t.Fatalf("headers = %v", w.msgs[0].Headers)
	}
}

func TestKafkaPublisher_UnknownTypeAndWriteErrors(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, testConfig(), nil)
	if err := p.Publish(context.Background(), New("staff.renamed", "a", nil)); err == nil {
		t.Fatalf("expected error for unknown type")
	}

	w.err = errors.New("broker gone")
	err := p.Publish(context.Background(), New(TypeAppointmentCancelled, "a", nil))
	if !errors.Is(err, w.err) {
		t.Fatalf("err = %v, want wrapped %v", err, w.err)
	}

	if err := p.Close(); err != nil || w.close != 1 {
		t.Fatalf("Close = %v, calls=%d", err, w.close)
	}
}

func TestKafkaPublisher_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	w := &fakeWriter{}
	p := newKafkaPublisher(w, testConfig(), nil)
	if err := p.Publish(ctx, New(TypeAppointmentBooked, "a", nil)); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	c := &headerCarrier{headers: w.msgs[0].Headers}
	want := "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	if got := c.Get("traceparent"); got != want {
		t.Fatalf("traceparent = %q, want %q", got, want)
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Fatalf("SplitBrokers = %v", got)
	}
	if SplitBrokers("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
