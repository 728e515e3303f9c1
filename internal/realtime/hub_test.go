package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/sheetshare-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := SheetChannel(12)

	clientA := hub.NewSSEClient(1)
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventSheetCellChanged, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventSheetRowDeleted, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventSheetCellChanged {
		t.Fatalf("first event: want=%s got=%s", SSEEventSheetCellChanged, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventSheetRowDeleted {
		t.Fatalf("second event: want=%s got=%s", SSEEventSheetRowDeleted, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewSSEClient(1)
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventSheetDeleted})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventSheetDeleted {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventSheetDeleted, got.Event)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	var delivered []SSEEvent
	hub.OnDeliver(func(e SSEEvent) { delivered = append(delivered, e) })

	onA := hub.NewSSEClient(1)
	onB := hub.NewSSEClient(2)
	hub.AddChannel(onA, SheetChannel(1))
	hub.AddChannel(onB, SheetChannel(2))

	hub.Broadcast(SSEMessage{Channel: SheetChannel(1), Event: SSEEventSheetCellChanged})
	hub.Broadcast(SSEMessage{Channel: SheetChannel(3), Event: SSEEventSheetCellChanged})

	recvMessage(t, onA.Outbound, time.Second)
	select {
	case msg := <-onB.Outbound:
		t.Fatalf("client on another sheet received %+v", msg)
	default:
	}
	if len(delivered) != 1 {
		t.Fatalf("OnDeliver: want=1 got=%d", len(delivered))
	}

	hub.RemoveChannel(onA, SheetChannel(1))
	hub.Broadcast(SSEMessage{Channel: SheetChannel(1), Event: SSEEventSheetCellChanged})
	select {
	case msg := <-onA.Outbound:
		t.Fatalf("unsubscribed client received %+v", msg)
	default:
	}
}

func TestSSEHubAppliesSubscriptionChanges(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	user := UserChannel("agent", 7)
	owner := SheetOwnerChannel(4, 7)

	client := hub.NewSSEClient(7)
	hub.AddChannel(client, user)
	bystander := hub.NewSSEClient(8)
	hub.AddChannel(bystander, UserChannel("agent", 8))

	hub.Broadcast(SSEMessage{Channel: user, Event: SSEEventSheetShared, Subscribe: []string{SheetChannel(4), owner}})
	msg := recvMessage(t, client.Outbound, time.Second)
	if msg.Subscribe != nil || msg.Unsubscribe != nil {
		t.Fatalf("subscription changes must not reach the stream: %+v", msg)
	}
	if hub.Subscribers(owner) != 1 || hub.Subscribers(SheetChannel(4)) != 1 {
		t.Fatalf("subscribe: owner=%d sheet=%d", hub.Subscribers(owner), hub.Subscribers(SheetChannel(4)))
	}

	hub.Broadcast(SSEMessage{Channel: owner, Event: SSEEventSheetCellChanged})
	recvMessage(t, client.Outbound, time.Second)

	hub.Broadcast(SSEMessage{Channel: user, Event: SSEEventSheetUnshared, Unsubscribe: []string{SheetChannel(4), owner}})
	recvMessage(t, client.Outbound, time.Second)
	hub.Broadcast(SSEMessage{Channel: owner, Event: SSEEventSheetCellChanged})
	select {
	case msg := <-client.Outbound:
		t.Fatalf("unsubscribed stream received %+v", msg)
	default:
	}
	if _, ok := bystander.Channels[owner]; ok {
		t.Fatalf("bystander picked up a channel")
	}

	// A closed client is never subscribed again.
	hub.CloseClient(client)
	hub.Broadcast(SSEMessage{Channel: user, Event: SSEEventSheetShared, Subscribe: []string{owner}})
	hub.AddChannel(client, owner)
	if n := hub.Subscribers(owner); n != 0 {
		t.Fatalf("closed client resubscribed: %d", n)
	}
}

func TestSSEHubBroadcastDoesNotBlockOnFullBuffer(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(1)
	hub.AddChannel(client, SheetChannel(5))

	done := make(chan struct{})
	go func() {
		for i := 0; i < outboundBuffer*3; i++ {
			hub.Broadcast(SSEMessage{Channel: SheetChannel(5), Event: SSEEventSheetCellChanged})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Broadcast blocked on a slow client")
	}
	if got := len(client.Outbound); got != outboundBuffer {
		t.Fatalf("buffered: want=%d got=%d", outboundBuffer, got)
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(7)
	hub.AddChannel(client, SheetChannel(9))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	served := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(served)
	}()

	hub.Broadcast(SSEMessage{Channel: SheetChannel(9), Event: SSEEventSheetCellChanged, Data: map[string]any{"row_key": "r1"}})
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatalf("ServeHTTP did not return after cancel")
	}

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: want=text/event-stream got=%s", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"event":"SheetCellChanged"`) || !strings.Contains(body, `"row_key":"r1"`) {
		t.Fatalf("event missing from stream: %q", body)
	}
}

func TestSheetChannelRoundTrip(t *testing.T) {
	id, ok := SheetIDFromChannel(SheetChannel(42))
	if !ok || id != 42 {
		t.Fatalf("SheetIDFromChannel: want=42 got=%d ok=%v", id, ok)
	}
	for _, bad := range []string{"sheet:", "sheet:x", "user:agent:4", "sheet:-3", SheetAdminChannel(4), SheetOwnerChannel(4, 9)} {
		if _, ok := SheetIDFromChannel(bad); ok {
			t.Fatalf("SheetIDFromChannel(%q): expected failure", bad)
		}
	}
}
