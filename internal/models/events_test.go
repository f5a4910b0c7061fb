package models

import (
	"encoding/json"
	"testing"
)

func TestDecodeInbound(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want InboundEvent
	}{
		{
			name: "joinRoom",
			raw:  `{"type":"joinRoom","payload":{"room":"r1"}}`,
			want: InboundEvent{Type: EventJoinRoom, Room: "r1"},
		},
		{
			name: "leaveRoom",
			raw:  `{"type":"leaveRoom","payload":{"room":"r1"}}`,
			want: InboundEvent{Type: EventLeaveRoom, Room: "r1"},
		},
		{
			name: "typing",
			raw:  `{"type":"typing","payload":{"room":"r1","is_typing":true}}`,
			want: InboundEvent{Type: EventTyping, Room: "r1", IsTyping: true},
		},
		{
			name: "groupMessage",
			raw:  `{"type":"groupMessage","payload":{"room":"r1","content":"hi"}}`,
			want: InboundEvent{Type: EventGroupMessage, Room: "r1", Content: "hi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInbound([]byte(tt.raw))
			if err != nil {
				t.Fatalf("DecodeInbound() error = %v", err)
			}
			if got.Type != tt.want.Type || got.Room != tt.want.Room ||
				got.IsTyping != tt.want.IsTyping || got.Content != tt.want.Content {
				t.Errorf("DecodeInbound() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeInboundPrivateMessageKeepsPayload(t *testing.T) {
	raw := `{"type":"privateMessage","payload":{"to":"u2","text":"psst"}}`
	got, err := DecodeInbound([]byte(raw))
	if err != nil {
		t.Fatalf("DecodeInbound() error = %v", err)
	}
	if got.To != "u2" {
		t.Errorf("got.To = %q, want u2", got.To)
	}

	// The forwarded payload keeps fields the server does not model
	var forwarded map[string]any
	if err := json.Unmarshal(got.Payload, &forwarded); err != nil {
		t.Fatalf("payload not preserved: %v", err)
	}
	if forwarded["text"] != "psst" {
		t.Errorf("forwarded payload = %v", forwarded)
	}
}

func TestDecodeInboundRejectsUnknownType(t *testing.T) {
	if _, err := DecodeInbound([]byte(`{"type":"shutdown","payload":{}}`)); err == nil {
		t.Error("unknown event type was accepted")
	}
}

func TestDecodeInboundRejectsGarbage(t *testing.T) {
	if _, err := DecodeInbound([]byte(`not json`)); err == nil {
		t.Error("malformed frame was accepted")
	}
	if _, err := DecodeInbound([]byte(`{"type":"typing","payload":"nope"}`)); err == nil {
		t.Error("malformed payload was accepted")
	}
}

func TestOutboundEventEncode(t *testing.T) {
	ev := OutboundEvent{
		Type:    EventError,
		Payload: ErrorPayload{Message: "boom"},
	}
	data, err := ev.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("encoded frame is not a valid envelope: %v", err)
	}
	if env.Type != EventError {
		t.Errorf("env.Type = %q, want error", env.Type)
	}

	var payload ErrorPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("invalid error payload: %v", err)
	}
	if payload.Message != "boom" {
		t.Errorf("payload.Message = %q, want boom", payload.Message)
	}
}
