package network

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	body := []byte(`{"game_started":true}`)
	packet, err := Encode(MsgTypeGameStateUpdate, body)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(packet) != headerSize+len(body) {
		t.Fatalf("Expected %d bytes, got %d", headerSize+len(body), len(packet))
	}

	decoded, err := Decode(packet)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.MsgID != MsgTypeGameStateUpdate || int(decoded.Length) != len(body) || !bytes.Equal(decoded.Data, body) {
		t.Errorf("Unexpected packet: %+v", decoded)
	}
}

func TestDecode_ShortBuffers(t *testing.T) {
	if _, err := Decode([]byte{0, 1}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer for a truncated header, got %v", err)
	}
	if _, err := Decode([]byte{0, 1, 0, 9, 'x'}); !errors.Is(err, io.ErrShortBuffer) {
		t.Errorf("Expected ErrShortBuffer for a truncated body, got %v", err)
	}
}

func TestEncode_TooLarge(t *testing.T) {
	if _, err := Encode(MsgTypeGameStateUpdate, make([]byte, 1<<16)); !errors.Is(err, ErrPacketTooLarge) {
		t.Errorf("Expected ErrPacketTooLarge, got %v", err)
	}
}

func TestEventNames(t *testing.T) {
	if EventName(MsgTypeGameStateUpdate) != "game_state_update" {
		t.Errorf("Unexpected name %q", EventName(MsgTypeGameStateUpdate))
	}
	if EventName(9999) != "unknown_9999" {
		t.Errorf("Unexpected name for unknown id: %q", EventName(9999))
	}
	id, ok := MsgID("hand_update")
	if !ok || id != MsgTypeHandUpdate {
		t.Errorf("MsgID(hand_update) = %d, %v", id, ok)
	}
	if _, ok := MsgID("nope"); ok {
		t.Error("MsgID should not resolve unknown events")
	}
}
