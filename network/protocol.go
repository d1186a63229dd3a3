package network

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPacket marks a frame that is not a {"type","data"} envelope.
// The connection stays usable.
var ErrMalformedPacket = errors.New("malformed packet")

// Inbound message types.
const (
	MsgCreateRoom  = "create_room"
	MsgJoinRoom    = "join_room"
	MsgLeaveRoom   = "leave_room"
	MsgStartGame   = "start_game"
	MsgNightAction = "night_action"
	MsgDayChat     = "day_chat"
	MsgAccuse      = "accuse"
	MsgVote        = "vote"
	MsgAdvance     = "advance"
)

// Outbound message types.
const (
	MsgRoomJoined     = "room_joined"
	MsgRoleAssignment = "role_assignment"
	MsgRoomState      = "room_state"
	MsgInspectResult  = "inspect_result"
	MsgChatMessage    = "chat_message"
	MsgSystemMessage  = "system_message"
	MsgErrorMessage   = "error_message"
)

// Packet is one JSON frame: {"type": "...", "data": {...}}.
type Packet struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode builds a frame for msgType carrying payload.
func Encode(msgType string, payload interface{}) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(Packet{Type: msgType, Data: data})
}

// Decode parses a frame. Data stays raw until the handler knows its shape.
func Decode(frame []byte) (*Packet, error) {
	var p Packet
	if err := json.Unmarshal(frame, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}
	if p.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedPacket)
	}
	return &p, nil
}

// Request payloads. Every field is optional on the wire.

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type JoinRoomRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type RoomRequest struct {
	Code string `json:"code"`
}

// AdvanceRequest may name the phase the host is looking at.
type AdvanceRequest struct {
	Code  string `json:"code"`
	Phase string `json:"phase"`
}

type TargetRequest struct {
	Code   string `json:"code"`
	Target string `json:"target"`
}

type ChatRequest struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response payloads.

type RoomJoined struct {
	Code string `json:"code"`
	You  string `json:"you"`
	Host string `json:"host"`
}

type RoleAssignment struct {
	Role string `json:"role"`
}

type InspectResult struct {
	Target    string `json:"target"`
	Alignment string `json:"alignment"`
}

type ChatMessage struct {
	From    string `json:"from"`
	Message string `json:"message"`
}
