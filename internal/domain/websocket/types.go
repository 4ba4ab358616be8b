// internal/domain/websocket/types.go
package websocket

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType represents different real-time event types
type EventType string

const (
	// Connection events
	EventTypePing         EventType = "ping"
	EventTypePong         EventType = "pong"
	EventTypeConnected    EventType = "connected"
	EventTypeDisconnected EventType = "disconnected"
	EventTypeError        EventType = "error"

	// Monetisation events (server -> client)
	EventTypeRevenueUpdated  EventType = "revenue:updated"
	EventTypePlanChanged     EventType = "plan:changed"
	EventTypeSettingsUpdated EventType = "settings:updated"

	// Creator requests (client -> server)
	EventTypePlanUsage EventType = "plan:usage"

	// Subscription events
	EventTypeSubscribe   EventType = "subscribe"
	EventTypeUnsubscribe EventType = "unsubscribe"
)

// WSMessage is the universal message format
type WSMessage struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	ID        string      `json:"id,omitempty"`
}

// ChannelType names a stream clients can subscribe to.
type ChannelType string

const (
	ChannelRevenue ChannelType = "revenue"
	ChannelPlans   ChannelType = "plans"
	ChannelAdmin   ChannelType = "admin"
)

// SubscribeRequest sent by client to subscribe to specific channels
type SubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// UnsubscribeRequest sent by client to unsubscribe from channels
type UnsubscribeRequest struct {
	Channels []ChannelType `json:"channels"`
}

// ErrorData for error events
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// PlanChangeData tells a creator their plan changed.
type PlanChangeData struct {
	PlanID    int64  `json:"plan_id,omitempty"`
	PlanName  string `json:"plan_name,omitempty"`
	Status    string `json:"status"`
	Role      string `json:"role"`
	IsPremium bool   `json:"is_premium"`
}

func NewMessage(eventType EventType, data interface{}) *WSMessage {
	return &WSMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
		ID:        ulid.Make().String(),
	}
}

func (m *WSMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParseMessage(data []byte) (*WSMessage, error) {
	var msg WSMessage
	err := json.Unmarshal(data, &msg)
	return &msg, err
}
