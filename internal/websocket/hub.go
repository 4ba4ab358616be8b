// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/subscription"
	wstypes "nichifier-service/internal/domain/websocket"
	"nichifier-service/internal/pkg/jwt"

	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to its claims and the stored user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, *auth.User, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (*jwt.Claims, *auth.User, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (*jwt.Claims, *auth.User, error) {
	return f(ctx, token)
}

type Hub struct {
	// Registered clients by user ID
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	Register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	handlerRegistry *HandlerRegistry

	authenticator Authenticator
	logger        *zap.Logger
}

type BroadcastMessage struct {
	UserIDs []int64
	Channel wstypes.ChannelType
	Message *wstypes.WSMessage
}

func NewHub(authenticator Authenticator, logger *zap.Logger) *Hub {
	return &Hub{
		clients:         make(map[int64]map[*Client]bool),
		Register:        make(chan *Client),
		unregister:      make(chan *Client, 64),
		broadcast:       make(chan *BroadcastMessage, 256),
		done:            make(chan struct{}),
		handlerRegistry: NewHandlerRegistry(),
		authenticator:   authenticator,
		logger:          logger,
	}
}

// AuthenticateClient validates the token (signature, expiry, blacklist) and loads the
// user's current role.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, user, err := h.authenticator.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &ClientAuth{
		UserID:    user.ID,
		SessionID: claims.ID,
		Role:      user.Role,
		Email:     user.Email,
	}, nil
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage dispatches to a registered handler. It reports whether one existed.
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) (bool, error) {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return false, nil
	}
	return true, handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Info("websocket client connected",
		zap.Int64("user_id", client.userID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_id":    client.userID,
		"session_id": client.sessionID,
		"role":       client.role,
		"channels":   client.Channels(),
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()

			if len(clients) == 0 {
				delete(h.clients, client.userID)
			}

			h.logger.Info("websocket client disconnected",
				zap.Int64("user_id", client.userID),
				zap.String("session_id", client.sessionID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

// BroadcastMessage delivers msg to subscribed clients of the listed users, or of every
// user when UserIDs is nil.
func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.UserIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				if client.IsSubscribed(msg.Channel) {
					client.SendMessage(msg.Message)
				}
			}
		}
		return
	}

	for _, userID := range msg.UserIDs {
		for client := range h.clients[userID] {
			if client.IsSubscribed(msg.Channel) {
				client.SendMessage(msg.Message)
			}
		}
	}
}

// leave hands a departing client to Run. Once Run has stopped, the client is closed
// directly instead.
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

// publish queues a broadcast without blocking the caller. Events are dropped, with a
// warning, when the queue is full.
func (h *Hub) publish(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping event",
			zap.String("type", string(msg.Message.Type)),
			zap.String("channel", string(msg.Channel)),
		)
	}
}

func (h *Hub) GetConnectedClients(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

// ========== Monetisation events ==========

// NotifyRevenueUpdated tells a niche owner a subscription's split changed.
func (h *Hub) NotifyRevenueUpdated(ownerID int64, event *subscription.RevenueEvent) {
	h.publish(&BroadcastMessage{
		UserIDs: []int64{ownerID},
		Channel: wstypes.ChannelRevenue,
		Message: wstypes.NewMessage(wstypes.EventTypeRevenueUpdated, event),
	})
}

// NotifyPlanChanged tells a creator their plan or privileges changed.
func (h *Hub) NotifyPlanChanged(userID int64, data *wstypes.PlanChangeData) {
	h.publish(&BroadcastMessage{
		UserIDs: []int64{userID},
		Channel: wstypes.ChannelPlans,
		Message: wstypes.NewMessage(wstypes.EventTypePlanChanged, data),
	})
}

// NotifySettingsUpdated fans the new fee settings out to admins.
func (h *Hub) NotifySettingsUpdated(settings *monetisation.PlatformSettings) {
	h.publish(&BroadcastMessage{
		Channel: wstypes.ChannelAdmin,
		Message: wstypes.NewMessage(wstypes.EventTypeSettingsUpdated, settings),
	})
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
		delete(h.clients, userID)
	}
	h.logger.Info("websocket hub stopped")
}
