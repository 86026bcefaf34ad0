package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Hub хранит активные соединения, сгруппированные по пользователю.
// У одного пользователя может быть несколько вкладок, события получают все.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// NewHub создает пустой hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register добавляет клиента в hub
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	count := len(set)
	h.mu.Unlock()

	log.Printf("[Hub] Client registered: UserID=%s, ConnID=%s, user connections=%d", c.UserID, c.ConnectionID, count)
}

// Unregister удаляет клиента и закрывает его канал отправки. Повторный вызов безопасен.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	c.CloseSend()
	log.Printf("[Hub] Client unregistered: UserID=%s, ConnID=%s", c.UserID, c.ConnectionID)
}

// SendToUser ставит сообщение в очередь всем соединениям пользователя.
// Клиент с переполненным буфером отключается. Возвращает true, если доставлено хотя бы одному.
func (h *Hub) SendToUser(userID string, message []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := false
	for c := range h.clients[userID] {
		if c.enqueue(message) {
			delivered = true
			continue
		}
		log.Printf("[Hub] Send buffer full, dropping client: UserID=%s, ConnID=%s", c.UserID, c.ConnectionID)
		h.removeLocked(c)
	}
	return delivered
}

// SendJSONToUser сериализует v и отправляет пользователю
func (h *Hub) SendJSONToUser(userID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message for user %s: %w", userID, err)
	}
	h.SendToUser(userID, data)
	return nil
}

// ClientCount возвращает общее число соединений
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// UserConnections возвращает число соединений пользователя
func (h *Hub) UserConnections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close отключает всех клиентов
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.clients {
		for c := range set {
			c.CloseSend()
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	log.Println("[Hub] Closed")
}
