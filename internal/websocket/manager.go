package websocket

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/yourusername/randomizer-api/internal/service/randomizer"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// inboundEvent используется при разборе входящих сообщений
type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Manager обрабатывает WebSocket сообщения и доставляет события пользователям
type Manager struct {
	hub            *Hub
	cluster        *ClusterHub
	messageHandler map[string]func(data json.RawMessage, client *Client) error
}

// NewManager создает новый менеджер WebSocket. cluster может быть nil.
func NewManager(hub *Hub, cluster *ClusterHub) *Manager {
	m := &Manager{
		hub:            hub,
		cluster:        cluster,
		messageHandler: make(map[string]func(data json.RawMessage, client *Client) error),
	}
	m.RegisterHandler(PING, func(_ json.RawMessage, client *Client) error {
		return m.hub.SendJSONToUser(client.UserID, Event{Type: PONG})
	})
	return m
}

// Hub возвращает локальный hub
func (m *Manager) Hub() *Hub {
	return m.hub
}

// RegisterHandler регистрирует обработчик для определенного типа сообщений
func (m *Manager) RegisterHandler(eventType string, handler func(data json.RawMessage, client *Client) error) {
	m.messageHandler[eventType] = handler
	log.Printf("[WebSocketManager] Зарегистрирован обработчик для сообщений типа: %s", eventType)
}

// HandleMessage обрабатывает входящее сообщение от клиента.
// Возвращает error, если соединение нужно закрыть.
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event inboundEvent
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("[WebSocketManager] Invalid message from %s: %v", client.UserID, err)
		m.SendErrorToClient(client, "invalid_message_format", "Invalid JSON format")
		return err
	}

	handler, ok := m.messageHandler[event.Type]
	if !ok {
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
		return nil
	}
	return handler(event.Data, client)
}

// SendErrorToClient отправляет клиенту сообщение об ошибке, соединение не закрывается
func (m *Manager) SendErrorToClient(client *Client, code string, message string) {
	errorEvent := Event{
		Type: SERVER_ERROR,
		Data: map[string]string{
			"code":    code,
			"message": message,
		},
	}
	if err := m.hub.SendJSONToUser(client.UserID, errorEvent); err != nil {
		log.Printf("[WebSocketManager] ERROR sending error to client %s: %v", client.UserID, err)
	}
}

// SendEventToUser отправляет событие всем соединениям пользователя,
// включая соединения на других инстансах, если включен кластер
func (m *Manager) SendEventToUser(userID string, eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}
	m.hub.SendToUser(userID, payload)
	if m.cluster != nil {
		if err := m.cluster.SendToUserInCluster(userID, payload); err != nil {
			return err
		}
	}
	return nil
}

// NotifyRandomization рассылает новое состояние рандомизации
func (m *Manager) NotifyRandomization(userID string, view randomizer.View) {
	if err := m.SendEventToUser(userID, RANDOMIZATION_UPDATED, view); err != nil {
		log.Printf("[WebSocketManager] Не удалось отправить %s пользователю %s: %v", RANDOMIZATION_UPDATED, userID, err)
	}
}
