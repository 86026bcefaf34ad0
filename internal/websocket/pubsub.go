package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/yourusername/randomizer-api/internal/config"
)

const directMessageType = "direct"

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	Publish(channel string, message []byte) error

	// Subscribe подписывается на канал; возвращаемый канал закрывается при отмене ctx
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)

	Close() error
}

// ClusterMessage представляет сообщение, передаваемое между инстансами
type ClusterMessage struct {
	MessageType string          `json:"type"`
	RecipientID string          `json:"recipient_id,omitempty"`
	InstanceID  string          `json:"instance_id"`
	Payload     json.RawMessage `json:"payload"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NoOpPubSub используется, когда работает один инстанс
type NoOpPubSub struct{}

func (p *NoOpPubSub) Publish(channel string, message []byte) error {
	return nil
}

func (p *NoOpPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	msgCh := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(msgCh)
	}()
	return msgCh, nil
}

func (p *NoOpPubSub) Close() error {
	return nil
}

// ClusterHandler обрабатывает широковещательное сообщение другого инстанса
type ClusterHandler func(payload []byte)

// ClusterHub пересылает события пользователям, подключенным к другим инстансам,
// и рассылает служебные сообщения между инстансами
type ClusterHub struct {
	config     config.ClusterConfig
	instanceID string
	hub        *Hub
	Provider   PubSubProvider

	handlersMu sync.RWMutex
	handlers   map[string]ClusterHandler

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClusterHub создает ClusterHub; без провайдера используется NoOpPubSub
func NewClusterHub(hub *Hub, cfg config.ClusterConfig, provider PubSubProvider) *ClusterHub {
	if provider == nil {
		log.Println("[ClusterHub] Провайдер Pub/Sub не предоставлен, используется NoOpPubSub")
		provider = &NoOpPubSub{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ClusterHub{
		config:     cfg,
		instanceID: "instance_" + uuid.New().String(),
		hub:        hub,
		Provider:   provider,
		handlers:   make(map[string]ClusterHandler),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// InstanceID возвращает идентификатор этого инстанса
func (ch *ClusterHub) InstanceID() string {
	return ch.instanceID
}

// Start подписывается на канал кластера
func (ch *ClusterHub) Start() error {
	if !ch.config.Enabled {
		log.Println("[ClusterHub] Кластерный режим отключен")
		return nil
	}
	if ch.config.Channel == "" {
		return errors.New("cluster channel is not configured")
	}
	msgCh, err := ch.Provider.Subscribe(ch.ctx, ch.config.Channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to cluster channel %s: %w", ch.config.Channel, err)
	}
	ch.wg.Add(1)
	go ch.handleMessages(msgCh)
	log.Printf("[ClusterHub] Запущен: instance=%s, channel=%s", ch.instanceID, ch.config.Channel)
	return nil
}

// Stop останавливает обработку и закрывает провайдера
func (ch *ClusterHub) Stop() {
	ch.cancel()
	ch.wg.Wait()
	if err := ch.Provider.Close(); err != nil {
		log.Printf("[ClusterHub] Ошибка закрытия провайдера: %v", err)
	}
}

// SendToUserInCluster публикует сообщение для пользователя в канал кластера
func (ch *ClusterHub) SendToUserInCluster(userID string, payload []byte) error {
	if !ch.config.Enabled {
		return nil
	}
	data, err := json.Marshal(ClusterMessage{
		MessageType: directMessageType,
		RecipientID: userID,
		InstanceID:  ch.instanceID,
		Payload:     payload,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cluster message: %w", err)
	}
	return ch.Provider.Publish(ch.config.Channel, data)
}

// Handle регистрирует обработчик сообщений messageType от других инстансов
func (ch *ClusterHub) Handle(messageType string, handler ClusterHandler) {
	ch.handlersMu.Lock()
	defer ch.handlersMu.Unlock()
	ch.handlers[messageType] = handler
}

// Broadcast публикует сообщение для всех остальных инстансов
func (ch *ClusterHub) Broadcast(messageType string, payload []byte) error {
	if !ch.config.Enabled {
		return nil
	}
	if messageType == directMessageType {
		return fmt.Errorf("message type %q is reserved", messageType)
	}
	data, err := json.Marshal(ClusterMessage{
		MessageType: messageType,
		InstanceID:  ch.instanceID,
		Payload:     payload,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cluster message: %w", err)
	}
	return ch.Provider.Publish(ch.config.Channel, data)
}

func (ch *ClusterHub) handleMessages(msgCh <-chan []byte) {
	defer ch.wg.Done()
	for {
		select {
		case <-ch.ctx.Done():
			return
		case msgBytes, ok := <-msgCh:
			if !ok {
				log.Println("[ClusterHub] Канал кластера закрыт")
				return
			}
			ch.deliver(msgBytes)
		}
	}
}

func (ch *ClusterHub) deliver(msgBytes []byte) {
	var msg ClusterMessage
	if err := json.Unmarshal(msgBytes, &msg); err != nil {
		log.Printf("[ClusterHub] Ошибка десериализации сообщения: %v", err)
		return
	}
	// свои сообщения уже доставлены локально
	if msg.InstanceID == ch.instanceID {
		return
	}
	if msg.MessageType == directMessageType {
		if msg.RecipientID != "" {
			ch.hub.SendToUser(msg.RecipientID, msg.Payload)
		}
		return
	}

	ch.handlersMu.RLock()
	handler, ok := ch.handlers[msg.MessageType]
	ch.handlersMu.RUnlock()
	if !ok {
		log.Printf("[ClusterHub] Нет обработчика для сообщения типа %s", msg.MessageType)
		return
	}
	handler(msg.Payload)
}

// RedisPubSub реализует PubSubProvider поверх Redis
type RedisPubSub struct {
	client redis.UniversalClient
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	subs map[string]*redis.PubSub
}

// NewRedisPubSub создает провайдера на существующем клиенте.
// Клиент принадлежит вызывающему и не закрывается в Close.
func NewRedisPubSub(client redis.UniversalClient) (*RedisPubSub, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil for RedisPubSub")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("provided redis client failed ping check: %w", err)
	}

	ctxPubSub, cancelPubSub := context.WithCancel(context.Background())
	return &RedisPubSub{
		client: client,
		ctx:    ctxPubSub,
		cancel: cancelPubSub,
		subs:   make(map[string]*redis.PubSub),
	}, nil
}

// Publish публикует сообщение в указанный канал
func (p *RedisPubSub) Publish(channel string, message []byte) error {
	if err := p.client.Publish(p.ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe подписывается на канал Redis
func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.subs[channel]; ok {
		return nil, fmt.Errorf("already subscribed to Redis channel %s", channel)
	}

	pubsub := p.client.Subscribe(p.ctx, channel)
	if _, err := pubsub.Receive(p.ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}
	p.subs[channel] = pubsub
	log.Printf("RedisPubSub: Subscribed to channel '%s'", channel)

	msgCh := make(chan []byte, 100)
	go func() {
		defer func() {
			p.mu.Lock()
			delete(p.subs, channel)
			p.mu.Unlock()
			pubsub.Close()
			close(msgCh)
		}()

		redisCh := pubsub.Channel()
		for {
			select {
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				select {
				case msgCh <- []byte(msg.Payload):
				case <-p.ctx.Done():
					return
				case <-ctx.Done():
					return
				}
			case <-p.ctx.Done():
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return msgCh, nil
}

// Close останавливает все подписки
func (p *RedisPubSub) Close() error {
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	var lastErr error
	for channel, pubsub := range p.subs {
		if err := pubsub.Close(); err != nil {
			log.Printf("RedisPubSub: Error closing subscription to channel '%s': %v", channel, err)
			lastErr = err
		}
	}
	return lastErr
}
