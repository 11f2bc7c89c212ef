package redis

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/imoview/realty-crm/internal/core/ports"
)

// channelPrefix namespaces the per-table pub/sub channels.
const channelPrefix = "realty:"

// Channel implements the realtime replication feed over redis pub/sub: one
// logical subscription per table, registered by channel name. Subscribing to
// an already-open channel reuses the existing handle; a channel whose receive
// loop dies is evicted so a later Subscribe opens a fresh one.
type Channel struct {
	client *redis.Client
	log    zerolog.Logger

	mu     sync.Mutex
	active map[string]*redis.PubSub
}

func NewChannel(client *redis.Client, log zerolog.Logger) *Channel {
	return &Channel{
		client: client,
		log:    log,
		active: make(map[string]*redis.PubSub),
	}
}

// Subscribe opens (or reuses) the subscription for one table and feeds every
// decoded change event to handler. The handler runs on the receive goroutine.
func (c *Channel) Subscribe(ctx context.Context, table string, handler func(ports.ChangeEvent)) error {
	if c == nil || c.client == nil {
		return nil
	}
	name := channelPrefix + table

	c.mu.Lock()
	if _, ok := c.active[name]; ok {
		c.mu.Unlock()
		return nil
	}
	sub := c.client.Subscribe(ctx, name)
	c.active[name] = sub
	c.mu.Unlock()

	go c.receive(name, table, sub, handler)
	return nil
}

func (c *Channel) receive(name, table string, sub *redis.PubSub, handler func(ports.ChangeEvent)) {
	defer c.evict(name, sub)

	for msg := range sub.Channel() {
		var evt ports.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
			c.log.Warn().Err(err).Str("channel", name).Msg("undecodable realtime event dropped")
			continue
		}
		if evt.Table == "" {
			evt.Table = table
		}
		handler(evt)
	}
	c.log.Debug().Str("channel", name).Msg("realtime channel closed")
}

// evict forgets a dead subscription so the next Subscribe starts fresh.
func (c *Channel) evict(name string, sub *redis.PubSub) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.active[name]; ok && current == sub {
		delete(c.active, name)
	}
}

// CloseAll tears down every open subscription. Used on logout, tying the
// channel lifecycle to the authenticated session.
func (c *Channel) CloseAll() {
	if c == nil {
		return
	}
	c.mu.Lock()
	subs := make([]*redis.PubSub, 0, len(c.active))
	for name, sub := range c.active {
		subs = append(subs, sub)
		delete(c.active, name)
	}
	c.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
}

// Publish pushes one committed change to the other replicas.
func (c *Channel) Publish(ctx context.Context, event ports.ChangeEvent) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, channelPrefix+event.Table, payload).Err()
}
