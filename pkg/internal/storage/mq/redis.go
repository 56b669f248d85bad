package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

// subscribeBufferSize 订阅通道的缓冲大小，消费方短暂卡顿时先在本地攒一批.
const subscribeBufferSize = 100

// redis pub/sub 只传字节，事件信封整体编入 payload（见 queue.Encode），
// 不额外搬运 watermill 元数据.

// redisConn 在 publisher 与 subscriber 之间共享同一个客户端，
// 先关闭的一方真正释放连接，另一方拿到同样的结果.
type redisConn struct {
	client *redis.Client
	once   sync.Once
	err    error
}

func (c *redisConn) close() error {
	c.once.Do(func() {
		c.err = c.client.Close()
	})

	return c.err
}

type redisPublisher struct {
	conn *redisConn
}

type redisSubscriber struct {
	conn    *redisConn
	logger  watermill.LoggerAdapter
	mu      sync.Mutex
	wg      sync.WaitGroup
	closed  bool
	closeCh chan struct{}
}

func init() {
	RegisterFactory(configs.MQTypeRedis, redisFactory)
}

// redisFactory 建一个客户端同时供发布与订阅两端使用.
func redisFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()

		return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.Redis.Addr, err)
	}

	conn := &redisConn{client: rdb}

	pub := &redisPublisher{conn: conn}

	sub := &redisSubscriber{
		conn:    conn,
		logger:  logger,
		closeCh: make(chan struct{}),
	}

	return pub, sub, nil
}

// Publish 实现 Publisher 接口，逐条 PUBLISH 负载字节.
func (p *redisPublisher) Publish(topic string, msgs ...*message.Message) error {
	ctx := context.Background()

	for _, msg := range msgs {
		if err := p.conn.client.Publish(ctx, topic, []byte(msg.Payload)).Err(); err != nil {
			return fmt.Errorf("publish to %s: %w", topic, err)
		}
	}

	return nil
}

// Close 实现 Publisher 接口.
func (p *redisPublisher) Close() error {
	return p.conn.close()
}

// Subscribe 实现 Subscriber 接口.每个主题独立一个 PubSub，
// 随 ctx 取消或订阅端关闭而退出，退出时释放该 PubSub 并关闭返回的通道.
func (s *redisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("redis subscriber closed")
	}

	pubsub := s.conn.client.Subscribe(ctx, topic)
	out := make(chan *message.Message, subscribeBufferSize)

	s.wg.Add(1)

	go s.pump(ctx, pubsub, out)

	return out, nil
}

// pump 把 go-redis 的订阅通道搬运成 watermill 消息.
// pubsub.Channel 内部处理断线重订阅，这里只关心转发与退出时机.
func (s *redisSubscriber) pump(ctx context.Context, pubsub *redis.PubSub, out chan<- *message.Message) {
	defer s.wg.Done()
	defer close(out)
	defer func() {
		if err := pubsub.Close(); err != nil {
			s.logger.Error("close redis pubsub", err, nil)
		}
	}()

	in := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closeCh:
			return
		case msg, ok := <-in:
			if !ok {
				return
			}

			wm := message.NewMessage(watermill.NewUUID(), []byte(msg.Payload))
			wm.Metadata.Set("redis_channel", msg.Channel)

			select {
			case out <- wm:
			case <-ctx.Done():
				return
			case <-s.closeCh:
				return
			}
		}
	}
}

// Close 实现 Subscriber 接口，等所有订阅泵退出后释放连接.
func (s *redisSubscriber) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	close(s.closeCh)
	s.mu.Unlock()

	s.wg.Wait()

	return s.conn.close()
}
