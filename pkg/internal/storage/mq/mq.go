// Package mq 基于 Watermill 封装消息队列，发布文件生命周期事件.
// 具体实现经工厂注册表选择，目前支持 NATS（JetStream）与 Redis Pub/Sub.
//
// 服务进程只做发布端，消费者在进程之外；Subscribe 入口面向 CLI
// 诊断（moxbox mq tail）与测试，不承载业务消费.
//
// 使用示例：
//
//	client, err := mq.New(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	msg := message.NewMessage(watermill.NewUUID(), payload)
//	err = client.Publish(ctx, "topic", msg)
package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/Flapjacck/moxbox/pkg/configs"
	nlog "github.com/Flapjacck/moxbox/pkg/log"
	"github.com/Flapjacck/moxbox/pkg/metrics"
)

// healthProbeTopic 是 HealthCheck 发布探测消息的主题.
const healthProbeTopic = "mb.health.probe"

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型列表.
func GetRegisteredMQTypes() []configs.MQType {
	types := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}

	return types
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router
}

// Publisher 返回底层 Publisher，供 pkg/queue 的类型化发布助手使用.
func (c *Client) Publisher() message.Publisher {
	if c == nil {
		return nil
	}

	return c.publisher
}

// Publish 发布一批消息到主题.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	return c.publisher.Publish(topic, msgs...)
}

// HealthCheck 发布一条探测消息验证 broker 可达.
func (c *Client) HealthCheck(ctx context.Context) error {
	probe := message.NewMessage(watermill.NewUUID(), []byte("ping"))

	return c.Publish(ctx, healthProbeTopic, probe)
}

// Subscribe 订阅主题并返回消息通道.业务代码不走这里，入口面向
// mq tail 等诊断场景.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 关闭发布端、订阅端与 router，错误合并返回.
func (c *Client) Close() error {
	var errs []error

	if c.publisher != nil {
		errs = append(errs, c.publisher.Close())
	}

	if c.subscriber != nil {
		errs = append(errs, c.subscriber.Close())
	}

	if c.router != nil {
		errs = append(errs, c.router.Close())
	}

	return errors.Join(errs...)
}

var (
	mqOnce sync.Once
	mqInst *Client
	mqErr  error
)

// New 初始化消息队列（单例）.
func New(ctx context.Context) (*Client, error) {
	mqOnce.Do(func() {
		mqInst, mqErr = open(ctx)
	})

	return mqInst, mqErr
}

func open(ctx context.Context) (*Client, error) {
	cfg := configs.GetConfig().MQ

	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type %q", cfg.Type)
	}

	logger := &zerologAdapter{l: nlog.Logger()}

	pub, sub, err := factory(ctx, &cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	client := &Client{publisher: pub, subscriber: sub}

	if configs.GetConfig().Metrics.Enabled {
		if err := client.enableMetrics(ctx, logger); err != nil {
			return nil, err
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("mq client ready")

	return client, nil
}

// enableMetrics 把 watermill 的 Prometheus 装饰器挂到应用统一的
// 注册表上，与 /metrics 端点共用，不另起服务.
func (c *Client) enableMetrics(ctx context.Context, logger watermill.LoggerAdapter) error {
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	go func() {
		if runErr := router.Run(ctx); runErr != nil {
			nlog.Logger().Error().Err(runErr).Msg("router run error")
		}
	}()

	builder := wmmetrics.NewPrometheusMetricsBuilder(metrics.GetRegisterer(), "", "")
	builder.AddPrometheusRouterMetrics(router)

	pub, err := builder.DecoratePublisher(c.publisher)
	if err != nil {
		return fmt.Errorf("decorate publisher with metrics: %w", err)
	}

	sub, err := builder.DecorateSubscriber(c.subscriber)
	if err != nil {
		return fmt.Errorf("decorate subscriber with metrics: %w", err)
	}

	c.publisher = pub
	c.subscriber = sub
	c.router = router

	nlog.Logger().Info().Msg("mq metrics enabled")

	return nil
}
