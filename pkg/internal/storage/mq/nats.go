package mq

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/Flapjacck/moxbox/pkg/configs"
)

const (
	drainTimeout     = 30 * time.Second
	flusherTimeout   = 10 * time.Second
	provisionTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// natsFactory 创建 NATS 上的发布端与订阅端.开启 JetStream 时先按配置
// 的留存上限预建流，再挂 watermill 的 Publisher/Subscriber.
func natsFactory(
	ctx context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	if cfg.NATS.JetStreamEnabled && cfg.NATS.JetStreamAutoProvision {
		if err := provisionStream(ctx, cfg, logger); err != nil {
			return nil, nil, err
		}
	}

	opts := connectOptions(&cfg.Common)
	jsCfg := jetStreamConfig(&cfg.NATS)
	marshaler := &nats.JSONMarshaler{}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         cfg.Common.URL,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("nats publisher: %w", err)
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:            cfg.Common.URL,
		NatsOptions:    opts,
		JetStream:      jsCfg,
		Unmarshaler:    marshaler,
		AckWaitTimeout: time.Duration(cfg.NATS.ConsumerAckWait) * time.Second,
	}, logger)
	if err != nil {
		_ = pub.Close()

		return nil, nil, fmt.Errorf("nats subscriber: %w", err)
	}

	return pub, sub, nil
}

// connectOptions 组装 NATS 连接选项，带重连与鉴权.
func connectOptions(cfg *configs.MQCommonConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.ClientID),
		nc.MaxReconnects(cfg.MaxReconnects),
		nc.ReconnectWait(time.Duration(cfg.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(cfg.PingInterval) * time.Second),
		nc.MaxPingsOutstanding(cfg.MaxPingsOut),
		nc.ReconnectBufSize(cfg.BufferSize),
		nc.DrainTimeout(drainTimeout),
		nc.FlusherTimeout(flusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	if cfg.User != "" {
		opts = append(opts, nc.UserInfo(cfg.User, cfg.Password))
	}

	return opts
}

// jetStreamConfig 组装 watermill 侧的 JetStream 配置.
// AutoProvision 保持关闭：watermill 按主题建的流不带容量参数，且会与
// provisionStream 预建的流主题重叠，流由我们自己建.
func jetStreamConfig(cfg *configs.MQNATSConfig) nats.JetStreamConfig {
	if !cfg.JetStreamEnabled {
		return nats.JetStreamConfig{Disabled: true}
	}

	return nats.JetStreamConfig{
		TrackMsgId:    cfg.JetStreamTrackMsgID,
		AckAsync:      cfg.JetStreamAckAsync,
		DurablePrefix: cfg.JetStreamDurablePrefix,
		SubscribeOptions: []nc.SubOpt{
			nc.MaxDeliver(cfg.ConsumerMaxDeliver),
			nc.MaxAckPending(cfg.ConsumerMaxAckPending),
		},
	}
}

// provisionStream 确保事件流存在并套用配置的留存上限，已存在则更新.
func provisionStream(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) error {
	ctx, cancel := context.WithTimeout(ctx, provisionTimeout)
	defer cancel()

	conn, err := nc.Connect(cfg.Common.URL, connectOptions(&cfg.Common)...)
	if err != nil {
		return fmt.Errorf("connect nats %s: %w", cfg.Common.URL, err)
	}
	defer conn.Close()

	js, err := jetstream.New(conn)
	if err != nil {
		return err
	}

	subjects := []string{cfg.NATS.SubjectPrefix + ">"}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.NATS.StreamName,
		Subjects: subjects,
		MaxMsgs:  cfg.NATS.StreamMaxMsgs,
		MaxBytes: cfg.NATS.StreamMaxBytes,
		MaxAge:   time.Duration(cfg.NATS.StreamMaxAge) * time.Hour,
		Replicas: cfg.NATS.StreamReplicas,
	})
	if err != nil {
		return fmt.Errorf("provision stream %s: %w", cfg.NATS.StreamName, err)
	}

	logger.Info("jetstream stream ready", watermill.LogFields{
		"stream":   cfg.NATS.StreamName,
		"subjects": subjects,
	})

	return nil
}
