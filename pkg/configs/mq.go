package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeNATS  MQType = "nats"
	MQTypeRedis MQType = "redis"
)

// MQConfig 消息队列配置，文件与文件夹事件往选中的后端发布.
type MQConfig struct {
	Type   MQType         `mapstructure:"type"   rule:"oneof=nats redis"`
	Common MQCommonConfig `mapstructure:"common"`
	NATS   MQNATSConfig   `mapstructure:"nats"`
	Redis  MQRedisConfig  `mapstructure:"redis"`
}

// MQCommonConfig 连接层通用配置，时间类字段单位为秒.
type MQCommonConfig struct {
	URL           string `mapstructure:"url"            rule:"hostname_port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	ClientID      string `mapstructure:"client_id"`
	MaxReconnects int    `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int    `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
	MaxPingsOut   int    `mapstructure:"max_pings_out"  rule:"min=1,max=10"`
	PingInterval  int    `mapstructure:"ping_interval"  rule:"min=1,max=300"`
	BufferSize    int    `mapstructure:"buffer_size"    rule:"min=1024,max=1048576"`
}

// MQNATSConfig NATS 与 JetStream 配置.
// JetStreamAutoProvision 打开时启动阶段按 StreamMax* 上限预建或更新
// 事件流，关闭则要求流已在服务端建好.
type MQNATSConfig struct {
	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool   `mapstructure:"jetstream_track_msg_id"`
	JetStreamAckAsync      bool   `mapstructure:"jetstream_ack_async"`
	JetStreamDurablePrefix string `mapstructure:"jetstream_durable_prefix"`
	StreamName             string `mapstructure:"stream_name"`
	SubjectPrefix          string `mapstructure:"subject_prefix"`
	StreamMaxMsgs          int64  `mapstructure:"stream_max_msgs"`
	StreamMaxBytes         int64  `mapstructure:"stream_max_bytes"`
	StreamMaxAge           int    `mapstructure:"stream_max_age"` // 小时
	StreamReplicas         int    `mapstructure:"stream_replicas"`
	ConsumerAckWait        int    `mapstructure:"consumer_ack_wait"` // 秒
	ConsumerMaxDeliver     int    `mapstructure:"consumer_max_deliver"`
	ConsumerMaxAckPending  int    `mapstructure:"consumer_max_ack_pending"`
}

// MQRedisConfig Redis pub/sub 配置.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

// setDefaults MQ 默认值，默认走本机 NATS.
func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeNATS)

	v.SetDefault("mq.common.url", "localhost:4222")
	v.SetDefault("mq.common.user", "")
	v.SetDefault("mq.common.password", "")
	v.SetDefault("mq.common.client_id", "moxbox-app")
	v.SetDefault("mq.common.max_reconnects", 5)
	v.SetDefault("mq.common.reconnect_wait", 5)
	v.SetDefault("mq.common.max_pings_out", 3)
	v.SetDefault("mq.common.ping_interval", 20)
	v.SetDefault("mq.common.buffer_size", 32*1024)

	// 流默认留得比较宽：一百万条或 1GB，滚动保留一天.
	v.SetDefault("mq.nats.jetstream_enabled", true)
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.jetstream_ack_async", true)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "moxbox-durable")
	v.SetDefault("mq.nats.stream_name", "moxbox-stream")
	v.SetDefault("mq.nats.subject_prefix", "mb.")
	v.SetDefault("mq.nats.stream_max_msgs", 1_000_000)
	v.SetDefault("mq.nats.stream_max_bytes", 1<<30)
	v.SetDefault("mq.nats.stream_max_age", 24)
	v.SetDefault("mq.nats.stream_replicas", 1)
	v.SetDefault("mq.nats.consumer_ack_wait", 30)
	v.SetDefault("mq.nats.consumer_max_deliver", 3)
	v.SetDefault("mq.nats.consumer_max_ack_pending", 1000)

	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.password", "")
	v.SetDefault("mq.redis.db", 0)
}
