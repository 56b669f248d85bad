package configs

import (
	"github.com/spf13/viper"
)

// KVConfig 键值存储配置，响应缓存与统计缓存走这里选的后端.
// memory 无需外部服务，redis/nats 各带一组连接参数.
type KVConfig struct {
	Type  string        `mapstructure:"type"  rule:"oneof=memory redis nats"`
	Redis RedisKVConfig `mapstructure:"redis"`
	NATS  NATSKVConfig  `mapstructure:"nats"`
}

// RedisKVConfig Redis KV 后端的连接参数.
type RedisKVConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"` // 逻辑库编号
}

// NATSKVConfig NATS KV 后端的连接参数，数据落在 JetStream 的
// KV bucket 里，bucket 不存在时启动后端会自动创建.
type NATSKVConfig struct {
	URL      string `mapstructure:"url"      rule:"hostname_port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Bucket   string `mapstructure:"bucket"   rule:"required"`
}

// setDefaults 设置 KV 配置的默认值.
func (c *KVConfig) setDefaults(v *viper.Viper) {
	// 单机部署默认用进程内存储，无需外部依赖
	v.SetDefault("kv.type", "memory")

	v.SetDefault("kv.redis.addr", "localhost:6379")
	v.SetDefault("kv.redis.password", "")
	v.SetDefault("kv.redis.db", 0)

	v.SetDefault("kv.nats.url", "localhost:4222")
	v.SetDefault("kv.nats.user", "")
	v.SetDefault("kv.nats.password", "")
	v.SetDefault("kv.nats.bucket", "moxbox-kv")
}
