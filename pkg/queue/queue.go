// Package queue 定义文件生命周期事件的消息契约：信封结构、主题常量
// （topics.go）与各主题负载（payloads.go），编解码统一走 sonic JSON.
//
// 每条消息都是一个信封 Message[Payload]，线上格式如下：
//
//	{
//	  "header": {
//	    "topic": "mb.file.stored",
//	    "trace_id": "4bf92f3577b34da6a3ce929d0e0e4736",
//	    "producer": "moxbox",
//	    "occurred_at": "2026-01-02T03:04:05.123456Z",
//	    "version": "v1"
//	  },
//	  "payload": { "file": { "id": "...", "storage_path": "docs/a1b2.pdf" }, "source": "upload" }
//	}
//
// 服务内发布走 Publish* 系列（events.go），Go 消费者用对应的 Parse* 还原
// 强类型信封：
//
//	env, err := queue.ParseFileStored(msg)
//	if err == nil {
//	    log.Printf("stored %s at %s", env.Payload.File.ID, env.Header.OccurredAt)
//	}
//
// 字段全部蛇形命名，非 Go 消费者（如外部同步脚本）按上述结构直接解析
// JSON 即可。几条约定：occurred_at 为 UTC RFC3339；消费者应忽略未知
// 字段以兼容 version 演进；需要业务幂等时可自行以 storage_path 等确定
// 性键做去重，信封 ID 只保证唯一不保证重发一致.
package queue

import (
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

const (
	PayloadVersionV1 string = "v1"

	// DefaultProducer 本服务发布事件时的生产者标识.
	DefaultProducer = "moxbox"
)

// watermill 消息上的元数据键，与信封 header 字段一一对应，
// 方便中间件按键路由或过滤而无需解包负载.
const (
	MetaTopic      = "topic"
	MetaTraceID    = "trace_id"
	MetaProducer   = "producer"
	MetaOccurredAt = "occurred_at"
	MetaVersion    = "version"
)

// NewEventHeader 便捷创建事件头，生产者默认为 DefaultProducer.
func NewEventHeader(topic string, opts ...func(*EventHeader)) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		Producer:   DefaultProducer,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
	}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithTraceID 设置 TraceID.
func WithTraceID(id string) func(*EventHeader) { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) func(*EventHeader) { return func(h *EventHeader) { h.Producer = p } }

// metadata 把 header 铺成 watermill 元数据，可选字段为空时不落键.
func (h EventHeader) metadata() message.Metadata {
	md := message.Metadata{
		MetaTopic:      h.Topic,
		MetaOccurredAt: h.OccurredAt.Format(time.RFC3339Nano),
	}

	for k, v := range map[string]string{
		MetaTraceID:  h.TraceID,
		MetaProducer: h.Producer,
		MetaVersion:  h.Version,
	} {
		if v != "" {
			md[k] = v
		}
	}

	return md
}

// Encode 将信封序列化为 JSON.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 从 JSON 还原信封.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]

	err := sonic.Unmarshal(b, &m)

	return m, err
}

// NewWatermillMessage 构造 watermill 消息：负载为完整信封 JSON，
// header 同步写入消息元数据.
func NewWatermillMessage[T any](topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)

	data, err := Encode(Message[T]{Header: header, Payload: payload})
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata = header.metadata()

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
