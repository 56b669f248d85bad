package mq

import (
	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// zerologAdapter 把应用的 zerolog 桥接成 watermill.LoggerAdapter，
// router 与收发两端的内部日志由此并入统一输出.
type zerologAdapter struct {
	l *zerolog.Logger
}

// appendFields 把 watermill 字段写入事件，常见类型走快速路径.
func appendFields(ev *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			ev = ev.Str(k, val)
		case bool:
			ev = ev.Bool(k, val)
		case error:
			ev = ev.AnErr(k, val)
		default:
			ev = ev.Interface(k, v)
		}
	}

	return ev
}

func (z *zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	appendFields(z.l.Error().Err(err), fields).Msg(msg)
}

func (z *zerologAdapter) Info(msg string, fields watermill.LogFields) {
	appendFields(z.l.Info(), fields).Msg(msg)
}

func (z *zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	appendFields(z.l.Debug(), fields).Msg(msg)
}

func (z *zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	appendFields(z.l.Trace(), fields).Msg(msg)
}

// With 把固定字段熔进子 logger，watermill 为每个组件各调一次.
func (z *zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := z.l.With()

	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}

	sub := ctx.Logger()

	return &zerologAdapter{l: &sub}
}

// String 实现 fmt.Stringer.
func (z *zerologAdapter) String() string { return "zerolog" }
