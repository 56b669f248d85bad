// Package storage 聚合应用的存储资源：本地 blob 存储、目录数据库、
// KV 缓存与消息队列.进程内只初始化一份，经 Init 取得后挂到请求
// 上下文供 service 层使用.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Flapjacck/moxbox/pkg/configs"
	blobc "github.com/Flapjacck/moxbox/pkg/internal/storage/blob"
	dbc "github.com/Flapjacck/moxbox/pkg/internal/storage/db"
	kvc "github.com/Flapjacck/moxbox/pkg/internal/storage/kv"
	mqc "github.com/Flapjacck/moxbox/pkg/internal/storage/mq"
	nlog "github.com/Flapjacck/moxbox/pkg/log"
)

// Manager 聚合所有存储资源.MQ 仅在事件系统启用且初始化成功时非空.
type Manager struct {
	Blob *blobc.Client
	DB   *dbc.Client
	KV   *kvc.Client
	MQ   *mqc.Client
}

var (
	mgr     *Manager
	mgrErr  error
	mgrOnce sync.Once
)

// Init 初始化默认存储，使用全局配置.重复调用返回首次初始化的结果.
func Init(ctx context.Context) (*Manager, error) {
	mgrOnce.Do(func() {
		mgr, mgrErr = newManager(ctx)
	})

	return mgr, mgrErr
}

// newManager 逐个建立存储客户端.Blob、DB、KV 是硬依赖，失败时
// 回收已开的客户端；MQ 初始化失败只降级为不发事件，不阻断启动.
func newManager(ctx context.Context) (*Manager, error) {
	l := nlog.Component("storage")
	m := &Manager{}

	var err error

	if m.Blob, err = blobc.New(ctx); err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	if m.DB, err = dbc.New(ctx); err != nil {
		_ = m.Close()

		return nil, fmt.Errorf("init catalog database: %w", err)
	}

	if m.KV, err = kvc.NewKVClient(ctx); err != nil {
		_ = m.Close()

		return nil, fmt.Errorf("init kv store: %w", err)
	}

	if configs.GetConfig().Events.Enabled {
		mqi, e := mqc.New(ctx)
		if e != nil {
			l.Warn().Err(e).Msg("mq unavailable, event publishing disabled")
		} else {
			m.MQ = mqi
		}
	}

	l.Info().Msg("storage manager initialized")

	return m, nil
}

// GetBlobClient 获取 blob 存储客户端.
func (m *Manager) GetBlobClient() *blobc.Client {
	return m.Blob
}

// GetDBClient 获取目录数据库客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetKVClient 获取 KV 缓存客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取消息队列客户端，未启用时为 nil.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}

// Close 释放存储资源，按依赖的反序关闭，进程退出前调用.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}

	if m.Blob != nil {
		errs = append(errs, m.Blob.Close())
	}

	return errors.Join(errs...)
}

// NewTestManager 用既有客户端拼一个 Manager，测试专用，不经过单例.
func NewTestManager(blob *blobc.Client, db *dbc.Client, kv *kvc.Client) *Manager {
	return &Manager{Blob: blob, DB: db, KV: kv}
}
