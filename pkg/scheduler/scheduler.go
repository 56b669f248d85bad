// Package scheduler 封装 gocron/v2，带任务状态跟踪，供后台任务与管理接口使用.
package scheduler

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Flapjacck/moxbox/pkg/log"
)

// refreshInterval 是后台刷新 next/last run 时间戳的间隔.
const refreshInterval = 10 * time.Second

// JobStatus 表示任务的状态类型.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled" // 等待下次调度
	StatusRunning   JobStatus = "running"   // 正在执行
	StatusStopped   JobStatus = "stopped"   // 调度已暂停
	StatusError     JobStatus = "error"     // 最近一次执行失败
)

// JobInfo 是单个任务的可观测快照.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// entry 把 gocron 的任务句柄和状态快照绑在一起.
type entry struct {
	handle gocron.Job
	info   JobInfo
}

// Scheduler 在 gocron.Scheduler 之上维护按名称索引的任务状态.
type Scheduler struct {
	inner  gocron.Scheduler
	logger zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	entries map[string]*entry
	names   map[uuid.UUID]string
	halted  bool
}

// NewScheduler 创建调度器并启动时间戳刷新协程.
func NewScheduler() (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		inner:   inner,
		logger:  log.Component("scheduler"),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
		names:   make(map[uuid.UUID]string),
	}

	go s.refreshLoop()

	return s, nil
}

// jobListeners 让 gocron 的运行事件驱动状态翻转.panic 由 gocron
// 捕获，走错误监听路径.
func (s *Scheduler) jobListeners() []gocron.EventListener {
	return []gocron.EventListener{
		gocron.BeforeJobRuns(func(_ uuid.UUID, name string) {
			s.setStatus(name, StatusRunning, "")
		}),
		gocron.AfterJobRuns(func(_ uuid.UUID, name string) {
			s.markCompleted(name)
		}),
		gocron.AfterJobRunsWithError(func(_ uuid.UUID, name string, runErr error) {
			s.setStatus(name, StatusError, runErr.Error())
			s.logger.Error().Str("job", name).Err(runErr).Msg("job failed")
		}),
	}
}

// AddCron 按 cron 表达式注册任务，名称唯一.
func (s *Scheduler) AddCron(ctx context.Context, name, cronExpr string, job func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("job %q already exists", name)
	}

	j, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(job, ctx),
		gocron.WithName(name),
		gocron.WithEventListeners(s.jobListeners()...),
	)
	if err != nil {
		return err
	}

	now := time.Now()
	nextRun, _ := j.NextRun()

	s.entries[name] = &entry{
		handle: j,
		info: JobInfo{
			ID:        j.ID().String(),
			Name:      name,
			CronExpr:  cronExpr,
			NextRun:   nextRun,
			Status:    StatusScheduled,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	s.names[j.ID()] = name

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("cron job added")

	return nil
}

// RunJobNow 立即触发一次已注册的任务，不影响其原有调度.
func (s *Scheduler) RunJobNow(name string) error {
	s.mu.RLock()
	e, exists := s.entries[name]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("job %q not registered", name)
	}

	return e.handle.RunNow()
}

// RemoveJob 按任务 ID 移除任务.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name, exists := s.names[id]; exists {
		delete(s.entries, name)
		delete(s.names, id)

		s.logger.Info().Str("job", name).Msg("job removed")
	}

	return s.inner.RemoveJob(id)
}

// GetJobInfoByName 返回指定任务的状态快照.
func (s *Scheduler) GetJobInfoByName(name string) (*JobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[name]
	if !exists {
		return nil, fmt.Errorf("job %q not registered", name)
	}

	info := e.info

	return &info, nil
}

// GetJobInfos 返回所有任务的状态快照，按名称排序，用于管理接口.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]JobInfo, 0, len(s.entries))
	for _, e := range s.entries {
		jobs = append(jobs, e.info)
	}

	slices.SortFunc(jobs, func(a, b JobInfo) int {
		return strings.Compare(a.Name, b.Name)
	})

	return jobs
}

// JobsWaitingInQueue 返回调度队列中等待执行的任务数.
func (s *Scheduler) JobsWaitingInQueue() int {
	return s.inner.JobsWaitingInQueue()
}

// Start 启动（或恢复）调度.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.halted = false

	for _, e := range s.entries {
		if e.info.Status == StatusStopped {
			e.info.Status = StatusScheduled
			e.info.UpdatedAt = time.Now()
		}
	}
	s.mu.Unlock()

	s.inner.Start()
	s.logger.Info().Msg("scheduler started")
}

// StopJobs 暂停所有任务的执行，任务定义保留.
func (s *Scheduler) StopJobs() error {
	if err := s.inner.StopJobs(); err != nil {
		return err
	}

	s.mu.Lock()
	s.halted = true

	for _, e := range s.entries {
		e.info.Status = StatusStopped
		e.info.UpdatedAt = time.Now()
	}
	s.mu.Unlock()

	s.logger.Info().Msg("all jobs stopped")

	return nil
}

// Shutdown 关闭调度器并终止刷新协程.
func (s *Scheduler) Shutdown() error {
	s.cancel()

	return s.inner.Shutdown()
}

// setStatus 更新任务状态与错误信息.
func (s *Scheduler) setStatus(name string, status JobStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[name]; exists {
		e.info.Status = status
		e.info.Error = errMsg
		e.info.UpdatedAt = time.Now()
	}
}

// markCompleted 记录一次成功执行.
func (s *Scheduler) markCompleted(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[name]; exists {
		now := time.Now()
		e.info.LastRun = now
		e.info.LastSuccess = now
		e.info.Status = StatusScheduled
		e.info.Error = ""
		e.info.UpdatedAt = now
	}
}

// refreshLoop 定期把 gocron 侧的时间信息同步进快照.
func (s *Scheduler) refreshLoop() {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.refresh()
		}
	}
}

// refresh 更新 next/last run 时间戳.状态翻转由事件监听器负责，
// 这里不碰 Status，暂停期间直接跳过.
func (s *Scheduler) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.halted {
		return
	}

	for _, e := range s.entries {
		if nextRun, err := e.handle.NextRun(); err == nil {
			e.info.NextRun = nextRun
		}

		if lastRun, err := e.handle.LastRun(); err == nil && !lastRun.IsZero() {
			e.info.LastRun = lastRun
		}

		e.info.UpdatedAt = time.Now()
	}
}
