package scheduler_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/Flapjacck/moxbox/pkg/scheduler"
)

// yearly 在每年 1 月 1 日零点触发，测试期间不会真正执行.
const yearly = "0 0 1 1 *"

func newTestScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()

	s, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

// TestAddCronDuplicateName 验证重名任务注册被拒绝.
func TestAddCronDuplicateName(t *testing.T) {
	s := newTestScheduler(t)
	ctx := context.Background()

	if err := s.AddCron(ctx, "trash-sweep", yearly, func(context.Context) {}); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	if err := s.AddCron(ctx, "trash-sweep", yearly, func(context.Context) {}); err == nil {
		t.Fatal("expected error for duplicate job name")
	}
}

// TestAddCronInvalidExpr 验证非法 cron 表达式报错.
func TestAddCronInvalidExpr(t *testing.T) {
	s := newTestScheduler(t)

	err := s.AddCron(context.Background(), "bad", "not a cron", func(context.Context) {})
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

// TestJobInfoSnapshot 验证注册后快照字段齐全，未知任务名报错.
func TestJobInfoSnapshot(t *testing.T) {
	s := newTestScheduler(t)

	if err := s.AddCron(context.Background(), "stats-refresh", yearly, func(context.Context) {}); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	info, err := s.GetJobInfoByName("stats-refresh")
	if err != nil {
		t.Fatalf("GetJobInfoByName: %v", err)
	}

	if info.Name != "stats-refresh" || info.CronExpr != yearly {
		t.Errorf("snapshot = %q/%q, want stats-refresh/%q", info.Name, info.CronExpr, yearly)
	}

	if info.Status != scheduler.StatusScheduled {
		t.Errorf("status = %q, want %q", info.Status, scheduler.StatusScheduled)
	}

	if info.ID == "" || info.CreatedAt.IsZero() {
		t.Error("expected id and created_at to be populated")
	}

	if _, err := s.GetJobInfoByName("nope"); err == nil {
		t.Error("expected error for unknown job name")
	}
}

// TestGetJobInfosSorted 验证快照列表按任务名排序.
func TestGetJobInfosSorted(t *testing.T) {
	s := newTestScheduler(t)
	ctx := context.Background()

	for _, name := range []string{"c-job", "a-job", "b-job"} {
		if err := s.AddCron(ctx, name, yearly, func(context.Context) {}); err != nil {
			t.Fatalf("AddCron %s: %v", name, err)
		}
	}

	infos := s.GetJobInfos()
	if len(infos) != 3 {
		t.Fatalf("len(infos) = %d, want 3", len(infos))
	}

	want := []string{"a-job", "b-job", "c-job"}
	for i, info := range infos {
		if info.Name != want[i] {
			t.Errorf("infos[%d].Name = %q, want %q", i, info.Name, want[i])
		}
	}
}

// TestRemoveJob 验证按 ID 移除后任务从快照中消失.
func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(t)

	if err := s.AddCron(context.Background(), "doomed", yearly, func(context.Context) {}); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	info, err := s.GetJobInfoByName("doomed")
	if err != nil {
		t.Fatalf("GetJobInfoByName: %v", err)
	}

	id, err := uuid.Parse(info.ID)
	if err != nil {
		t.Fatalf("parse job id: %v", err)
	}

	if err := s.RemoveJob(id); err != nil {
		t.Fatalf("RemoveJob: %v", err)
	}

	if _, err := s.GetJobInfoByName("doomed"); err == nil {
		t.Error("expected job to be gone after removal")
	}

	if got := len(s.GetJobInfos()); got != 0 {
		t.Errorf("len(GetJobInfos) = %d, want 0", got)
	}
}

// TestStopAndResume 验证 StopJobs 把状态翻成 stopped，Start 恢复调度.
func TestStopAndResume(t *testing.T) {
	s := newTestScheduler(t)

	if err := s.AddCron(context.Background(), "pausable", yearly, func(context.Context) {}); err != nil {
		t.Fatalf("AddCron: %v", err)
	}

	s.Start()

	if err := s.StopJobs(); err != nil {
		t.Fatalf("StopJobs: %v", err)
	}

	info, err := s.GetJobInfoByName("pausable")
	if err != nil {
		t.Fatalf("GetJobInfoByName: %v", err)
	}

	if info.Status != scheduler.StatusStopped {
		t.Errorf("status after stop = %q, want %q", info.Status, scheduler.StatusStopped)
	}

	s.Start()

	info, err = s.GetJobInfoByName("pausable")
	if err != nil {
		t.Fatalf("GetJobInfoByName: %v", err)
	}

	if info.Status != scheduler.StatusScheduled {
		t.Errorf("status after resume = %q, want %q", info.Status, scheduler.StatusScheduled)
	}
}
