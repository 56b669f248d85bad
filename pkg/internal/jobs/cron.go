// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Flapjacck/moxbox/pkg/configs"
	ctxPkg "github.com/Flapjacck/moxbox/pkg/context"
	"github.com/Flapjacck/moxbox/pkg/internal/catalog"
	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/service"
	"github.com/Flapjacck/moxbox/pkg/internal/storage"
	"github.com/Flapjacck/moxbox/pkg/log"
	"github.com/Flapjacck/moxbox/pkg/metrics"
	"github.com/Flapjacck/moxbox/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 每天 03:00 彻底删除超过保留期的回收站文件
//   - 每天 03:30 扫描并回收 catalog 无记录的孤儿 blob
//   - 每天 04:10 全量重算文件夹缓存大小，纠正漂移
//
// 各任务由 trash 配置的开关独立控制。
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	cfg := configs.GetConfig().Trash

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	if cfg.AutoClean {
		if err := sched.AddCron(baseCtx, JobTrashAutoClean, CronTrashAutoClean, func(ctx context.Context) {
			runTrashAutoClean(ctx, cfg)
		}); err != nil {
			return fmt.Errorf("register %s: %w", JobTrashAutoClean, err)
		}
	}

	if cfg.OrphanSweep {
		if err := sched.AddCron(baseCtx, JobOrphanBlobSweep, CronOrphanBlobSweep, func(ctx context.Context) {
			runOrphanBlobSweep(ctx, mgr, cfg)
		}); err != nil {
			return fmt.Errorf("register %s: %w", JobOrphanBlobSweep, err)
		}
	}

	if cfg.ReconcileSizes {
		if err := sched.AddCron(baseCtx, JobFolderSizeReconcile, CronFolderSizeReconcile, func(ctx context.Context) {
			runFolderSizeReconcile(ctx, mgr)
		}); err != nil {
			return fmt.Errorf("register %s: %w", JobFolderSizeReconcile, err)
		}
	}

	return nil
}

// runTrashAutoClean 彻底删除在保留期之前进入回收站的文件。
func runTrashAutoClean(ctx context.Context, cfg configs.TrashConfig) {
	l := log.Logger().With().Str("job", JobTrashAutoClean).Logger()

	cutoff := cfg.RetentionCutoff(time.Now())

	svc := service.NewTrashService(ctx)

	n, err := svc.AutoClean(ctx, cutoff)
	if err != nil {
		l.Error().Err(err).Msg("auto clean failed")
		return
	}

	if n > 0 {
		metrics.TrashAutoCleanedTotal.Add(float64(n))
		l.Info().Int("purged", n).Time("cutoff", cutoff).Msg("auto cleaned trash")
	}
}

// runOrphanBlobSweep 遍历存储根，删除 catalog 中没有记录的 blob。
// 孤儿是补偿失败留下的唯一残留（落盘成功而入库失败），磁盘文件比
// 宽限期新的先放过，避免误删正在进行的上传。
func runOrphanBlobSweep(ctx context.Context, mgr *storage.Manager, cfg configs.TrashConfig) {
	l := log.Logger().With().Str("job", JobOrphanBlobSweep).Logger()

	known, err := listKnownStoragePaths(ctx, mgr)
	if err != nil {
		l.Error().Err(err).Msg("list storage paths failed")
		return
	}

	blobc := mgr.GetBlobClient()
	if blobc == nil {
		l.Error().Msg("blob client not initialized")
		return
	}

	root := blobc.Root()
	deadline := time.Now().Add(-cfg.OrphanGrace())

	var candidates []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		if _, ok := known[rel]; ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			// 扫描期间被并发删除，跳过即可
			return nil
		}

		if info.ModTime().After(deadline) {
			return nil
		}

		candidates = append(candidates, rel)

		return nil
	})
	if walkErr != nil {
		l.Error().Err(walkErr).Msg("walk storage root failed")
		return
	}

	if len(candidates) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.SweepWorkers)

	for _, rel := range candidates {
		g.Go(func() error {
			if err := blobc.Delete(gctx, rel); err != nil {
				l.Warn().Err(err).Str("path", rel).Msg("delete orphan blob failed")
				return nil
			}

			metrics.OrphanBlobsSweptTotal.Inc()
			l.Info().Str("path", rel).Msg("swept orphan blob")

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("orphan sweep aborted")
		return
	}

	l.Info().Int("swept", len(candidates)).Msg("orphan sweep done")
}

// runFolderSizeReconcile 对每个被追踪的文件夹做一次全量重算，
// 把缓存大小和文件表对齐。
func runFolderSizeReconcile(ctx context.Context, mgr *storage.Manager) {
	l := log.Logger().With().Str("job", JobFolderSizeReconcile).Logger()

	dbc := mgr.GetDBClient()
	if dbc == nil || dbc.GetDB() == nil {
		l.Error().Msg("db not initialized")
		return
	}

	files := catalog.NewFileRepo(dbc.GetDB())
	folders := catalog.NewFolderRepo(dbc.GetDB())
	agg := catalog.NewAggregator(files, folders)

	list, err := folders.List(ctx, "")
	if err != nil {
		l.Error().Err(err).Msg("list folders failed")
		return
	}

	drifted := 0

	for i := range list {
		f := &list[i]

		size, ok, err := agg.Recalculate(ctx, f.Path)
		if err != nil {
			l.Error().Err(err).Str("folder", f.Path).Msg("recalculate failed")
			continue
		}

		if ok && size != f.Size {
			drifted++

			l.Warn().Str("folder", f.Path).Int64("cached", f.Size).Int64("actual", size).Msg("folder size drift corrected")
		}
	}

	l.Info().Int("folders", len(list)).Int("drifted", drifted).Msg("folder size reconcile done")
}

// listKnownStoragePaths 查询 catalog 中全部文件的存储路径，
// 活动与回收站状态都计入，它们的 blob 都还在磁盘上。
func listKnownStoragePaths(ctx context.Context, mgr *storage.Manager) (map[string]struct{}, error) {
	if mgr == nil || mgr.GetDBClient() == nil || mgr.GetDBClient().GetDB() == nil {
		return nil, fmt.Errorf("db not initialized")
	}

	dbx := mgr.GetDBClient().GetDB().WithContext(ctx)

	var paths []string
	if err := dbx.Model(&model.File{}).Pluck("storage_path", &paths).Error; err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		known[p] = struct{}{}
	}

	return known, nil
}
