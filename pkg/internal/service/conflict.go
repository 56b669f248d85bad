package service

import (
	"context"

	"github.com/Flapjacck/moxbox/pkg/internal/model"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

// conflictOutcome 冲突解决结果：existing 非 nil 表示 replace 需要
// 顶掉的活动文件行，finalName 是落库使用的最终显示名.
type conflictOutcome struct {
	existing  *model.File
	finalName string
	replace   bool
}

// resolveNameConflict 对目标 (folder, name) 执行命名冲突检测与解决.
//
// 回收站中的同名文件无条件硬阻止，任何 action 都不能绕过：否则恢复
// 时必然撞名，用户只能先恢复或彻底删除回收站里的那份.活动文件冲突
// 按 action 解决，replace 返回被顶掉的行，keep_both 生成 " (n)" 后缀
// 的新名字.excludeID 用于移动/改名时排除操作对象自身.
func (fs *FileService) resolveNameConflict(ctx context.Context, name, folder, excludeID string,
	action types.ConflictAction) (*conflictOutcome, error) {
	trashed, err := fs.files.GetDeletedByNameAndFolder(ctx, name, folder)
	if err != nil {
		return nil, err
	}

	if trashed != nil {
		return nil, types.NewTrashedConflict(name, folder)
	}

	active, err := fs.files.GetActiveByNameAndFolder(ctx, name, folder, excludeID)
	if err != nil {
		return nil, err
	}

	if active == nil {
		return &conflictOutcome{finalName: name}, nil
	}

	switch action {
	case types.ActionReplace:
		return &conflictOutcome{existing: active, finalName: name, replace: true}, nil
	case types.ActionKeepBoth:
		unique, err := fs.files.GenerateUniqueNameInFolder(ctx, name, folder)
		if err != nil {
			return nil, err
		}

		return &conflictOutcome{finalName: unique}, nil
	default:
		return nil, types.NewActiveConflict(name, folder, active.ID)
	}
}
