// Package api 暴露服务的版本与构建信息.
package api

import (
	"runtime"
	"runtime/debug"
)

// 链接期可通过 -ldflags "-X github.com/Flapjacck/moxbox/pkg/api.Version=..." 覆盖.
var (
	Version = "dev"
	Commit  = ""
)

// BuildInfo 构建信息快照.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo 汇总版本、提交与运行时信息.未经 ldflags 注入时
// 从模块的 VCS 元数据里补齐提交号.
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	if info.Commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.Commit = s.Value
					break
				}
			}
		}
	}

	return info
}
