// Package sanitize 校验并规范化用户提供的相对文件夹路径，
// 防止路径穿越出存储根目录.所有用户输入的路径在触达文件系统
// 或拼接 catalog 查询之前都必须经过这里.
package sanitize

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Flapjacck/moxbox/pkg/internal/types"
)

const (
	// MaxPathLength 规范化后路径的最大长度.
	MaxPathLength = 255
	// MaxPathDepth 路径段数上限.
	MaxPathDepth = 10
)

// segmentPattern 文件夹段只允许字母、数字、下划线、连字符和空格.
var segmentPattern = regexp.MustCompile(`^[A-Za-z0-9_\- ]+$`)

// Clean 规范化相对文件夹路径：反斜杠转正斜杠、去掉首尾斜杠、
// 压缩空段.空输入、"/"、"\" 都视为根（返回空字符串）.
// 含 ".."、超长、过深或含非法字符时返回 InvalidPathError.
func Clean(raw string) (string, error) {
	if raw == "" || raw == "/" || raw == "\\" {
		return "", nil
	}

	s := strings.ReplaceAll(raw, "\\", "/")

	if strings.Contains(s, "..") {
		return "", types.NewInvalidPath(raw, "path traversal segment")
	}

	s = strings.Trim(s, "/")
	if s == "" {
		return "", nil
	}

	if len(s) > MaxPathLength {
		return "", types.NewInvalidPath(raw, "path too long")
	}

	parts := strings.Split(s, "/")
	segments := make([]string, 0, len(parts))

	for _, seg := range parts {
		if seg == "" {
			continue
		}

		if !segmentPattern.MatchString(seg) {
			return "", types.NewInvalidPath(raw, "segment contains illegal characters")
		}

		segments = append(segments, seg)
	}

	if len(segments) > MaxPathDepth {
		return "", types.NewInvalidPath(raw, "path too deep")
	}

	return strings.Join(segments, "/"), nil
}

// ResolveSecure 将相对路径拼到 root 下并规范化，结果必须仍以
// root 为前缀，否则视为穿越攻击返回 InvalidPathError.
// rel 可以带服务端生成的文件名（含扩展名），这里只做包含性检查.
func ResolveSecure(root, rel string) (string, error) {
	rootClean := filepath.Clean(root)
	abs := filepath.Join(rootClean, filepath.FromSlash(rel))

	if abs != rootClean && !strings.HasPrefix(abs, rootClean+string(filepath.Separator)) {
		return "", types.NewInvalidPath(rel, "escapes storage root")
	}

	return abs, nil
}

// FolderOf 返回存储路径的目录部分，根目录返回空字符串.
func FolderOf(storagePath string) string {
	if idx := strings.LastIndex(storagePath, "/"); idx >= 0 {
		return storagePath[:idx]
	}

	return ""
}

// LeafOf 返回存储路径的最后一段.
func LeafOf(storagePath string) string {
	if idx := strings.LastIndex(storagePath, "/"); idx >= 0 {
		return storagePath[idx+1:]
	}

	return storagePath
}

// Parent 返回文件夹路径的上一级，顶级文件夹返回空字符串.
func Parent(folder string) string {
	return FolderOf(folder)
}

// Ancestors 返回从自身到根的文件夹链（不含根本身）.
// "a/b/c" -> ["a/b/c", "a/b", "a"]；空路径返回 nil.
func Ancestors(folder string) []string {
	if folder == "" {
		return nil
	}

	var chain []string
	for p := folder; p != ""; p = Parent(p) {
		chain = append(chain, p)
	}

	return chain
}

// Prefixes 返回从最外层段到完整路径的前缀链，
// "a/b/c" -> ["a", "a/b", "a/b/c"]，用于懒创建文件夹记录.
func Prefixes(folder string) []string {
	if folder == "" {
		return nil
	}

	parts := strings.Split(folder, "/")
	chain := make([]string, 0, len(parts))

	for i := range parts {
		chain = append(chain, strings.Join(parts[:i+1], "/"))
	}

	return chain
}
