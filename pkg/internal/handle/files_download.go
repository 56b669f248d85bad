package handle

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Flapjacck/moxbox/pkg/internal/service"
	"github.com/Flapjacck/moxbox/pkg/internal/types"
	"github.com/Flapjacck/moxbox/pkg/metrics"
)

// DownloadFile 直传下载单个文件.
//
//	@Summary		下载文件
//	@Description	以文件流返回内容，Content-Disposition 携带展示名；公开文件允许任何用户下载
//	@Tags			文件
//	@Produce		application/octet-stream
//	@Param			id	path		string	true	"文件ID"
//	@Success		200	{file}		file	"文件流"
//	@Failure		400	{object}	map[string]string	"请求参数错误"
//	@Failure		404	{object}	map[string]string	"文件不存在"
//	@Failure		500	{object}	map[string]string	"服务器内部错误"
//	@Router			/api/v1/files/{id}/download [get]
func DownloadFile(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		reqLogger(c).Warn().Err(err).Msg("missing or invalid user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing user"})

		return
	}

	openAndStream(c, user)
}

// PublicDownloadFile 匿名下载公开文件.
//
// 路由位于认证跳过清单内，不要求登录；非公开文件对匿名访问按不存在处理.
//
//	@Summary		下载公开文件
//	@Description	无需登录即可下载标记为公开的文件，私有文件返回 404
//	@Tags			文件
//	@Produce		application/octet-stream
//	@Param			id	path		string	true	"文件ID"
//	@Success		200	{file}		file	"文件流"
//	@Failure		400	{object}	map[string]string	"请求参数错误"
//	@Failure		404	{object}	map[string]string	"文件不存在或不可公开访问"
//	@Failure		500	{object}	map[string]string	"服务器内部错误"
//	@Router			/api/v1/public/files/{id}/download [get]
func PublicDownloadFile(c *gin.Context) {
	openAndStream(c, "")
}

// openAndStream 打开下载流并写入响应，owner 为空表示匿名访问.
func openAndStream(c *gin.Context, owner string) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})

		return
	}

	svc := service.NewFileService(c.Request.Context())

	obj, info, err := svc.OpenDownload(c.Request.Context(), owner, id)
	if err != nil {
		respondServiceError(c, "download", err)

		return
	}

	defer func() { _ = obj.Close() }()

	streamContent(c, obj, info)
}

// streamContent 设置下载响应头并拷贝文件内容.
// 内容哈希当 ETag 用，命中 If-None-Match 时直接 304，不开文件流.
func streamContent(c *gin.Context, obj io.ReadCloser, info *types.FileInfo) {
	if info.HashSha256 != "" {
		etag := `"` + info.HashSha256 + `"`
		c.Header("ETag", etag)

		if match := c.GetHeader("If-None-Match"); match != "" && strings.Contains(match, etag) {
			c.Status(http.StatusNotModified)

			return
		}
	}

	contentType := determineContentType(info.OriginalName, info.MimeType)
	reader := io.Reader(obj)
	// 目录里没有可用类型时才预读嗅探
	if contentType == "application/octet-stream" {
		const sniffLen = 512

		buf := make([]byte, sniffLen)

		n, _ := io.ReadFull(obj, buf)
		if n > 0 {
			contentType = http.DetectContentType(buf[:n])
			reader = io.MultiReader(bytes.NewReader(buf[:n]), obj)
		}
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Length", strconv.FormatInt(info.Size, 10))
	c.Header("Content-Disposition", "attachment; filename=\""+escapeQuoted(info.OriginalName)+"\"")
	c.Status(http.StatusOK)

	written, copyErr := io.Copy(c.Writer, reader)

	metrics.DownloadedBytesTotal.Add(float64(written))

	if copyErr != nil {
		reqLogger(c).Error().Err(copyErr).Str("id", info.ID).Msg("download stream interrupted")
	}
}

// escapeQuoted 简单转义文件名中的引号与分号等.
func escapeQuoted(s string) string {
	replacer := strings.NewReplacer("\\", "_", "\"", "_", ";", "_", "\n", "_", "\r", "_")

	return replacer.Replace(s)
}

// determineContentType 根据已知信息推断 Content-Type.
func determineContentType(fileName, headerType string) string {
	if headerType != "" && headerType != "application/octet-stream" {
		return headerType
	}

	if ext := filepath.Ext(fileName); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
	}

	return "application/octet-stream"
}
