package http

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/docvault/core/auth/jwt"
	"github.com/kochabx/docvault/document"
	"github.com/kochabx/docvault/log"
	middleware "github.com/kochabx/docvault/middleware/http"
	"github.com/kochabx/docvault/transport/http/response"
)

// multipartOverhead 为 multipart 边界和其他表单字段预留的空间
const multipartOverhead = 1 << 20

// DocumentService 文档处理器依赖的服务，*document.Service 实现该接口
type DocumentService interface {
	Config() document.Config
	Upload(ctx context.Context, in document.UploadInput) (*document.Record, error)
	List(ctx context.Context, owner string) ([]*document.Record, error)
	Download(ctx context.Context, owner, id string) (*document.Download, error)
	Delete(ctx context.Context, owner, id string) error
	Verify(ctx context.Context, owner string) (*document.VerifyReport, error)
}

var _ DocumentService = (*document.Service)(nil)

// DocumentHandler 文档相关路由
type DocumentHandler struct {
	svc    DocumentService
	logger *log.Logger
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(svc DocumentService, logger *log.Logger) *DocumentHandler {
	if logger == nil {
		logger = log.G
	}
	return &DocumentHandler{svc: svc, logger: logger}
}

// Register 注册路由，upload 额外经过 uploadMiddleware
func (h *DocumentHandler) Register(r gin.IRouter, uploadMiddleware ...gin.HandlerFunc) {
	g := r.Group("/documents")
	g.POST("/upload", append(uploadMiddleware, h.upload)...)
	g.GET("", h.list)
	g.GET("/", h.list)
	g.GET("/:id/download", h.download)
	g.DELETE("/:id", h.delete)
	g.POST("/verify", h.verify)
}

// uploadResult 上传成功的响应
type uploadResult struct {
	ID               string `json:"id"`
	OriginalFilename string `json:"originalFilename"`
}

// listItem 列表项，不包含任何密钥材料
type listItem struct {
	ID               string     `json:"id"`
	OriginalFilename string     `json:"originalFilename"`
	MimeType         string     `json:"mimeType"`
	Size             int64      `json:"size"`
	CreatedAt        time.Time  `json:"createdAt"`
	ExpiryDate       *time.Time `json:"expiryDate,omitempty"`
}

func (h *DocumentHandler) upload(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		response.GinJSONE(c, middleware.ErrUnauthorized)
		return
	}

	maxSize := h.svc.Config().MaxSize
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			response.GinJSONE(c, tooLarge(maxSize))
			return
		}
		response.GinJSONE(c, document.ErrInvalidInput.WithMetadata(map[string]string{"field": "file"}).WithCause(err))
		return
	}
	if fh.Size > maxSize {
		response.GinJSONE(c, tooLarge(maxSize))
		return
	}

	expiry, err := parseExpiryDate(c.PostForm("expiryDate"))
	if err != nil {
		response.GinJSONE(c, document.ErrInvalidInput.WithMetadata(map[string]string{"field": "expiryDate"}).WithCause(err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.GinJSONE(c, document.ErrInvalidInput.WithCause(err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		response.GinJSONE(c, document.ErrInvalidInput.WithCause(err))
		return
	}

	rec, err := h.svc.Upload(c.Request.Context(), document.UploadInput{
		Owner:      owner,
		Filename:   fh.Filename,
		MimeType:   fh.Header.Get("Content-Type"),
		Data:       data,
		ExpiryDate: expiry,
	})
	if err != nil {
		response.GinJSONE(c, err)
		return
	}

	response.GinJSONStatus(c, http.StatusCreated, uploadResult{
		ID:               rec.ID,
		OriginalFilename: rec.OriginalFilename,
	})
}

func (h *DocumentHandler) list(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		response.GinJSONE(c, middleware.ErrUnauthorized)
		return
	}

	records, err := h.svc.List(c.Request.Context(), owner)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}

	items := make([]listItem, 0, len(records))
	for _, r := range records {
		items = append(items, listItem{
			ID:               r.ID,
			OriginalFilename: r.OriginalFilename,
			MimeType:         r.MimeType,
			Size:             r.Size,
			CreatedAt:        r.CreatedAt,
			ExpiryDate:       r.ExpiryDate,
		})
	}
	response.GinJSON(c, items)
}

func (h *DocumentHandler) download(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		response.GinJSONE(c, middleware.ErrUnauthorized)
		return
	}

	d, err := h.svc.Download(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		response.GinJSONE(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(d.Record.OriginalFilename))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, d.Record.MimeType, d.Data)
}

func (h *DocumentHandler) delete(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		response.GinJSONE(c, middleware.ErrUnauthorized)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), owner, c.Param("id")); err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSON(c, gin.H{"success": true})
}

func (h *DocumentHandler) verify(c *gin.Context) {
	owner, ok := ownerFrom(c)
	if !ok {
		response.GinJSONE(c, middleware.ErrUnauthorized)
		return
	}

	report, err := h.svc.Verify(c.Request.Context(), owner)
	if err != nil {
		response.GinJSONE(c, err)
		return
	}
	response.GinJSON(c, report)
}

// OwnerKey 以认证后的所有者作为限流 key
func OwnerKey(c *gin.Context) string {
	if owner, ok := ownerFrom(c); ok {
		return "owner:" + owner
	}
	return "ip:" + c.ClientIP()
}

// ownerFrom 从认证信息中取出所有者
func ownerFrom(c *gin.Context) (string, bool) {
	claims, ok := middleware.GetClaims[*jwt.UserClaims](c.Request.Context())
	if !ok || claims == nil {
		return "", false
	}
	owner := claims.Owner()
	return owner, owner != ""
}

// parseExpiryDate 接受 RFC 3339 时间或 ISO 日期
func parseExpiryDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.New("expiryDate must be an ISO 8601 date")
}

// contentDisposition 生成附件下载头，非 ASCII 文件名按 RFC 2231 编码
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func tooLarge(maxSize int64) error {
	return document.ErrTooLarge.WithMetadata(map[string]string{"max_size": strconv.FormatInt(maxSize, 10)})
}
