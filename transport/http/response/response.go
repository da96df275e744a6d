// Package response 统一的 {code, msg, data} 响应体
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/docvault/errors"
)

const (
	successMessage = "success"

	// 未知错误不向调用方暴露细节
	internalMessage = "internal server error"
)

type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

// GinJSON 写入 200 成功响应
func GinJSON(c *gin.Context, data any) {
	GinJSONStatus(c, http.StatusOK, data)
}

// GinJSONStatus code 与 HTTP 状态码一致
func GinJSONStatus(c *gin.Context, status int, data any) {
	if c == nil {
		return
	}
	c.JSON(status, Response{Code: status, Msg: successMessage, Data: data})
}

// GinJSONE 写入错误响应并中止后续 handler
// errors.Error 的元数据作为 data 返回，cause 不返回；其他错误只记录在 c.Errors 中并返回 500
func GinJSONE(c *gin.Context, err error) {
	if c == nil {
		return
	}
	defer c.Abort()

	var e *errors.Error
	if !errors.As(err, &e) {
		if err != nil {
			_ = c.Error(err)
		}
		c.JSON(http.StatusInternalServerError, Response{Code: http.StatusInternalServerError, Msg: internalMessage})
		return
	}

	resp := Response{Code: e.Code, Msg: e.Message}
	if len(e.Metadata) > 0 {
		resp.Data = e.Metadata
	}
	c.JSON(e.HTTPStatus(), resp)
}
