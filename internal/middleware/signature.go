package middleware

import (
	"bytes"
	"io"

	"github.com/gin-gonic/gin"

	"qmtgate/internal/auth"
	"qmtgate/internal/consts"
	"qmtgate/pkg/errors"
	"qmtgate/pkg/errors/ecode"
	"qmtgate/pkg/logger"
	"qmtgate/pkg/response"
)

// Signature HMAC验签中间件，失败直接401，不会进入业务处理
func Signature(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := c.GetHeader(consts.HeaderClientID)
		timestamp := c.GetHeader(consts.HeaderTimestamp)
		signature := c.GetHeader(consts.HeaderSignature)

		if clientID == "" || timestamp == "" || signature == "" {
			logger.Warnf("缺少必要的签名验证参数 path=%s", c.Request.URL.Path)
			response.RequireAuthErr(c, errors.WithCode(ecode.RequireAuthErr, "缺少必要的签名验证参数"))
			c.Abort()
			return
		}

		// 读出请求体用于验签，再放回去供handler绑定
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.RequireAuthErr(c, errors.WithCode(ecode.RequireAuthErr, "读取请求体失败"))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		req := &auth.SignedRequest{
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			QueryString: c.Request.URL.RawQuery,
			Body:        body,
			Timestamp:   timestamp,
			ClientID:    clientID,
			Signature:   signature,
		}
		if err := verifier.Verify(req); err != nil {
			logger.Warnf("签名验证失败 - path:%s Client:%s err:%v", req.Path, clientID, err)
			response.RequireAuthErr(c, err)
			c.Abort()
			return
		}

		logger.Debugf("签名验证成功 - Client: %s", clientID)
		c.Set(consts.ClientId, clientID)
		c.Next()
	}
}
