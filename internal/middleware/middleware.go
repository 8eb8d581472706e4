package middleware

import (
	"github.com/gin-gonic/gin"
)

// GlobalMiddleware 全局中间件集合，作为一个Router挂载到gin
type GlobalMiddleware struct{}

func NewMiddleware() *GlobalMiddleware {
	return &GlobalMiddleware{}
}

func (m *GlobalMiddleware) Load(g *gin.Engine) {
	g.Use(RequestId())
	g.Use(Logger)
	g.Use(NoCache())
	g.Use(Secure())
}
