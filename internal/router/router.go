package router

import (
	"github.com/gin-gonic/gin"

	"qmtgate/internal/auth"
	"qmtgate/internal/handler/account"
	"qmtgate/internal/handler/ping"
	"qmtgate/internal/handler/trade"
	"qmtgate/internal/middleware"
)

type ApiRouter struct {
	verifier       *auth.Verifier
	tradeHandler   *trade.Handler
	accountHandler *account.Handler
}

func NewApiRouter(verifier *auth.Verifier, th *trade.Handler, ah *account.Handler) *ApiRouter {
	return &ApiRouter{verifier: verifier, tradeHandler: th, accountHandler: ah}
}

func (api *ApiRouter) Load(g *gin.Engine) {

	g.GET("/ping", ping.Ping())

	// 所有交易与查询接口统一走签名验证，
	// 避免部分接口缺少鉴权或缺少账户选择器的不一致
	base := g.Group("/qmt/trade/api", middleware.Signature(api.verifier))

	// 查询类
	base.GET("/accounts", api.accountHandler.Accounts())
	base.GET("/portfolio/:trader_index", api.accountHandler.Portfolio())
	base.GET("/positions/:trader_index", api.accountHandler.Positions())

	// 交易类，挂防重复提交
	t := base.Group("", middleware.AntiDuplicateMiddleware())
	{
		t.POST("/buy", api.tradeHandler.Buy())
		t.POST("/sell", api.tradeHandler.Sell())
		t.POST("/trade", api.tradeHandler.Trade())
		t.POST("/outer/trade/:operation", api.tradeHandler.OuterTrade())
		t.POST("/trade/allin", api.tradeHandler.AllIn())
		t.POST("/trade/nhg", api.tradeHandler.ReverseRepo())
	}

	// 撤单与订单查询
	base.POST("/cancel_orders/sale", api.tradeHandler.CancelAllSell())
	base.POST("/cancel_orders/buy", api.tradeHandler.CancelAllBuy())
	base.POST("/cancel_order", api.tradeHandler.CancelOrder())
	base.POST("/order", api.tradeHandler.Order())
	base.POST("/orders", api.tradeHandler.Orders())
}
