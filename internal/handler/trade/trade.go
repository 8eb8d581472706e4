package trade

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"

	"qmtgate/internal/consts"
	"qmtgate/internal/dispatch"
	"qmtgate/internal/model"
	"qmtgate/internal/registry"
	"qmtgate/internal/trader"
	"qmtgate/pkg/errors"
	"qmtgate/pkg/errors/ecode"
	"qmtgate/pkg/logger"
	"qmtgate/pkg/response"
	"qmtgate/pkg/validator"
)

// 交易接口：买入/卖出/按仓位交易/全仓/逆回购/撤单/订单查询
// 所有批量接口共用注册表的选择器语义：trader_index缺省时作用于全部账户

type Handler struct {
	engine *dispatch.Engine
	reg    *registry.Registry
}

func NewHandler(engine *dispatch.Engine, reg *registry.Registry) *Handler {
	return &Handler{engine: engine, reg: reg}
}

// OuterTrade 第三方签名调用的交易接口
// POST /outer/trade/:operation  operation: buy / sell
// 支持 position_pct 与 order_num 二选一两种数量模式
func (h *Handler) OuterTrade() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		operation := ctx.Param("operation")
		if operation != "buy" && operation != "sell" {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "操作类型必须是 buy 或 sell"), nil)
			return
		}

		var req model.OuterTradeReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}

		// 参数归一化与校验都发生在分发之前，坏请求不会产生部分执行
		spec, err := req.Resolve(consts.StrategyNameOuter)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}

		logger.Infof("第三方开始执行%s交易: symbol=%s, trade_price=%v, mode=%s, price_type=%d, strategy_name=%s",
			operation, spec.Symbol, spec.TradePrice, spec.Mode, spec.PriceType, spec.StrategyName)

		op := func(c context.Context, t trader.Trader) (interface{}, error) {
			if operation == "buy" {
				if spec.Mode == model.SizingPositionPct {
					return t.TargetPct(c, spec.XtSymbol, spec.TradePrice, spec.PositionPct, spec.PriceType, spec.StrategyName)
				}
				return t.BuyShares(c, spec.XtSymbol, spec.TradePrice, spec.OrderNum, spec.PriceType, spec.StrategyName)
			}
			if spec.Mode == model.SizingPositionPct {
				return t.SellTargetPct(c, spec.XtSymbol, spec.TradePrice, spec.PositionPct, spec.PriceType, spec.StrategyName)
			}
			return t.SellShares(c, spec.XtSymbol, spec.TradePrice, spec.OrderNum, spec.PriceType, spec.StrategyName)
		}

		batch, err := h.engine.Execute(ctx, "第三方"+operation+"交易", req.TraderIndex, op)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, batch)
	}
}

// Buy 按固定股数/张数买入
// POST /buy  支持股票（100股）与可转债（10张）
func (h *Handler) Buy() gin.HandlerFunc {
	return h.sharesTrade("buy")
}

// Sell 按固定股数/张数卖出
// POST /sell
func (h *Handler) Sell() gin.HandlerFunc {
	return h.sharesTrade("sell")
}

func (h *Handler) sharesTrade(operation string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.SharesTradeReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}

		// 复用同一套归一化逻辑，保持手数校验与outer接口一致
		outer := model.OuterTradeReq{
			Symbol:       req.Symbol,
			TradePrice:   req.Price,
			PriceType:    req.PriceType,
			OrderNum:     req.Shares,
			TraderIndex:  req.TraderIndex,
			StrategyName: req.StrategyName,
		}
		spec, err := outer.Resolve(consts.StrategyNameWeb)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}

		logger.Infof("开始%s: symbol=%s, price=%v, shares=%d, strategy=%s",
			operation, spec.Symbol, spec.TradePrice, spec.OrderNum, spec.StrategyName)

		op := func(c context.Context, t trader.Trader) (interface{}, error) {
			if operation == "buy" {
				return t.BuyShares(c, spec.XtSymbol, spec.TradePrice, spec.OrderNum, spec.PriceType, spec.StrategyName)
			}
			return t.SellShares(c, spec.XtSymbol, spec.TradePrice, spec.OrderNum, spec.PriceType, spec.StrategyName)
		}

		opName := map[string]string{"buy": "买入", "sell": "卖出"}[operation]
		batch, err := h.engine.Execute(ctx, opName, req.TraderIndex, op)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, batch)
	}
}

// Trade 按仓位比例交易
// POST /trade
func (h *Handler) Trade() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.PctTradeReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}

		outer := model.OuterTradeReq{
			Symbol:       req.Symbol,
			TradePrice:   req.TradePrice,
			PriceType:    req.PriceType,
			PositionPct:  req.PositionPct,
			TraderIndex:  req.TraderIndex,
			StrategyName: req.StrategyName,
		}
		spec, err := outer.Resolve(consts.StrategyNameWeb)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}

		logger.Infof("开始执行交易: symbol=%s, trade_price=%v, position_pct=%v, strategy=%s",
			spec.Symbol, spec.TradePrice, spec.PositionPct, spec.StrategyName)

		op := func(c context.Context, t trader.Trader) (interface{}, error) {
			return t.TargetPct(c, spec.XtSymbol, spec.TradePrice, spec.PositionPct, spec.PriceType, spec.StrategyName)
		}
		batch, err := h.engine.Execute(ctx, "交易", req.TraderIndex, op)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, batch)
	}
}

// AllIn 全仓买入接口
// POST /trade/allin
func (h *Handler) AllIn() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.AllInReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}

		op := func(c context.Context, t trader.Trader) (interface{}, error) {
			return t.AllIn(c, req.Symbol, *req.CurPrice)
		}
		batch, err := h.engine.Execute(ctx, "全仓买入", req.TraderIndex, op)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, batch)
	}
}

// ReverseRepo 逆回购接口，使用可用资金购买深圳R-001
// POST /trade/nhg
func (h *Handler) ReverseRepo() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// 请求体可以为空：默认全部可用资金、全部账户。
		// chunked请求的ContentLength是-1，以实际读到的内容为准，
		// 带trader_index的请求体不能被丢掉
		var req model.ReverseRepoReq
		if err := ctx.ShouldBindJSON(&req); err != nil && err != io.EOF {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		if req.ReserveAmount < 0 {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, "保留金额不能为负数"), nil)
			return
		}

		logger.Infof("开始逆回购操作: reserve_amount=%v", req.ReserveAmount)

		op := func(c context.Context, t trader.Trader) (interface{}, error) {
			return t.ReverseRepo(c, req.ReserveAmount)
		}
		batch, err := h.engine.Execute(ctx, "逆回购", req.TraderIndex, op)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, batch)
	}
}

// CancelAllSell 取消所有卖单接口
// POST /cancel_orders/sale
func (h *Handler) CancelAllSell() gin.HandlerFunc {
	return h.cancelAll("sell")
}

// CancelAllBuy 取消所有买单接口
// POST /cancel_orders/buy
func (h *Handler) CancelAllBuy() gin.HandlerFunc {
	return h.cancelAll("buy")
}

func (h *Handler) cancelAll(side string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		// 空请求体等于不带选择器，io.EOF之外的绑定错误照常拒绝
		var req model.SelectorReq
		if err := ctx.ShouldBindJSON(&req); err != nil && err != io.EOF {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}

		op := func(c context.Context, t trader.Trader) (interface{}, error) {
			if side == "buy" {
				return nil, t.CancelAllBuy(c)
			}
			return nil, t.CancelAllSell(c)
		}
		opName := map[string]string{"buy": "取消所有买单", "sell": "取消所有卖单"}[side]
		batch, err := h.engine.Execute(ctx, opName, req.TraderIndex, op)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		response.JSON(ctx, nil, batch)
	}
}

// CancelOrder 撤单接口，单账户
// POST /cancel_order
func (h *Handler) CancelOrder() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.OrderActionReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		t, err := h.reg.Get(*req.TraderIndex)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		result, err := t.CancelOrder(ctx, *req.OrderID)
		if err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.TraderErr, err.Error()), nil)
			return
		}
		response.JSON(ctx, nil, result)
	}
}

// Order 订单查询，单账户
// POST /order
func (h *Handler) Order() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.OrderActionReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		t, err := h.reg.Get(*req.TraderIndex)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		order, err := t.QueryOrder(ctx, *req.OrderID)
		if err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.TraderErr, err.Error()), nil)
			return
		}
		response.JSON(ctx, nil, order)
	}
}

// Orders 所有订单查询，单账户
// POST /orders
func (h *Handler) Orders() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req model.OrdersQueryReq
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.JSON(ctx, errors.WithCode(ecode.ValidateErr, validator.Translate(err)), nil)
			return
		}
		t, err := h.reg.Get(*req.TraderIndex)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		orders, err := t.QueryOrders(ctx, req.CancelableOnly)
		if err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.TraderErr, err.Error()), nil)
			return
		}
		response.JSON(ctx, nil, orders)
	}
}
