package trader

import (
	"context"

	"qmtgate/internal/model"
)

// Trader 一个券商交易会话需要对外暴露的能力集合
// 下层连接（QMT终端、模拟盘）各自实现，分发引擎只面向该接口
type Trader interface {
	AccountID() string
	NickName() string

	// BuyShares 按固定股数/张数买入
	BuyShares(ctx context.Context, symbol string, price float64, shares int, priceType model.PriceType, strategyName string) (*OrderResult, error)
	// SellShares 按固定股数/张数卖出
	SellShares(ctx context.Context, symbol string, price float64, shares int, priceType model.PriceType, strategyName string) (*OrderResult, error)
	// TargetPct 按目标仓位比例买入
	TargetPct(ctx context.Context, symbol string, price, pct float64, priceType model.PriceType, strategyName string) (*OrderResult, error)
	// SellTargetPct 按持仓比例卖出
	SellTargetPct(ctx context.Context, symbol string, price, pct float64, priceType model.PriceType, strategyName string) (*OrderResult, error)
	// AllIn 全仓买入
	AllIn(ctx context.Context, symbol string, curPrice float64) (*OrderResult, error)
	// ReverseRepo 国债逆回购，保留reserveAmount元后全部买入
	ReverseRepo(ctx context.Context, reserveAmount float64) (*OrderResult, error)

	CancelAllBuy(ctx context.Context) error
	CancelAllSell(ctx context.Context) error
	CancelOrder(ctx context.Context, orderID int64) (*CancelResult, error)

	QueryOrder(ctx context.Context, orderID int64) (*Order, error)
	QueryOrders(ctx context.Context, cancelableOnly bool) ([]Order, error)
	GetPortfolio(ctx context.Context) (*Portfolio, error)
	GetPositions(ctx context.Context) ([]Position, error)
}

// OrderResult 一次委托的回报
type OrderResult struct {
	OrderID  int64   `json:"order_id"`
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Volume   int     `json:"volume"`
	Message  string  `json:"message,omitempty"`
	Strategy string  `json:"strategy,omitempty"`
}

type CancelResult struct {
	OrderID int64  `json:"order_id"`
	Message string `json:"message,omitempty"`
}

// Order 委托单
type Order struct {
	OrderID     int64   `json:"order_id"`
	Symbol      string  `json:"symbol"`
	Side        string  `json:"side"` // buy / sell
	Price       float64 `json:"price"`
	Volume      int     `json:"volume"`
	TradedVol   int     `json:"traded_volume"`
	Status      string  `json:"status"`
	Cancelable  bool    `json:"cancelable"`
	OrderTime   string  `json:"order_time,omitempty"`
	StatusCode  int     `json:"status_code"`
	StrategyTag string  `json:"strategy_name,omitempty"`
}

// Portfolio 账户资产
type Portfolio struct {
	TotalAsset  float64 `json:"total_asset"`  // 总资产
	Cash        float64 `json:"cash"`         // 可用金额
	FrozenCash  float64 `json:"frozen_cash"`  // 冻结金额
	MarketValue float64 `json:"market_value"` // 总市值
	Profit      float64 `json:"profit"`       // 盈亏
	ProfitRatio float64 `json:"profit_ratio"` // 盈亏比例
}

// Position 单只证券的持仓
type Position struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Volume       int     `json:"volume"`         // 当前持股
	CanUseVolume int     `json:"can_use_volume"` // 可用股数
	FrozenVolume int     `json:"frozen_volume"`  // 冻结数量
	MarketValue  float64 `json:"market_value"`   // 市值
	AvgPrice     float64 `json:"avg_price"`      // 成本价
	OpenPrice    float64 `json:"open_price"`     // 开仓价
	CurrentPrice float64 `json:"current_price"`  // 最新价
	Profit       float64 `json:"profit"`         // 盈亏
	ProfitRatio  float64 `json:"profit_ratio"`   // 盈亏比例
}

// QMT委托状态码
var OrderStatusMap = map[int]string{
	48:  "未报",
	49:  "待报",
	50:  "已报",
	51:  "已报待撤",
	52:  "部成待撤",
	53:  "部撤",
	54:  "已撤",
	55:  "部成",
	56:  "已成",
	57:  "废单",
	255: "未知",
}
