package model

// 各交易接口的请求体定义，绑定校验交给gin binding

// SharesTradeReq /buy /sell 按固定股数/张数交易
type SharesTradeReq struct {
	Symbol       string   `json:"symbol" binding:"required"`
	Price        *float64 `json:"price" binding:"required"`
	Shares       *int     `json:"shares" binding:"required"`
	PriceType    *int     `json:"price_type"`
	StrategyName string   `json:"strategy_name"`
	TraderIndex  *int     `json:"trader_index"`
}

// PctTradeReq /trade 按仓位比例交易
type PctTradeReq struct {
	Symbol       string   `json:"symbol" binding:"required"`
	TradePrice   *float64 `json:"trade_price" binding:"required"`
	PositionPct  *float64 `json:"position_pct" binding:"required"`
	PriceType    *int     `json:"pricetype"`
	StrategyName string   `json:"strategy_name"`
	TraderIndex  *int     `json:"trader_index"`
}

// AllInReq /trade/allin 全仓买入
type AllInReq struct {
	Symbol      string   `json:"symbol" binding:"required"`
	CurPrice    *float64 `json:"cur_price" binding:"required"`
	TraderIndex *int     `json:"trader_index"`
}

// ReverseRepoReq /trade/nhg 逆回购
type ReverseRepoReq struct {
	ReserveAmount float64 `json:"reserve_amount"`
	TraderIndex   *int    `json:"trader_index"`
}

// SelectorReq 只带账户选择器的请求（取消所有买单/卖单）
type SelectorReq struct {
	TraderIndex *int `json:"trader_index"`
}

// OrderActionReq 撤单与单个订单查询，必须指定账户
type OrderActionReq struct {
	OrderID     *int64 `json:"order_id" binding:"required"`
	TraderIndex *int   `json:"trader_index" binding:"required"`
}

// OrdersQueryReq 订单列表查询，必须指定账户
type OrdersQueryReq struct {
	TraderIndex    *int `json:"trader_index" binding:"required"`
	CancelableOnly bool `json:"cancelable_only"`
}
