package model

import (
	"qmtgate/internal/symbol"
	"qmtgate/pkg/errors"
	"qmtgate/pkg/errors/ecode"
)

// PriceType 委托价格类型
// 0:限价, 1:最新价, 2:最优五档即时成交剩余撤销, 3:本方最优, 5:对方最优
type PriceType int

const (
	PriceTypeLimit       PriceType = 0
	PriceTypeLatest      PriceType = 1
	PriceTypeBestFiveIOC PriceType = 2
	PriceTypeOwnBest     PriceType = 3
	PriceTypeCounterBest PriceType = 5
)

func (pt PriceType) Valid() bool {
	switch pt {
	case PriceTypeLimit, PriceTypeLatest, PriceTypeBestFiveIOC, PriceTypeOwnBest, PriceTypeCounterBest:
		return true
	}
	return false
}

func (pt PriceType) String() string {
	switch pt {
	case PriceTypeLimit:
		return "限价"
	case PriceTypeLatest:
		return "最新价"
	case PriceTypeBestFiveIOC:
		return "最优五档即时成交剩余撤销"
	case PriceTypeOwnBest:
		return "本方最优"
	case PriceTypeCounterBest:
		return "对方最优"
	}
	return "未知"
}

// SizingMode 交易数量模式
type SizingMode string

const (
	SizingPositionPct SizingMode = "position_pct"
	SizingOrderNum    SizingMode = "order_num"
)

// TradeOrderSpec 校验通过后的下单意图，进入分发引擎前生成一次
type TradeOrderSpec struct {
	Symbol       string     // 原始证券代码
	XtSymbol     string     // 带市场后缀的代码，600136 -> 600136.SH
	TradePrice   float64    // 参考价
	Mode         SizingMode // 二选一的数量模式
	PositionPct  float64    // Mode == SizingPositionPct 时有效
	OrderNum     int        // Mode == SizingOrderNum 时有效
	PriceType    PriceType
	StrategyName string
}

// OuterTradeReq 第三方签名交易接口的请求体
type OuterTradeReq struct {
	Symbol       string   `json:"symbol" binding:"required"`
	TradePrice   *float64 `json:"trade_price" binding:"required"`
	PriceType    *int     `json:"price_type"`
	PositionPct  *float64 `json:"position_pct"`
	OrderNum     *int     `json:"order_num"`
	TraderIndex  *int     `json:"trader_index"`
	StrategyName string   `json:"strategy_name"`
}

// Resolve 归一化并校验交易参数，任何错误都发生在触碰账户之前
func (req *OuterTradeReq) Resolve(defaultStrategy string) (*TradeOrderSpec, error) {
	spec := &TradeOrderSpec{
		Symbol:       req.Symbol,
		XtSymbol:     symbol.ToXtSymbol(req.Symbol),
		StrategyName: req.StrategyName,
	}
	if spec.StrategyName == "" {
		spec.StrategyName = defaultStrategy
	}
	if req.TradePrice != nil {
		spec.TradePrice = *req.TradePrice
	}

	// position_pct 和 order_num 二选一
	if req.PositionPct != nil && req.OrderNum != nil {
		return nil, errors.WithCode(ecode.AmbiguousSizingErr, "")
	}
	if req.PositionPct == nil && req.OrderNum == nil {
		return nil, errors.WithCode(ecode.MissingSizingErr, "")
	}

	if req.PositionPct != nil {
		pct := *req.PositionPct
		if pct < 0 || pct > 1 {
			return nil, errors.WithCode(ecode.OutOfRangePctErr, "")
		}
		spec.Mode = SizingPositionPct
		spec.PositionPct = pct
	} else {
		num := *req.OrderNum
		unit := symbol.MinTradeUnit(spec.XtSymbol)
		if num <= 0 || num%unit != 0 {
			return nil, errors.WithCodef(ecode.InvalidLotMultipleEr,
				"order_num 必须是 %d 的正整数倍（%s）", unit, symbol.UnitName(spec.XtSymbol))
		}
		spec.Mode = SizingOrderNum
		spec.OrderNum = num
	}

	pt := PriceTypeLimit
	if req.PriceType != nil {
		pt = PriceType(*req.PriceType)
	}
	if !pt.Valid() {
		return nil, errors.WithCodef(ecode.InvalidPriceTypeErr, "无效的价格类型: %d", int(pt))
	}
	spec.PriceType = pt

	return spec, nil
}

// PerAccountResult 批次内单个账户的执行结果
type PerAccountResult struct {
	TraderIndex int         `json:"trader_index"`
	Status      string      `json:"status"` // success / failed
	Result      interface{} `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// BatchResult 一次分发的聚合结果，Results顺序与账户注册顺序一致
type BatchResult struct {
	Message       string             `json:"message"`
	Results       []PerAccountResult `json:"results"`
	ExecutedCount int                `json:"executed_count"`
	FailedCount   int                `json:"failed_count"`
}

// Outcome 整体结论：success全部成功 / partial部分成功 / failed全部失败
func (b *BatchResult) Outcome() string {
	switch {
	case b.FailedCount == 0:
		return StatusSuccess
	case b.ExecutedCount == 0:
		return StatusFailed
	default:
		return "partial"
	}
}
