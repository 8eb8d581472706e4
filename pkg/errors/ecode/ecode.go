package ecode

// 错误码定义，0表示成功，1xxxx为通用错误，2xxxx为鉴权错误，3xxxx为交易参数错误
const (
	Success = 0

	Unknown     = 10001
	ValidateErr = 10002
	NotFoundErr = 10003
	// RequireAuthErr 鉴权失败统一入口码
	RequireAuthErr = 10004

	// 签名鉴权
	UnknownClientErr    = 20001
	InvalidSignatureErr = 20002
	StaleTimestampErr   = 20003

	// 交易参数校验
	AmbiguousSizingErr   = 30001
	MissingSizingErr     = 30002
	OutOfRangePctErr     = 30003
	InvalidLotMultipleEr = 30004
	InvalidPriceTypeErr  = 30005
	InvalidTraderIndexEr = 30006

	// 账户执行错误（批次内单账户失败不使用该码，整体不可执行时使用）
	TraderErr = 30101
)

var messages = map[int]string{
	Success:              "OK",
	Unknown:              "未知错误",
	ValidateErr:          "请求参数错误",
	NotFoundErr:          "资源不存在",
	RequireAuthErr:       "鉴权失败",
	UnknownClientErr:     "无效的客户端ID",
	InvalidSignatureErr:  "签名验证失败",
	StaleTimestampErr:    "请求时间戳过期",
	AmbiguousSizingErr:   "position_pct 和 order_num 不能同时提供",
	MissingSizingErr:     "必须提供 position_pct 或 order_num 其中之一",
	OutOfRangePctErr:     "position_pct 必须在 0 到 1 之间",
	InvalidLotMultipleEr: "委托数量不是最小交易单位的整数倍",
	InvalidPriceTypeErr:  "无效的价格类型",
	InvalidTraderIndexEr: "无效的交易器索引",
	TraderErr:            "交易执行失败",
}

// Message 返回错误码的默认描述
func Message(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[Unknown]
}
