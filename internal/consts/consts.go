package consts

const (
	// RequestId 请求id名称
	RequestId = "request_id"
	// ClientId 验签通过后写入context的调用方id
	ClientId = "client_id"

	DateLayout   = "2006-01-02"
	TimeLayout   = "2006-01-02 15:04:05"
	TimeLayoutMs = "2006-01-02 15:04:05.000"
)

// 签名请求头，与客户端SDK约定一致
const (
	HeaderClientID  = "X-Client-ID"
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
)

const (
	// 深圳一天期国债逆回购
	ReverseRepoSymbol = "131810.SZ"

	// 未指定strategy_name时的默认值
	StrategyNameWeb   = "Web界面"
	StrategyNameOuter = "外部策略"
)
