package symbol

import "strings"

// 证券代码工具：市场推断、代码后缀转换、证券类型与最小交易单位

type Market string

const (
	MarketSH Market = "sh"
	MarketSZ Market = "sz"
	MarketBJ Market = "bj"
)

// 最小交易单位
const (
	LotSizeStock           = 100 // 股票100股
	LotSizeConvertibleBond = 10  // 可转债10张
)

var (
	shPrefixes = []string{"50", "51", "60", "73", "90", "110", "113", "132", "204", "78"}
	szPrefixes = []string{"00", "12", "13", "18", "15", "16", "20", "30", "39", "115", "1318"}
	// 可转债代码段：沪市110/111/113/118，深市123/127/128
	bondPrefixes = []string{"110", "111", "113", "118", "123", "127", "128"}
)

// GetMarket 判断证券代码对应的市场
// 匹配规则与行情端保持一致：
// ['50','51','60','73','90','110','113','132','204','78'] 为 sh
// ['00','12','13','18','15','16','20','30','39','115','1318'] 为 sz
// ['5','6'] 开头为 sh，['8','4','9'] 开头为 bj，其余为 sz
func GetMarket(code string) Market {
	if strings.HasPrefix(code, "sh") || strings.HasPrefix(code, "sz") {
		return Market(code[:2])
	}
	for _, p := range shPrefixes {
		if strings.HasPrefix(code, p) {
			return MarketSH
		}
	}
	for _, p := range szPrefixes {
		if strings.HasPrefix(code, p) {
			return MarketSZ
		}
	}
	if strings.HasPrefix(code, "5") || strings.HasPrefix(code, "6") {
		return MarketSH
	}
	if strings.HasPrefix(code, "8") || strings.HasPrefix(code, "4") || strings.HasPrefix(code, "9") {
		return MarketBJ
	}
	return MarketSZ
}

// ToXtSymbol 转换为交易终端使用的带后缀代码，600136 -> 600136.SH
// 已带后缀的代码先去掉再重新推断
func ToXtSymbol(code string) string {
	bare := code
	if idx := strings.Index(code, "."); idx > 0 {
		bare = code[:idx]
	}
	switch GetMarket(bare) {
	case MarketBJ:
		return bare + ".BJ"
	case MarketSH:
		return bare + ".SH"
	default:
		return bare + ".SZ"
	}
}

// IsConvertibleBond 是否为可转债
func IsConvertibleBond(code string) bool {
	bare := code
	if idx := strings.Index(code, "."); idx > 0 {
		bare = code[:idx]
	}
	for _, p := range bondPrefixes {
		if strings.HasPrefix(bare, p) {
			return true
		}
	}
	return false
}

// MinTradeUnit 最小交易单位：股票100股，可转债10张
func MinTradeUnit(code string) int {
	if IsConvertibleBond(code) {
		return LotSizeConvertibleBond
	}
	return LotSizeStock
}

// UnitName 委托单位名称，用于提示信息
func UnitName(code string) string {
	if IsConvertibleBond(code) {
		return "张"
	}
	return "股"
}
