package registry

import (
	"qmtgate/internal/trader"
	"qmtgate/pkg/errors"
	"qmtgate/pkg/errors/ecode"
)

// 交易器注册表：启动时按配置顺序装入全部账户会话，运行期间只读，
// 所有支持 trader_index 可选参数的接口都通过 Resolve 做同一套选择逻辑

// Entry 注册表中的一个账户，Index在进程生命周期内稳定
type Entry struct {
	Index  int
	Trader trader.Trader
}

type Registry struct {
	entries []Entry
}

func New(traders ...trader.Trader) *Registry {
	r := &Registry{}
	for i, t := range traders {
		r.entries = append(r.entries, Entry{Index: i, Trader: t})
	}
	return r
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// Resolve 解析可选的账户选择器：
//   - traderIndex为nil时返回全部账户（注册顺序）
//   - 在范围内时返回单个账户
//   - 越界返回InvalidTraderIndex错误
func (r *Registry) Resolve(traderIndex *int) ([]Entry, error) {
	if traderIndex == nil {
		out := make([]Entry, len(r.entries))
		copy(out, r.entries)
		return out, nil
	}
	idx := *traderIndex
	if idx < 0 || idx >= len(r.entries) {
		return nil, errors.WithCodef(ecode.InvalidTraderIndexEr, "无效的交易器索引: %d", idx)
	}
	return []Entry{r.entries[idx]}, nil
}

// Get 取单个账户，用于仅支持单账户的接口
func (r *Registry) Get(index int) (trader.Trader, error) {
	if index < 0 || index >= len(r.entries) {
		return nil, errors.WithCodef(ecode.InvalidTraderIndexEr, "无效的交易器索引: %d", index)
	}
	return r.entries[index].Trader, nil
}

// All 全部账户
func (r *Registry) All() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
