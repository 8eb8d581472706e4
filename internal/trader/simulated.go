package trader

import (
	"context"
	"fmt"
	"math"
	"sync"

	"qmtgate/internal/consts"
	"qmtgate/internal/model"
	"qmtgate/internal/symbol"
	"qmtgate/pkg/logger"
)

// SimulatedTrader 内存模拟盘，mode为simulated时替代真实QMT会话，
// 也用于单元测试
type SimulatedTrader struct {
	accountID string
	nickName  string

	mu        sync.Mutex
	cash      float64
	positions map[string]*Position // key为带后缀代码
	orders    map[int64]*Order
	nextID    int64
}

func NewSimulatedTrader(accountID, nickName string, initialCash float64) *SimulatedTrader {
	return &SimulatedTrader{
		accountID: accountID,
		nickName:  nickName,
		cash:      initialCash,
		positions: make(map[string]*Position),
		orders:    make(map[int64]*Order),
		nextID:    1000,
	}
}

func (s *SimulatedTrader) AccountID() string { return s.accountID }
func (s *SimulatedTrader) NickName() string  { return s.nickName }

func (s *SimulatedTrader) record(symbolCode, side string, price float64, volume int, strategy string) *Order {
	s.nextID++
	o := &Order{
		OrderID:     s.nextID,
		Symbol:      symbolCode,
		Side:        side,
		Price:       price,
		Volume:      volume,
		TradedVol:   volume,
		StatusCode:  56,
		Status:      OrderStatusMap[56],
		Cancelable:  false,
		StrategyTag: strategy,
	}
	s.orders[o.OrderID] = o
	return o
}

func (s *SimulatedTrader) BuyShares(ctx context.Context, symbolCode string, price float64, shares int, priceType model.PriceType, strategyName string) (*OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cost := price * float64(shares)
	if cost > s.cash {
		return nil, fmt.Errorf("账户%s可用资金不足: 需要%.2f 可用%.2f", s.accountID, cost, s.cash)
	}
	s.cash -= cost
	pos, ok := s.positions[symbolCode]
	if !ok {
		pos = &Position{Symbol: symbolCode, Name: symbolCode, AvgPrice: price}
		s.positions[symbolCode] = pos
	}
	pos.AvgPrice = (pos.AvgPrice*float64(pos.Volume) + cost) / float64(pos.Volume+shares)
	pos.Volume += shares
	pos.CanUseVolume += shares
	pos.CurrentPrice = price
	pos.MarketValue = float64(pos.Volume) * price

	o := s.record(symbolCode, "buy", price, shares, strategyName)
	logger.Debugf("模拟账户%s买入%s %d", s.accountID, symbolCode, shares)
	return &OrderResult{OrderID: o.OrderID, Symbol: symbolCode, Price: price, Volume: shares, Strategy: strategyName}, nil
}

func (s *SimulatedTrader) SellShares(ctx context.Context, symbolCode string, price float64, shares int, priceType model.PriceType, strategyName string) (*OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[symbolCode]
	if !ok || pos.CanUseVolume < shares {
		return nil, fmt.Errorf("账户%s可用持仓不足: %s", s.accountID, symbolCode)
	}
	pos.Volume -= shares
	pos.CanUseVolume -= shares
	pos.MarketValue = float64(pos.Volume) * price
	s.cash += price * float64(shares)
	if pos.Volume == 0 {
		delete(s.positions, symbolCode)
	}

	o := s.record(symbolCode, "sell", price, shares, strategyName)
	return &OrderResult{OrderID: o.OrderID, Symbol: symbolCode, Price: price, Volume: shares, Strategy: strategyName}, nil
}

func (s *SimulatedTrader) TargetPct(ctx context.Context, symbolCode string, price, pct float64, priceType model.PriceType, strategyName string) (*OrderResult, error) {
	s.mu.Lock()
	cash := s.cash
	s.mu.Unlock()

	unit := symbol.MinTradeUnit(symbolCode)
	shares := int(math.Floor(cash*pct/price/float64(unit))) * unit
	if shares <= 0 {
		return nil, fmt.Errorf("账户%s资金不足一手: %s", s.accountID, symbolCode)
	}
	return s.BuyShares(ctx, symbolCode, price, shares, priceType, strategyName)
}

func (s *SimulatedTrader) SellTargetPct(ctx context.Context, symbolCode string, price, pct float64, priceType model.PriceType, strategyName string) (*OrderResult, error) {
	s.mu.Lock()
	pos, ok := s.positions[symbolCode]
	var available int
	if ok {
		available = pos.CanUseVolume
	}
	s.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("账户%s没有持仓: %s", s.accountID, symbolCode)
	}
	unit := symbol.MinTradeUnit(symbolCode)
	shares := int(math.Floor(float64(available)*pct/float64(unit))) * unit
	if pct >= 1 {
		// 清仓时允许零头
		shares = available
	}
	if shares <= 0 {
		return nil, fmt.Errorf("账户%s可卖数量不足一手: %s", s.accountID, symbolCode)
	}
	return s.SellShares(ctx, symbolCode, price, shares, priceType, strategyName)
}

func (s *SimulatedTrader) AllIn(ctx context.Context, symbolCode string, curPrice float64) (*OrderResult, error) {
	return s.TargetPct(ctx, symbolCode, curPrice, 1, model.PriceTypeLatest, consts.StrategyNameWeb)
}

func (s *SimulatedTrader) ReverseRepo(ctx context.Context, reserveAmount float64) (*OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 逆回购以1000元为一个单位，数量按10张递增
	available := s.cash - reserveAmount
	lots := int(math.Floor(available / 1000))
	if lots <= 0 {
		return nil, fmt.Errorf("账户%s可用资金不足以参与逆回购", s.accountID)
	}
	volume := lots * 10
	o := s.record(consts.ReverseRepoSymbol, "sell", 100, volume, "逆回购")
	return &OrderResult{OrderID: o.OrderID, Symbol: consts.ReverseRepoSymbol, Price: 100, Volume: volume,
		Message: fmt.Sprintf("逆回购%d张", volume)}, nil
}

func (s *SimulatedTrader) cancelAll(side string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.Cancelable && o.Side == side {
			o.StatusCode = 54
			o.Status = OrderStatusMap[54]
			o.Cancelable = false
		}
	}
	return nil
}

func (s *SimulatedTrader) CancelAllBuy(ctx context.Context) error  { return s.cancelAll("buy") }
func (s *SimulatedTrader) CancelAllSell(ctx context.Context) error { return s.cancelAll("sell") }

func (s *SimulatedTrader) CancelOrder(ctx context.Context, orderID int64) (*CancelResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("订单不存在: %d", orderID)
	}
	if !o.Cancelable {
		return nil, fmt.Errorf("订单不可撤: %d (%s)", orderID, o.Status)
	}
	o.StatusCode = 54
	o.Status = OrderStatusMap[54]
	o.Cancelable = false
	return &CancelResult{OrderID: orderID, Message: "已撤"}, nil
}

func (s *SimulatedTrader) QueryOrder(ctx context.Context, orderID int64) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("订单不存在: %d", orderID)
	}
	cp := *o
	return &cp, nil
}

func (s *SimulatedTrader) QueryOrders(ctx context.Context, cancelableOnly bool) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Order
	for _, o := range s.orders {
		if cancelableOnly && !o.Cancelable {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (s *SimulatedTrader) GetPortfolio(ctx context.Context) (*Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mv float64
	for _, pos := range s.positions {
		mv += pos.MarketValue
	}
	return &Portfolio{
		TotalAsset:  s.cash + mv,
		Cash:        s.cash,
		MarketValue: mv,
	}, nil
}

func (s *SimulatedTrader) GetPositions(ctx context.Context) ([]Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Position
	for _, pos := range s.positions {
		out = append(out, *pos)
	}
	return out, nil
}
