package qmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"qmtgate/internal/model"
	"qmtgate/internal/trader"
	"qmtgate/pkg/logger"
)

// QMT桥接客户端
//
// QMT（迅投极速交易终端）只提供进程内API，交易机上伴随终端运行一个
// 轻量桥接服务，把下单/撤单/查询映射为本地HTTP接口，本客户端负责调用。
// 每个账户对应一个桥接实例。

type Client struct {
	accountID  string
	nickName   string
	baseURL    string
	httpClient *http.Client
}

func NewClient(accountID, nickName, bridgeURL string) (*Client, error) {
	parsed, err := url.Parse(bridgeURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid bridge URL: %s", bridgeURL)
	}
	base := parsed.String()
	if len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return &Client{
		accountID: accountID,
		nickName:  nickName,
		baseURL:   base,
		// 桥接服务在本机，超时同时约束了每次账户操作的时间上限
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *Client) AccountID() string { return c.accountID }
func (c *Client) NickName() string  { return c.nickName }

// bridgeResponse 桥接服务的统一响应包
type bridgeResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) post(ctx context.Context, endpoint string, params map[string]interface{}, result interface{}) error {
	reqBody := map[string]interface{}{"account_id": c.accountID}
	for k, v := range params {
		reqBody[k] = v
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	byteData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge returned status %d: %s", resp.StatusCode, string(byteData))
	}

	var rsp bridgeResponse
	if err := json.Unmarshal(byteData, &rsp); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if !rsp.Success {
		return fmt.Errorf("账户%s操作失败: %s", c.accountID, rsp.Message)
	}
	if result != nil && len(rsp.Data) > 0 {
		if err := json.Unmarshal(rsp.Data, result); err != nil {
			return fmt.Errorf("failed to unmarshal response data: %w", err)
		}
	}
	return nil
}

func (c *Client) placeOrder(ctx context.Context, endpoint, symbol string, price float64, params map[string]interface{}, priceType model.PriceType, strategyName string) (*trader.OrderResult, error) {
	body := map[string]interface{}{
		"symbol":        symbol,
		"price":         price,
		"price_type":    int(priceType),
		"strategy_name": strategyName,
	}
	for k, v := range params {
		body[k] = v
	}
	var result trader.OrderResult
	if err := c.post(ctx, endpoint, body, &result); err != nil {
		return nil, err
	}
	logger.Infof("账户%s委托已提交: %s order_id=%d", c.accountID, symbol, result.OrderID)
	return &result, nil
}

func (c *Client) BuyShares(ctx context.Context, symbol string, price float64, shares int, priceType model.PriceType, strategyName string) (*trader.OrderResult, error) {
	return c.placeOrder(ctx, "/trade/buy_shares", symbol, price,
		map[string]interface{}{"shares": shares}, priceType, strategyName)
}

func (c *Client) SellShares(ctx context.Context, symbol string, price float64, shares int, priceType model.PriceType, strategyName string) (*trader.OrderResult, error) {
	return c.placeOrder(ctx, "/trade/sell_shares", symbol, price,
		map[string]interface{}{"shares": shares}, priceType, strategyName)
}

func (c *Client) TargetPct(ctx context.Context, symbol string, price, pct float64, priceType model.PriceType, strategyName string) (*trader.OrderResult, error) {
	return c.placeOrder(ctx, "/trade/target_pct", symbol, price,
		map[string]interface{}{"position_pct": pct}, priceType, strategyName)
}

func (c *Client) SellTargetPct(ctx context.Context, symbol string, price, pct float64, priceType model.PriceType, strategyName string) (*trader.OrderResult, error) {
	return c.placeOrder(ctx, "/trade/sell_target_pct", symbol, price,
		map[string]interface{}{"position_pct": pct}, priceType, strategyName)
}

func (c *Client) AllIn(ctx context.Context, symbol string, curPrice float64) (*trader.OrderResult, error) {
	var result trader.OrderResult
	err := c.post(ctx, "/trade/allin", map[string]interface{}{
		"symbol": symbol,
		"price":  curPrice,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ReverseRepo(ctx context.Context, reserveAmount float64) (*trader.OrderResult, error) {
	var result trader.OrderResult
	err := c.post(ctx, "/trade/reverse_repo", map[string]interface{}{
		"reserve_amount": reserveAmount,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CancelAllBuy(ctx context.Context) error {
	return c.post(ctx, "/trade/cancel_all", map[string]interface{}{"side": "buy"}, nil)
}

func (c *Client) CancelAllSell(ctx context.Context) error {
	return c.post(ctx, "/trade/cancel_all", map[string]interface{}{"side": "sell"}, nil)
}

func (c *Client) CancelOrder(ctx context.Context, orderID int64) (*trader.CancelResult, error) {
	var result trader.CancelResult
	err := c.post(ctx, "/trade/cancel_order", map[string]interface{}{"order_id": orderID}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) QueryOrder(ctx context.Context, orderID int64) (*trader.Order, error) {
	var order trader.Order
	err := c.post(ctx, "/query/order", map[string]interface{}{"order_id": orderID}, &order)
	if err != nil {
		return nil, err
	}
	if name, ok := trader.OrderStatusMap[order.StatusCode]; ok {
		order.Status = name
	}
	return &order, nil
}

func (c *Client) QueryOrders(ctx context.Context, cancelableOnly bool) ([]trader.Order, error) {
	var orders []trader.Order
	err := c.post(ctx, "/query/orders", map[string]interface{}{"cancelable_only": cancelableOnly}, &orders)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if name, ok := trader.OrderStatusMap[orders[i].StatusCode]; ok {
			orders[i].Status = name
		}
	}
	return orders, nil
}

func (c *Client) GetPortfolio(ctx context.Context) (*trader.Portfolio, error) {
	var p trader.Portfolio
	err := c.post(ctx, "/query/portfolio", nil, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetPositions(ctx context.Context) ([]trader.Position, error) {
	var positions []trader.Position
	err := c.post(ctx, "/query/positions", nil, &positions)
	if err != nil {
		return nil, err
	}
	for i := range positions {
		pos := &positions[i]
		// 终端偶尔返回0市值，用持仓量*成本价补齐
		if pos.MarketValue == 0 && pos.Volume > 0 && pos.AvgPrice > 0 {
			pos.MarketValue = float64(pos.Volume) * pos.AvgPrice
		}
		cost := float64(pos.Volume) * pos.AvgPrice
		cur := pos.CurrentPrice
		if cur == 0 {
			cur = pos.AvgPrice
			pos.CurrentPrice = cur
		}
		if cost > 0 {
			pos.Profit = float64(pos.Volume)*cur - cost
			pos.ProfitRatio = pos.Profit / cost * 100
		}
	}
	return positions, nil
}
