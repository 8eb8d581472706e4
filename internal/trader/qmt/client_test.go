package qmt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// 起一个假的桥接服务，记录收到的请求体
func newBridge(t *testing.T, handler func(path string, body map[string]interface{}) (int, string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("bridge received bad json: %v", err)
		}
		status, resp := handler(r.URL.Path, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
}

func TestNewClientInvalidURL(t *testing.T) {
	for _, u := range []string{"", "not-a-url", "localhost:7001"} {
		if _, err := NewClient("8880001", "", u); err == nil {
			t.Errorf("NewClient(%q) should fail", u)
		}
	}
}

func TestBuySharesRequestAndResponse(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	srv := newBridge(t, func(path string, body map[string]interface{}) (int, string) {
		gotPath = path
		gotBody = body
		return http.StatusOK, `{"success":true,"data":{"order_id":10086,"symbol":"000001.SZ","price":10.5,"volume":500}}`
	})
	defer srv.Close()

	c, err := NewClient("8880001", "主账户", srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := c.BuyShares(context.Background(), "000001.SZ", 10.5, 500, 0, "外部策略")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/trade/buy_shares" {
		t.Errorf("path = %s", gotPath)
	}
	// account_id必须由客户端注入
	if gotBody["account_id"] != "8880001" {
		t.Errorf("account_id = %v", gotBody["account_id"])
	}
	if gotBody["symbol"] != "000001.SZ" || gotBody["shares"] != float64(500) {
		t.Errorf("unexpected body: %+v", gotBody)
	}
	if result.OrderID != 10086 || result.Volume != 500 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestBridgeFailurePropagates(t *testing.T) {
	srv := newBridge(t, func(path string, body map[string]interface{}) (int, string) {
		return http.StatusOK, `{"success":false,"message":"可用资金不足"}`
	})
	defer srv.Close()

	c, _ := NewClient("8880001", "", srv.URL)
	_, err := c.BuyShares(context.Background(), "000001.SZ", 10.5, 500, 0, "")
	if err == nil || !strings.Contains(err.Error(), "可用资金不足") {
		t.Errorf("expected bridge failure message, got %v", err)
	}
}

func TestBridgeBadStatus(t *testing.T) {
	srv := newBridge(t, func(path string, body map[string]interface{}) (int, string) {
		return http.StatusInternalServerError, `internal error`
	})
	defer srv.Close()

	c, _ := NewClient("8880001", "", srv.URL)
	if err := c.CancelAllBuy(context.Background()); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestQueryOrderStatusMapping(t *testing.T) {
	srv := newBridge(t, func(path string, body map[string]interface{}) (int, string) {
		return http.StatusOK, `{"success":true,"data":{"order_id":42,"symbol":"600136.SH","status_code":56}}`
	})
	defer srv.Close()

	c, _ := NewClient("8880001", "", srv.URL)
	order, err := c.QueryOrder(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Status != "已成" {
		t.Errorf("status = %s, want 已成", order.Status)
	}
}

func TestGetPositionsBackfill(t *testing.T) {
	// 终端返回0市值和0现价时由客户端补齐
	srv := newBridge(t, func(path string, body map[string]interface{}) (int, string) {
		return http.StatusOK, `{"success":true,"data":[{"symbol":"600136.SH","volume":1000,"avg_price":8.0,"market_value":0,"current_price":0}]}`
	})
	defer srv.Close()

	c, _ := NewClient("8880001", "", srv.URL)
	positions, err := c.GetPositions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected 1 position, got %d", len(positions))
	}
	p := positions[0]
	if p.MarketValue != 8000 {
		t.Errorf("market_value = %v, want 8000", p.MarketValue)
	}
	if p.CurrentPrice != 8.0 {
		t.Errorf("current_price = %v, want 8.0", p.CurrentPrice)
	}
	if p.Profit != 0 {
		t.Errorf("profit = %v, want 0", p.Profit)
	}
}

func TestCancelAllSide(t *testing.T) {
	var gotSide interface{}
	srv := newBridge(t, func(path string, body map[string]interface{}) (int, string) {
		if path != "/trade/cancel_all" {
			t.Errorf("path = %s", path)
		}
		gotSide = body["side"]
		return http.StatusOK, `{"success":true}`
	})
	defer srv.Close()

	c, _ := NewClient("8880001", "", srv.URL)
	if err := c.CancelAllSell(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSide != "sell" {
		t.Errorf("side = %v, want sell", gotSide)
	}
}
