package trade

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"qmtgate/internal/auth"
	"qmtgate/internal/dispatch"
	"qmtgate/internal/middleware"
	"qmtgate/internal/model"
	"qmtgate/internal/registry"
	"qmtgate/internal/trader"
	"qmtgate/pkg/errors/ecode"
)

const (
	testClientID = "quant-01"
	testSecret   = "ab12cd34ef56"
)

// 搭一个带验签中间件和模拟账户的测试服务
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := registry.New(
		trader.NewSimulatedTrader("8880001", "账户一", 1_000_000),
		trader.NewSimulatedTrader("8880002", "账户二", 1_000_000),
		trader.NewSimulatedTrader("8880003", "账户三", 1_000_000),
	)
	engine := dispatch.NewEngine(reg, false)
	h := NewHandler(engine, reg)

	verifier := auth.NewVerifier(map[string]string{testClientID: testSecret}, 300*time.Second)

	g := gin.New()
	base := g.Group("/qmt/trade/api", middleware.Signature(verifier))
	base.POST("/outer/trade/:operation", h.OuterTrade())
	base.POST("/buy", h.Buy())
	base.POST("/trade/nhg", h.ReverseRepo())
	base.POST("/cancel_orders/sale", h.CancelAllSell())
	return g
}

type apiResp struct {
	RequestId string          `json:"request_id"`
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
}

func signedPost(t *testing.T, g *gin.Engine, path, body string) (*httptest.ResponseRecorder, *apiResp) {
	t.Helper()
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig, err := auth.Sign(testSecret, http.MethodPost, path, "", []byte(body), ts, testClientID)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", testClientID)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", sig)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)

	var resp apiResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}
	return w, &resp
}

func decodeBatch(t *testing.T, resp *apiResp) *model.BatchResult {
	t.Helper()
	var batch model.BatchResult
	if err := json.Unmarshal(resp.Data, &batch); err != nil {
		t.Fatalf("bad batch data %s: %v", resp.Data, err)
	}
	return &batch
}

func TestOuterTradeAllAccounts(t *testing.T) {
	g := newTestServer(t)
	// 不带trader_index时作用于全部账户
	body := `{"symbol":"000001","trade_price":10.5,"order_num":500,"price_type":0}`
	w, resp := signedPost(t, g, "/qmt/trade/api/outer/trade/buy", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if resp.Code != ecode.Success {
		t.Fatalf("code = %d, message = %s", resp.Code, resp.Message)
	}

	batch := decodeBatch(t, resp)
	if len(batch.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(batch.Results))
	}
	for i, r := range batch.Results {
		if r.TraderIndex != i {
			t.Errorf("results[%d].TraderIndex = %d", i, r.TraderIndex)
		}
		if r.Status != model.StatusSuccess {
			t.Errorf("results[%d].Status = %s, error = %s", i, r.Status, r.Error)
		}
	}
	if batch.ExecutedCount != 3 || batch.FailedCount != 0 {
		t.Errorf("counts = (%d, %d), want (3, 0)", batch.ExecutedCount, batch.FailedCount)
	}
}

func TestOuterTradeSingleAccount(t *testing.T) {
	g := newTestServer(t)
	body := `{"symbol":"000001","trade_price":10.5,"order_num":500,"price_type":0,"trader_index":0}`
	w, resp := signedPost(t, g, "/qmt/trade/api/outer/trade/buy", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	batch := decodeBatch(t, resp)
	if len(batch.Results) != 1 || batch.Results[0].TraderIndex != 0 {
		t.Fatalf("expected single result for index 0, got %+v", batch.Results)
	}
	if batch.ExecutedCount != 1 {
		t.Errorf("executed_count = %d, want 1", batch.ExecutedCount)
	}
}

func TestOuterTradeInvalidIndex(t *testing.T) {
	g := newTestServer(t)
	body := `{"symbol":"000001","trade_price":10.5,"order_num":500,"trader_index":5}`
	w, resp := signedPost(t, g, "/qmt/trade/api/outer/trade/buy", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp.Code != ecode.InvalidTraderIndexEr {
		t.Errorf("code = %d, want InvalidTraderIndexEr", resp.Code)
	}
}

func TestOuterTradeSizingErrors(t *testing.T) {
	g := newTestServer(t)
	cases := []struct {
		name string
		body string
		code int
	}{
		{"同时给出两种数量", `{"symbol":"000001","trade_price":10.5,"order_num":500,"position_pct":0.5}`, ecode.AmbiguousSizingErr},
		{"两种数量都缺失", `{"symbol":"000001","trade_price":10.5}`, ecode.MissingSizingErr},
		{"仓位比例越界", `{"symbol":"000001","trade_price":10.5,"position_pct":1.2}`, ecode.OutOfRangePctErr},
		{"股数非整手", `{"symbol":"000001","trade_price":10.5,"order_num":150}`, ecode.InvalidLotMultipleEr},
		{"无效价格类型", `{"symbol":"000001","trade_price":10.5,"order_num":500,"price_type":9}`, ecode.InvalidPriceTypeErr},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, resp := signedPost(t, g, "/qmt/trade/api/outer/trade/buy", c.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if resp.Code != c.code {
				t.Errorf("code = %d, want %d", resp.Code, c.code)
			}
		})
	}
}

func TestOuterTradeBadOperation(t *testing.T) {
	g := newTestServer(t)
	body := `{"symbol":"000001","trade_price":10.5,"order_num":500}`
	w, resp := signedPost(t, g, "/qmt/trade/api/outer/trade/hold", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp.Code != ecode.ValidateErr {
		t.Errorf("code = %d, want ValidateErr", resp.Code)
	}
}

func TestMissingAuthHeaders(t *testing.T) {
	g := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/qmt/trade/api/buy",
		strings.NewReader(`{"symbol":"000001","price":10.5,"shares":100}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestTamperedBodyRejected(t *testing.T) {
	g := newTestServer(t)
	path := "/qmt/trade/api/buy"
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	signedBody := `{"symbol":"000001","price":10.5,"shares":100}`
	sig, err := auth.Sign(testSecret, http.MethodPost, path, "", []byte(signedBody), ts, testClientID)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	// 签名对应的是100股，实际送10000股
	tampered := `{"symbol":"000001","price":10.5,"shares":10000}`
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(tampered))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", testClientID)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", sig)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var resp apiResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Code != ecode.InvalidSignatureErr {
		t.Errorf("code = %d, want InvalidSignatureErr", resp.Code)
	}
}

func TestBuyWithSharesBody(t *testing.T) {
	g := newTestServer(t)
	body := `{"symbol":"113009","price":120.5,"shares":20,"trader_index":1}`
	w, resp := signedPost(t, g, "/qmt/trade/api/buy", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	batch := decodeBatch(t, resp)
	if len(batch.Results) != 1 || batch.Results[0].TraderIndex != 1 {
		t.Fatalf("expected single result for index 1, got %+v", batch.Results)
	}
	if batch.Results[0].Status != model.StatusSuccess {
		t.Errorf("status = %s, error = %s", batch.Results[0].Status, batch.Results[0].Error)
	}
}

func TestReverseRepoEmptyBody(t *testing.T) {
	g := newTestServer(t)
	// 空请求体：默认全部可用资金、全部账户
	w, resp := signedPost(t, g, "/qmt/trade/api/trade/nhg", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	batch := decodeBatch(t, resp)
	if len(batch.Results) != 3 || batch.ExecutedCount != 3 {
		t.Fatalf("expected 3 successful results, got %+v", batch)
	}
}

// chunked编码的请求ContentLength是-1，请求体里的trader_index同样必须生效
func chunkedSignedPost(t *testing.T, g *gin.Engine, path, body string) (*httptest.ResponseRecorder, *apiResp) {
	t.Helper()
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig, err := auth.Sign(testSecret, http.MethodPost, path, "", []byte(body), ts, testClientID)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", testClientID)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", sig)
	req.TransferEncoding = []string{"chunked"}
	req.ContentLength = -1

	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)

	var resp apiResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}
	return w, &resp
}

func TestReverseRepoChunkedBodyKeepsSelector(t *testing.T) {
	g := newTestServer(t)
	w, resp := chunkedSignedPost(t, g, "/qmt/trade/api/trade/nhg", `{"reserve_amount":0,"trader_index":0}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	batch := decodeBatch(t, resp)
	if len(batch.Results) != 1 || batch.Results[0].TraderIndex != 0 {
		t.Fatalf("selector must target exactly one account, got %+v", batch.Results)
	}
}

func TestCancelAllChunkedBodyKeepsSelector(t *testing.T) {
	g := newTestServer(t)
	w, resp := chunkedSignedPost(t, g, "/qmt/trade/api/cancel_orders/sale", `{"trader_index":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	batch := decodeBatch(t, resp)
	if len(batch.Results) != 1 || batch.Results[0].TraderIndex != 1 {
		t.Fatalf("selector must target exactly one account, got %+v", batch.Results)
	}
}

func TestReverseRepoBadFieldTypeRejected(t *testing.T) {
	// 空请求体放行，字段类型错误仍要拒绝
	g := newTestServer(t)
	w, resp := signedPost(t, g, "/qmt/trade/api/trade/nhg", `{"reserve_amount":"abc"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp.Code != ecode.ValidateErr {
		t.Errorf("code = %d, want ValidateErr", resp.Code)
	}
}

func TestReverseRepoNegativeReserve(t *testing.T) {
	g := newTestServer(t)
	w, resp := signedPost(t, g, "/qmt/trade/api/trade/nhg", `{"reserve_amount":-100}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp.Code != ecode.ValidateErr {
		t.Errorf("code = %d, want ValidateErr", resp.Code)
	}
}
