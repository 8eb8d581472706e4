package dispatch

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"qmtgate/internal/model"
	"qmtgate/internal/registry"
	"qmtgate/internal/trader"
	"qmtgate/pkg/errors"
	"qmtgate/pkg/errors/ecode"
)

func newTestEngine(parallel bool) *Engine {
	reg := registry.New(
		trader.NewSimulatedTrader("8880001", "账户一", 1_000_000),
		trader.NewSimulatedTrader("8880002", "账户二", 1_000_000),
		trader.NewSimulatedTrader("8880003", "账户三", 1_000_000),
	)
	return NewEngine(reg, parallel)
}

// 对8880002账户固定失败，其余成功
func failMiddleOp(ctx context.Context, t trader.Trader) (interface{}, error) {
	if t.AccountID() == "8880002" {
		return nil, fmt.Errorf("下单被拒绝")
	}
	return map[string]string{"account": t.AccountID()}, nil
}

func checkPartialBatch(t *testing.T, batch *model.BatchResult) {
	t.Helper()
	if len(batch.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(batch.Results))
	}
	// 结果顺序与账户注册顺序一致
	for i, r := range batch.Results {
		if r.TraderIndex != i {
			t.Errorf("results[%d].TraderIndex = %d", i, r.TraderIndex)
		}
	}
	if batch.Results[0].Status != model.StatusSuccess {
		t.Errorf("results[0].Status = %s", batch.Results[0].Status)
	}
	if batch.Results[1].Status != model.StatusFailed || batch.Results[1].Error == "" {
		t.Errorf("results[1] should be failed with error message, got %+v", batch.Results[1])
	}
	if batch.Results[2].Status != model.StatusSuccess {
		t.Errorf("results[2].Status = %s", batch.Results[2].Status)
	}
	if batch.ExecutedCount != 2 || batch.FailedCount != 1 {
		t.Errorf("counts = (%d, %d), want (2, 1)", batch.ExecutedCount, batch.FailedCount)
	}
	if batch.Outcome() != "partial" {
		t.Errorf("Outcome() = %s, want partial", batch.Outcome())
	}
	// 批次message本身要能看出部分成功
	if !strings.Contains(batch.Message, "部分成功") {
		t.Errorf("message = %q, should mark partial success", batch.Message)
	}
}

func TestExecutePartialFailure(t *testing.T) {
	e := newTestEngine(false)
	batch, err := e.Execute(context.Background(), "买入", nil, failMiddleOp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkPartialBatch(t, batch)
}

func TestExecutePartialFailureParallel(t *testing.T) {
	// 并行模式下结果仍按账户顺序排列
	e := newTestEngine(true)
	batch, err := e.Execute(context.Background(), "买入", nil, failMiddleOp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	checkPartialBatch(t, batch)
}

func TestExecuteSingleTrader(t *testing.T) {
	e := newTestEngine(false)
	idx := 2
	batch, err := e.Execute(context.Background(), "买入", &idx, failMiddleOp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Results) != 1 || batch.Results[0].TraderIndex != 2 {
		t.Fatalf("expected single result for index 2, got %+v", batch.Results)
	}
	if batch.ExecutedCount != 1 || batch.FailedCount != 0 {
		t.Errorf("counts = (%d, %d), want (1, 0)", batch.ExecutedCount, batch.FailedCount)
	}
	if batch.Message != "买入执行完成" {
		t.Errorf("message = %q, want 买入执行完成", batch.Message)
	}
}

func TestExecuteInvalidSelector(t *testing.T) {
	// 选择器无效时批次不应开始，任何账户都不会被触碰
	e := newTestEngine(false)
	called := 0
	idx := 7
	_, err := e.Execute(context.Background(), "买入", &idx, func(ctx context.Context, t trader.Trader) (interface{}, error) {
		called++
		return nil, nil
	})
	if !errors.IsCode(err, ecode.InvalidTraderIndexEr) {
		t.Errorf("expected InvalidTraderIndexEr, got %v", err)
	}
	if called != 0 {
		t.Errorf("op should not run, called %d times", called)
	}
}

func TestExecuteAllFailed(t *testing.T) {
	e := newTestEngine(false)
	batch, err := e.Execute(context.Background(), "卖出", nil, func(ctx context.Context, t trader.Trader) (interface{}, error) {
		return nil, fmt.Errorf("持仓不足")
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.ExecutedCount != 0 || batch.FailedCount != 3 {
		t.Errorf("counts = (%d, %d), want (0, 3)", batch.ExecutedCount, batch.FailedCount)
	}
	if batch.Outcome() != model.StatusFailed {
		t.Errorf("Outcome() = %s, want failed", batch.Outcome())
	}
	if !strings.Contains(batch.Message, "全部失败") {
		t.Errorf("message = %q, should mark total failure", batch.Message)
	}
}

type chanNotifier struct {
	ch chan string
}

func (n *chanNotifier) SendText(ctx context.Context, msg string, atAll bool) error {
	n.ch <- msg
	return nil
}

func TestExecuteNotify(t *testing.T) {
	e := newTestEngine(false)
	n := &chanNotifier{ch: make(chan string, 1)}
	e.WithNotifier(n)

	_, err := e.Execute(context.Background(), "买入", nil, failMiddleOp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case msg := <-n.ch:
		if msg == "" {
			t.Error("empty notify message")
		}
	case <-time.After(3 * time.Second):
		t.Error("notify not sent")
	}
}
