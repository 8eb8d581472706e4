package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"qmtgate/internal/model"
	"qmtgate/internal/registry"
	"qmtgate/internal/trader"
	"qmtgate/pkg/logger"
)

// 分发引擎：把一次请求展开为对选中账户集合的逐个调用，
// 单个账户失败只记录在该账户的结果里，不会中断批次内的后续账户

// Op 对单个账户执行的操作
type Op func(ctx context.Context, t trader.Trader) (interface{}, error)

// Notifier 批次完成后的通知出口（钉钉等），失败只记日志
type Notifier interface {
	SendText(ctx context.Context, msg string, atAll bool) error
}

type Engine struct {
	reg      *registry.Registry
	parallel bool
	notifier Notifier
}

func NewEngine(reg *registry.Registry, parallel bool) *Engine {
	return &Engine{reg: reg, parallel: parallel}
}

// WithNotifier 挂接批次完成通知
func (e *Engine) WithNotifier(n Notifier) *Engine {
	e.notifier = n
	return e
}

// Execute 解析账户选择器并逐个执行op，聚合为BatchResult。
// 结果顺序与注册表索引顺序一致，即便并行执行也是如此。
// 返回error仅表示批次无法开始（选择器无效），账户级失败在结果里体现
func (e *Engine) Execute(ctx context.Context, opName string, traderIndex *int, op Op) (*model.BatchResult, error) {
	entries, err := e.reg.Resolve(traderIndex)
	if err != nil {
		return nil, err
	}

	results := make([]model.PerAccountResult, len(entries))
	if e.parallel && len(entries) > 1 {
		// 每个账户会话彼此独立，可以安全并行；结果写入各自的槽位保持顺序
		var g errgroup.Group
		for i, entry := range entries {
			i, entry := i, entry
			g.Go(func() error {
				results[i] = e.runOne(ctx, opName, entry, op)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, entry := range entries {
			results[i] = e.runOne(ctx, opName, entry, op)
		}
	}

	batch := aggregate(opName, results)
	e.notify(opName, batch)
	return batch, nil
}

func (e *Engine) runOne(ctx context.Context, opName string, entry registry.Entry, op Op) model.PerAccountResult {
	logger.Infof("交易器%d开始执行%s", entry.Index, opName)
	result, err := op(ctx, entry.Trader)
	if err != nil {
		errMsg := fmt.Sprintf("交易器%d%s失败: %v", entry.Index, opName, err)
		logger.Errorf("%s", errMsg)
		return model.PerAccountResult{
			TraderIndex: entry.Index,
			Status:      model.StatusFailed,
			Error:       errMsg,
		}
	}
	logger.Infof("交易器%d%s完成", entry.Index, opName)
	return model.PerAccountResult{
		TraderIndex: entry.Index,
		Status:      model.StatusSuccess,
		Result:      result,
	}
}

// aggregate 组装批次结果与统计，message要能区分全部成功/部分成功/全部失败
func aggregate(opName string, results []model.PerAccountResult) *model.BatchResult {
	batch := &model.BatchResult{
		Results: results,
	}
	var errs error
	for _, r := range results {
		if r.Status == model.StatusSuccess {
			batch.ExecutedCount++
		} else {
			batch.FailedCount++
			errs = multierr.Append(errs, fmt.Errorf("%s", r.Error))
		}
	}
	switch batch.Outcome() {
	case model.StatusSuccess:
		batch.Message = fmt.Sprintf("%s执行完成", opName)
	case model.StatusFailed:
		batch.Message = fmt.Sprintf("%s全部失败", opName)
	default:
		batch.Message = fmt.Sprintf("%s部分成功: 成功%d 失败%d", opName, batch.ExecutedCount, batch.FailedCount)
	}
	if errs != nil {
		logger.Warn("批次存在失败账户",
			logger.Pair("op", opName),
			logger.Pair("executed", batch.ExecutedCount),
			logger.Pair("failed", batch.FailedCount),
			logger.Pair("errors", errs.Error()))
	}
	return batch
}

func (e *Engine) notify(opName string, batch *model.BatchResult) {
	if e.notifier == nil {
		return
	}
	msg := fmt.Sprintf("[qmtgate] %s: 成功%d 失败%d (%s)",
		opName, batch.ExecutedCount, batch.FailedCount, batch.Outcome())
	// 通知不阻塞请求
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.notifier.SendText(ctx, msg, false); err != nil {
			logger.Warnf("钉钉通知发送失败: %v", err)
		}
	}()
}
