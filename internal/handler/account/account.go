package account

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"qmtgate/internal/registry"
	"qmtgate/pkg/errors"
	"qmtgate/pkg/errors/ecode"
	"qmtgate/pkg/response"
)

// 账户查询接口：账户列表、资产、持仓

type Handler struct {
	reg *registry.Registry
}

func NewHandler(reg *registry.Registry) *Handler {
	return &Handler{reg: reg}
}

type accountInfo struct {
	Index     int    `json:"index"`
	AccountID string `json:"account_id"`
	NickName  string `json:"nick_name"`
}

// Accounts 获取账户列表
// GET /accounts
func (h *Handler) Accounts() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var accounts []accountInfo
		for _, entry := range h.reg.All() {
			nick := entry.Trader.NickName()
			if nick == "" {
				nick = fmt.Sprintf("账户%d", entry.Index+1)
			}
			accounts = append(accounts, accountInfo{
				Index:     entry.Index,
				AccountID: entry.Trader.AccountID(),
				NickName:  nick,
			})
		}
		response.JSON(ctx, nil, gin.H{"accounts": accounts})
	}
}

// traderFromPath 从路径参数解析账户索引
func (h *Handler) traderFromPath(ctx *gin.Context) (int, error) {
	raw := ctx.Param("trader_index")
	idx, err := cast.ToIntE(raw)
	if err != nil {
		return 0, errors.WithCodef(ecode.InvalidTraderIndexEr, "无效的交易器索引: %s", raw)
	}
	if _, err := h.reg.Get(idx); err != nil {
		return 0, err
	}
	return idx, nil
}

// Portfolio 获取指定账户的资产信息
// GET /portfolio/:trader_index
func (h *Handler) Portfolio() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		idx, err := h.traderFromPath(ctx)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		t, _ := h.reg.Get(idx)
		portfolio, err := t.GetPortfolio(ctx)
		if err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.TraderErr, "无法获取资产信息"), nil)
			return
		}
		response.JSON(ctx, nil, gin.H{"portfolio": portfolio})
	}
}

// Positions 获取指定账户的持仓信息
// GET /positions/:trader_index
func (h *Handler) Positions() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		idx, err := h.traderFromPath(ctx)
		if err != nil {
			response.JSON(ctx, err, nil)
			return
		}
		t, _ := h.reg.Get(idx)
		positions, err := t.GetPositions(ctx)
		if err != nil {
			response.JSON(ctx, errors.Wrap(err, ecode.TraderErr, "无法获取持仓信息"), nil)
			return
		}
		response.JSON(ctx, nil, gin.H{"positions": positions})
	}
}
