package api

import (
	"time"

	"qmtgate/conf"
	"qmtgate/internal/auth"
	"qmtgate/internal/dispatch"
	"qmtgate/internal/handler/account"
	"qmtgate/internal/handler/trade"
	"qmtgate/internal/registry"
	"qmtgate/internal/router"
	traderpkg "qmtgate/internal/trader"
	"qmtgate/internal/trader/qmt"
	"qmtgate/pkg/logger"
	"qmtgate/pkg/notify"
)

func InitRouter() Router {
	appCfg := conf.AppConfig

	// 客户端密钥表，启动后只读
	secrets := make(map[string]string, len(appCfg.Api.Clients))
	for _, cred := range appCfg.Api.Clients {
		secrets[cred.ClientID] = cred.SecretKey
	}
	verifier := auth.NewVerifier(secrets, time.Duration(appCfg.Api.SignatureSkew)*time.Second)

	// 按配置顺序装配交易会话，索引即注册表索引
	var traders []traderpkg.Trader
	for _, tc := range appCfg.EnabledTraders() {
		if appCfg.Mode == "simulated" {
			traders = append(traders, traderpkg.NewSimulatedTrader(tc.AccountID, tc.NickName, 1_000_000))
			continue
		}
		client, err := qmt.NewClient(tc.AccountID, tc.NickName, tc.BridgeURL)
		if err != nil {
			logger.Fatalf("交易器初始化失败 account=%s: %v", tc.AccountID, err)
		}
		traders = append(traders, client)
	}
	if len(traders) == 0 {
		logger.Fatal("没有可用的交易账户，请检查配置")
	}
	reg := registry.New(traders...)
	logger.Infof("交易路由初始化完成，共%d个交易器", reg.Len())

	engine := dispatch.NewEngine(reg, appCfg.Dispatch.Parallel)
	if appCfg.DingTalk.Enabled {
		engine.WithNotifier(notify.NewDingTalkBot(appCfg.DingTalk.AccessToken, appCfg.DingTalk.Secret))
	}

	th := trade.NewHandler(engine, reg)
	ah := account.NewHandler(reg)

	return router.NewApiRouter(verifier, th, ah)
}
