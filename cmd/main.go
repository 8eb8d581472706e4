package main

import (
	"log"
	"os"

	api "qmtgate/cmd/qmtgate"
	"qmtgate/conf"
	"qmtgate/internal/middleware"
	"qmtgate/pkg/logger"
)

/*
测试

BODY='{"order_num":500,"price_type":0,"symbol":"000001","trade_price":10.5}'
TS=$(date +%s)
CLIENT_ID="quant-01"
SECRET="ab12cd34ef56abcdef1234567890abcdef1234567890abcdef1234567890"
SIGN_STRING=$(printf 'POST\n/qmt/trade/api/outer/trade/buy\n\n%s\n%s\n%s' "$BODY" "$TS" "$CLIENT_ID")
SIGNATURE=$(printf '%s' "$SIGN_STRING" | openssl dgst -sha256 -hmac $SECRET | sed 's/^.* //')

curl -X POST http://localhost:9091/qmt/trade/api/outer/trade/buy \
  -H "Content-Type: application/json" \
  -H "X-Client-ID: $CLIENT_ID" \
  -H "X-Timestamp: $TS" \
  -H "X-Signature: $SIGNATURE" \
  -d "$BODY"
*/

func main() {

	// 加载配置文件
	configPath := os.Getenv("QMTGATE_CONFIG")
	if configPath == "" {
		configPath = "conf/config.yaml"
	}
	err := conf.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appCfg := conf.AppConfig
	logger.InitLogger(&appCfg.Log, appCfg.AppName)
	defer logger.Sync()

	// 创建并启动服务
	srv := api.NewServer(&appCfg)
	srvRouter := api.InitRouter()

	srv.Run(middleware.NewMiddleware(), srvRouter)
}
