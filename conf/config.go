package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 配置加载（API客户端密钥、交易账户等）

// ClientCredential 外部调用方的签名密钥，启动时加载，运行期间只读
type ClientCredential struct {
	ClientID  string `yaml:"client_id"`
	SecretKey string `yaml:"secret_key"`
}

type ApiConfig struct {
	// 签名时间戳允许的最大偏差（秒），超过则按过期请求拒绝
	SignatureSkew int64              `yaml:"signature-skew"`
	Clients       []ClientCredential `yaml:"clients"`
}

// Secret 根据client_id查找密钥，不存在返回false
func (c ApiConfig) Secret(clientID string) (string, bool) {
	for _, cred := range c.Clients {
		if cred.ClientID == clientID {
			return cred.SecretKey, true
		}
	}
	return "", false
}

// TraderConfig 一个券商交易终端（QMT）的接入配置
type TraderConfig struct {
	AccountID string `yaml:"account_id"`
	NickName  string `yaml:"nick_name"`
	// 本地xtquant桥接服务的地址，例如 http://127.0.0.1:58610
	BridgeURL string `yaml:"bridge_url"`
	Enabled   bool   `yaml:"enabled"`
}

type DispatchConfig struct {
	// 是否并行向多个账户下单，结果顺序不受影响
	Parallel bool `yaml:"parallel"`
}

type DingTalkConfig struct {
	Enabled     bool   `yaml:"enabled"`
	AccessToken string `yaml:"access_token"`
	Secret      string `yaml:"secret"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	FileName   string `yaml:"file-name"`
	TimeFormat string `yaml:"time-format"`
	MaxSize    int    `yaml:"max-size"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAge     int    `yaml:"max-age"`
	Compress   bool   `yaml:"compress"`
	LocalTime  bool   `yaml:"local-time"`
	Console    bool   `yaml:"console"`
}

type Config struct {
	AppName      string `yaml:"app_name"`
	Listen       string `yaml:"listen"`
	Mode         string `yaml:"mode"` // release / debug / simulated
	Language     string `yaml:"language"`
	MaxPingCount int    `yaml:"max-ping-count"`

	Api      ApiConfig      `yaml:"api"`
	Traders  []TraderConfig `yaml:"traders"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	DingTalk DingTalkConfig `yaml:"dingtalk"`
	Log      LogConfig      `yaml:"log"`
}

// EnabledTraders 过滤出启用的账户，注册表顺序即配置顺序
func (c *Config) EnabledTraders() []TraderConfig {
	var out []TraderConfig
	for _, t := range c.Traders {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

var AppConfig Config

func LoadConfig(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Read config file error %w", err)
	}
	if err := yaml.Unmarshal(data, &AppConfig); err != nil {
		return fmt.Errorf("Unmarshal config yaml error: %w", err)
	}
	if AppConfig.Api.SignatureSkew <= 0 {
		// 默认5分钟
		AppConfig.Api.SignatureSkew = 300
	}
	return nil
}
