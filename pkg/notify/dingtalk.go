package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"qmtgate/pkg/logger"
)

const robotSendURL = "https://oapi.dingtalk.com/robot/send"

// DingTalkBot 钉钉群机器人，加签方式
type DingTalkBot struct {
	accessToken string
	secret      string
	httpClient  *http.Client
}

func NewDingTalkBot(accessToken, secret string) *DingTalkBot {
	return &DingTalkBot{
		accessToken: accessToken,
		secret:      secret,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// genPostURL 生成带签名的推送地址
// 签名串为 timestamp + "\n" + secret，HMAC-SHA256后base64再urlencode
func (bot *DingTalkBot) genPostURL() string {
	timestamp := fmt.Sprintf("%d", time.Now().UnixMilli())
	stringToSign := timestamp + "\n" + bot.secret

	h := hmac.New(sha256.New, []byte(bot.secret))
	h.Write([]byte(stringToSign))
	sign := url.QueryEscape(base64.StdEncoding.EncodeToString(h.Sum(nil)))

	return fmt.Sprintf("%s?access_token=%s&timestamp=%s&sign=%s",
		robotSendURL, bot.accessToken, timestamp, sign)
}

// SendText 发送文本消息
func (bot *DingTalkBot) SendText(ctx context.Context, msg string, atAll bool) error {
	template := map[string]interface{}{
		"msgtype": "text",
		"text": map[string]string{
			"content": msg,
		},
		"at": map[string]interface{}{
			"isAtAll": atAll,
		},
	}
	return bot.post(ctx, template)
}

func (bot *DingTalkBot) post(ctx context.Context, template interface{}) error {
	data, err := json.Marshal(template)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bot.genPostURL(), bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := bot.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var rsp struct {
		ErrCode int    `json:"errcode"`
		ErrMsg  string `json:"errmsg"`
	}
	if err := json.Unmarshal(body, &rsp); err != nil {
		return fmt.Errorf("dingtalk response decode error: %w", err)
	}
	if rsp.ErrCode != 0 {
		return fmt.Errorf("dingtalk send failed: %d %s", rsp.ErrCode, rsp.ErrMsg)
	}
	logger.Debugf("dingbot send msg ok")
	return nil
}
