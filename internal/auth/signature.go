package auth

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"qmtgate/pkg/errors"
	"qmtgate/pkg/errors/ecode"
)

// 请求签名验证
//
// 签名串格式: METHOD\nPATH\nQUERY_STRING\nBODY\nTIMESTAMP\nCLIENT_ID
// BODY 为请求体JSON按key排序后的紧凑序列化结果（非ASCII字符转\uXXXX），
// 这是客户端与服务端共同遵守的线上协议，两边必须产生完全一致的字节序列

// SignedRequest 一次待验签的请求，只在单次调用期间存在
type SignedRequest struct {
	Method      string
	Path        string
	QueryString string
	Body        []byte // 原始请求体
	Timestamp   string // 秒级时间戳的十进制字符串
	ClientID    string
	Signature   string // hex编码的HMAC-SHA256
}

// Verifier 验签器，持有只读的客户端密钥表
type Verifier struct {
	secrets map[string]string
	skew    time.Duration
	now     func() time.Time
}

func NewVerifier(secrets map[string]string, skew time.Duration) *Verifier {
	return &Verifier{
		secrets: secrets,
		skew:    skew,
		now:     time.Now,
	}
}

// Verify 验证请求签名与时间戳，失败返回带错误码的error，不产生任何副作用
func (v *Verifier) Verify(req *SignedRequest) error {
	secret, ok := v.secrets[req.ClientID]
	if !ok {
		return errors.WithCodef(ecode.UnknownClientErr, "无效的客户端ID: %s", req.ClientID)
	}

	// 时间戳校验，防重放
	ts, err := strconv.ParseInt(req.Timestamp, 10, 64)
	if err != nil {
		return errors.WithCodef(ecode.StaleTimestampErr, "无效的时间戳格式: %s", req.Timestamp)
	}
	diff := v.now().Unix() - ts
	if diff < 0 {
		diff = -diff
	}
	if diff > int64(v.skew/time.Second) {
		return errors.WithCodef(ecode.StaleTimestampErr, "请求时间戳过期: %s", req.Timestamp)
	}

	expected, err := Sign(secret, req.Method, req.Path, req.QueryString, req.Body, req.Timestamp, req.ClientID)
	if err != nil {
		return errors.Wrap(err, ecode.InvalidSignatureErr, "签名计算失败")
	}
	// 常数时间比较
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(req.Signature))) {
		return errors.WithCode(ecode.InvalidSignatureErr, "签名验证失败")
	}
	return nil
}

// Sign 计算请求签名，客户端SDK与服务端共用同一实现保证一致
func Sign(secret, method, path, query string, body []byte, timestamp, clientID string) (string, error) {
	canonical, err := CanonicalBody(body)
	if err != nil {
		return "", err
	}
	signString := fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n%s", method, path, query, canonical, timestamp, clientID)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(signString))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CanonicalBody 将请求体JSON规范化：
//   - 对象key按字典序排序（编码时map key自然有序）
//   - 紧凑分隔符，无多余空白
//   - 非ASCII字符转为\uXXXX转义
//
// 空请求体规范化为""。数字保持收到的原始字面量，避免浮点重编码误差。
// 注意这点比Python的json.dumps更严格：10.50在这里保持10.50而不会变成
// 10.5，所以客户端签名时必须使用与发送完全一致的字节（标准客户端SDK
// 本来就是对同一份序列化结果签名和发送，不受影响）
func CanonicalBody(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("请求体不是合法JSON: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	// Encoder末尾补了换行
	compact := strings.TrimRight(buf.String(), "\n")
	return escapeNonASCII(compact), nil
}

// escapeNonASCII 将非ASCII字符转为\uXXXX，超出BMP的字符使用代理对，
// 与Python json.dumps的ensure_ascii行为一致
func escapeNonASCII(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r < 0x80:
			sb.WriteRune(r)
		case r <= 0xFFFF:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, `\u%04x\u%04x`, hi, lo)
		}
	}
	return sb.String()
}
