package parser

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// TikaTextExtractor 基于Apache Tika服务器的文本提取器
// 覆盖本地实现不支持的格式（老版doc、rtf等），按配置替换DefaultTextExtractor
// 与所有提取器一样遵守永不报错的契约：服务器不可达时降级为空文本
type TikaTextExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	logger *log.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaTextExtractor)

// WithTikaTimeout 配置HTTP客户端超时时间
func WithTikaTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaTextExtractor) {
		e.Client.Timeout = timeout
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaTextExtractor) {
		e.logger = logger
	}
}

// 确保TikaTextExtractor实现了TextExtractor接口
var _ TextExtractor = (*TikaTextExtractor)(nil)

// NewTikaTextExtractor 创建一个新的Tika文本提取器
func NewTikaTextExtractor(serverURL string, options ...TikaOption) *TikaTextExtractor {
	extractor := &TikaTextExtractor{
		ServerURL: serverURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractText 把文件字节PUT到Tika的/tika端点取回纯文本
func (e *TikaTextExtractor) ExtractText(ctx context.Context, data []byte, filename string) (string, map[string]interface{}) {
	startTime := time.Now()
	metadata := map[string]interface{}{
		"source_filename": filename,
		"format":          strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."),
		"extractor":       "tika",
	}

	if len(data) == 0 {
		metadata["text_length"] = 0
		return "", metadata
	}

	url := e.ServerURL + "/tika"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		e.logger.Printf("创建Tika请求失败: %v", err)
		metadata["text_length"] = 0
		return "", metadata
	}
	req.Header.Set("Accept", "text/plain")
	if filename != "" {
		req.Header.Set("X-Tika-Resource-Name", filename)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		e.logger.Printf("请求Tika服务器失败: %v (文件: %s)", err, filename)
		metadata["text_length"] = 0
		return "", metadata
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Printf("Tika服务器返回状态码%d (文件: %s)", resp.StatusCode, filename)
		metadata["text_length"] = 0
		return "", metadata
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		e.logger.Printf("读取Tika响应失败: %v", err)
		metadata["text_length"] = 0
		return "", metadata
	}

	text := strings.TrimSpace(string(textBytes))
	metadata["text_length"] = len(text)
	metadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()
	return text, metadata
}
