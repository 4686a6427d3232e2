package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// TextExtractor 文档文本提取器接口
// 契约：永不返回错误。任何格式的解码失败都降级为空字符串，
// 由下游阶段对空文本继续产出零信息但合法的结果
type TextExtractor interface {
	// ExtractText 从原始字节提取纯文本
	// filename仅用于按扩展名选择解码策略，不做任何I/O
	ExtractText(ctx context.Context, data []byte, filename string) (string, map[string]interface{})
}

// DefaultTextExtractor 纯本地的文本提取器实现
// PDF走eino解析器，DOCX直接解压读取document.xml，纯文本做编码校验
type DefaultTextExtractor struct {
	pdfParser *pdf.PDFParser
	logger    *log.Logger
}

// DefaultExtractorOption 提取器配置选项
type DefaultExtractorOption func(*DefaultTextExtractor)

// WithExtractorLogger 配置自定义日志记录器
func WithExtractorLogger(logger *log.Logger) DefaultExtractorOption {
	return func(e *DefaultTextExtractor) {
		e.logger = logger
	}
}

// NewDefaultTextExtractor 初始化本地文本提取器
// PDF解析配置为不按页分割，获取整篇连续文本
func NewDefaultTextExtractor(ctx context.Context, options ...DefaultExtractorOption) (*DefaultTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, err
	}

	extractor := &DefaultTextExtractor{
		pdfParser: p,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractText 实现TextExtractor接口
// 内部所有解码分支都被recover保护，损坏的输入最多换来一个空串
func (e *DefaultTextExtractor) ExtractText(ctx context.Context, data []byte, filename string) (text string, metadata map[string]interface{}) {
	startTime := time.Now()
	metadata = map[string]interface{}{
		"source_filename": filename,
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("文本提取发生panic，按空文本降级: %v (文件: %s)", r, filename)
			text = ""
		}
		metadata["text_length"] = len(text)
		metadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()
	}()

	if len(data) == 0 {
		metadata["format"] = "empty"
		return "", metadata
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		metadata["format"] = "pdf"
		text = e.extractPDF(ctx, data, filename)
	case ".docx":
		metadata["format"] = "docx"
		text = extractDOCX(data)
	case ".doc":
		// 旧版二进制doc没有本地解码器，交给Tika提取器（如果配置了）
		// 本地实现按未识别格式处理
		metadata["format"] = "doc"
		text = ""
	case ".txt", "":
		metadata["format"] = "text"
		text = extractPlainText(data)
	default:
		metadata["format"] = "unknown"
		text = ""
	}

	return text, metadata
}

// extractPDF 通过eino解析器提取PDF文本，失败返回空串
func (e *DefaultTextExtractor) extractPDF(ctx context.Context, data []byte, filename string) string {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs, err := e.pdfParser.Parse(ctx, bytes.NewReader(data),
		einoParser.WithURI(filename),
	)
	if err != nil {
		e.logger.Printf("PDF解析失败: %v (文件: %s)", err, filename)
		return ""
	}
	if len(docs) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, doc := range docs {
		sb.WriteString(doc.Content)
		if i < len(docs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// extractDOCX 解压docx并流式读取word/document.xml中的文本节点
// 纯stdlib实现：docx本质是zip包里的OOXML文档
func extractDOCX(data []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return ""
	}

	rc, err := docFile.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err != nil {
			// io.EOF或者文档损坏，都按已收集到的内容结束
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			case "br", "cr":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// extractPlainText 校验并清理纯文本输入
// 非UTF-8或控制字符占比过高的内容视为二进制，返回空串
func extractPlainText(data []byte) string {
	// 去掉UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	if !utf8.Valid(data) {
		return ""
	}

	text := string(data)
	total := 0
	control := 0
	for _, r := range text {
		total++
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			control++
		}
	}
	if total > 0 && float64(control)/float64(total) > 0.05 {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text
}
