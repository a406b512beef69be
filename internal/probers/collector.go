package probers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
)

// responseKey colly上下文中保存响应的键
const responseKey = "probe_response"

var gzipMagic = []byte{0x1f, 0x8b}

// fetchResult 单次请求的响应快照
type fetchResult struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// newCollector 创建同步的Colly采集器
// 重定向被禁止,所有状态码都交给调用方分类
func newCollector(timeout time.Duration) *colly.Collector {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
		colly.IgnoreRobotsTxt(),
	)

	c.WithTransport(utils.NewTransport(timeout))
	c.SetRequestTimeout(timeout)
	c.SetRedirectHandler(utils.NoRedirect)

	c.OnResponse(func(r *colly.Response) {
		res := &fetchResult{StatusCode: r.StatusCode, Body: r.Body}
		if r.Headers != nil {
			res.Headers = r.Headers.Clone()
		}
		r.Ctx.Put(responseKey, res)
	})

	return c
}

// fetch 发送一次请求并等待响应
// 返回的错误均视为传输层错误
func fetch(c *colly.Collector, method, target string, headerProvider models.HeaderProvider) (*fetchResult, error) {
	hdr := http.Header{}
	if headerProvider != nil {
		headers, err := headerProvider.GetHeaders()
		if err != nil {
			return nil, fmt.Errorf("获取HTTP头部失败: %w", err)
		}
		hdr = headers
	}

	ctx := colly.NewContext()
	if err := c.Request(method, target, nil, ctx, hdr); err != nil {
		return nil, err
	}

	res, ok := ctx.GetAny(responseKey).(*fetchResult)
	if !ok {
		return nil, fmt.Errorf("未收到响应")
	}
	if res.Headers == nil {
		res.Headers = http.Header{}
	}
	return res, nil
}

// decompressBody 根据Content-Encoding解压响应体
// 支持 gzip, deflate, br (Brotli); Colly已自动解压的gzip原样返回
func decompressBody(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "br":
		decompressed, err := io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		// 大多数服务器发送zlib封装的deflate,少数发送裸deflate流
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer zr.Close()
			decompressed, err := io.ReadAll(zr)
			if err != nil {
				return nil, fmt.Errorf("deflate读取失败: %w", err)
			}
			return decompressed, nil
		}
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		decompressed, err := io.ReadAll(fr)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "gzip":
		if !bytes.HasPrefix(body, gzipMagic) {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "", "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
