// Package probers 提供目录探测、压缩包猜测和制品链接筛选功能
//
// # 核心组件
//
// ## DirectoryProber
//
// 基于Colly的同步GET探测器。重定向被禁止,状态码小于400视为成功,
// 响应体包含 "Index of" 时判定为开启了目录列表。
//
//	prober := NewDirectoryProber(3*time.Second, headerProvider)
//	result := prober.Probe("https://example.com/a/b/")
//	switch result.Kind {
//	case models.ProbeListing:   // result.Body 为列表页面
//	case models.ProbeNoListing: // 目录可达但未开启列表
//	case models.ProbeNotOK:     // result.Err 为 *models.HTTPError
//	case models.ProbeError:     // result.Err 为 *models.TransportError
//	}
//
// ## GuessProber
//
// 把候选目录 https://example.com/a/b/ 变换为 https://example.com/a/b.zip,
// 发送HEAD请求并检查Content-Type是否包含zip。主机根目录不做猜测,也不发请求。
//
//	guesser := NewGuessProber(3*time.Second, headerProvider)
//	if g := guesser.Guess(candidate); g.Kind == models.GuessZipFound {
//	    // 下载 g.URL
//	}
//
// ## FilterLinks
//
// 使用goquery解析目录列表中的锚点,跳过上级目录和排序链接,
// 按解析后URL路径的后缀识别制品:
//
//   - .zip: 钓鱼工具包 (kit)
//   - .txt: 受害者数据 (victim-list)
//   - .exe: 恶意程序 (malware)
//
// 返回 iter.Seq,可用 range 遍历:
//
//	links, err := FilterLinks(result.Body, result.URL)
//	for link := range links {
//	    downloader.Download(ctx, link.URL, slot)
//	}
//
// # 错误处理
//
// 探测器从不panic,也不返回error,所有失败都放在结果值中,由调用方决定是否中止遍历。
//
// # 并发安全
//
// 探测器内部的Colly采集器以同步模式运行,设计为单goroutine顺序使用。
package probers
