// Package crawlers 提供页面渲染、同域链接提取和页面保存功能
//
// # 核心组件
//
// ## Renderer (渲染器)
//
// 加载URL并返回不可变的页面快照(标题、完整HTML、可见文本、全部<a>元素)。
// 两种实现:
//   - BrowserRenderer: 基于go-rod的Chrome渲染器,执行JavaScript,整个会话共用一个标签页
//   - StaticRenderer: 基于Colly的纯HTTP渲染器,不执行JavaScript
//
// 使用示例:
//
//	renderer, err := NewBrowserRenderer(ctx, BrowserOptions{Headless: true})
//	if err != nil { /* 处理错误 */ }
//	defer renderer.Close()
//
//	page, err := renderer.Render(ctx, "https://example.com/")
//
// ## LinkExtractor (链接提取器)
//
// 把锚点解析为绝对URL并只保留同域链接。域名在会话开始时由起始URL确定。
// 没有主机部分的链接视为同域;mailto:、javascript:等非HTTP链接被忽略。
//
//	extractor := NewLinkExtractor("example.com")
//	links := extractor.Extract(page.BaseURL(), page.Anchors)
//
// ## VisitedRegistry (已访问集合)
//
// 只增不减的URL集合,并发安全。URL只做绝对化解析,不做其他规范化:
// 结尾斜杠、查询参数顺序和片段的差异都视为不同URL。
//
// ## Persister (保存器)
//
// 每个页面保存为一个文件:
//
//	<输出目录>/<URL中非法字符替换为_>_<YYYY-MM-DD_HH-MM-SS>.txt
//	<输出目录>/<URL中非法字符替换为_>_<YYYY-MM-DD_HH-MM-SS>_full.html  (--no-format)
//
// 同一秒内重复保存同一URL会覆盖之前的文件。
//
// ## ResourceMonitor (资源检查器)
//
// 启动浏览器和每次渲染前检查系统可用内存,低于阈值时只记录警告。
//
// # 并发安全
//
//   - VisitedRegistry: sync.RWMutex
//   - BrowserRenderer/StaticRenderer: sync.Mutex,同一时间只处理一个请求
//   - ResourceMonitor: sync.Mutex
package crawlers
