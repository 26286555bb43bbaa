package orchestrator

import (
	"fmt"
	"sort"
	"strings"
)

// cacheKey 计算查询的规范化缓存键
//
// 同一组过滤条件无论调用方以什么顺序传入，都必须得到同一个键：
// 地域统一小写去空白，过滤键排序后以 k=v 形式拼接。
// Limit 不参与键计算，同一查询不同分页上限共享缓存条目。
func cacheKey(q Query) string {
	location := strings.ToLower(strings.TrimSpace(q.Location))

	if len(q.Filters) == 0 {
		return "search:" + location
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("search:")
	sb.WriteString(location)
	for _, k := range keys {
		sb.WriteByte(':')
		sb.WriteString(k)
		sb.WriteByte('=')
		fmt.Fprintf(&sb, "%v", q.Filters[k])
	}
	return sb.String()
}
