package service

import (
	"time"

	"github.com/maypok86/otter/v2"
)

// reportCache 按输入摘要缓存对账结果
// 同一批文件重复上传（如先预览再下载）时跳过解析与对账
type reportCache struct {
	cache *otter.Cache[string, *AuditOutcome]
}

// newReportCache size<=0 时返回 nil，表示不缓存
func newReportCache(size int, ttl time.Duration) *reportCache {
	if size <= 0 {
		return nil
	}
	return &reportCache{
		cache: otter.Must(&otter.Options[string, *AuditOutcome]{
			MaximumSize:      size,
			ExpiryCalculator: otter.ExpiryWriting[string, *AuditOutcome](ttl),
		}),
	}
}

func (c *reportCache) get(digest string) (*AuditOutcome, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.GetIfPresent(digest)
}

func (c *reportCache) set(digest string, out *AuditOutcome) {
	if c == nil {
		return
	}
	c.cache.Set(digest, out)
}
