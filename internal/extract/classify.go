package extract

import (
	"strings"

	"github.com/samber/lo"
)

// DefaultFallbackTopic tags text that matches no topic.
const DefaultFallbackTopic = "综合"

// Topic is a named group of keywords.
type Topic struct {
	Name     string   `mapstructure:"name" json:"name"`
	Keywords []string `mapstructure:"keywords" json:"keywords"`
}

// DefaultTopics returns the built-in topic table.
func DefaultTopics() []Topic {
	return []Topic{
		{Name: "计费结算", Keywords: []string{"计费", "67", "140", "返还", "账单", "分片"}},
		{Name: "签名码号", Keywords: []string{"签名", "子端口", "码号", "三网", "落地"}},
		{Name: "回执状态", Keywords: []string{"回执", "未知", "状态", "MO", "MT"}},
		{Name: "风控合规", Keywords: []string{"黑名单", "白名单", "关键词", "投诉", "频控", "退订"}},
		{Name: "产品形态", Keywords: []string{"富媒体", "阅信", "5G", "语音", "闪信", "USSD", "二进制"}},
		{Name: "国际短信", Keywords: []string{"国际", "Sender ID", "回填", "DND", "SMPP"}},
		{Name: "接入交付", Keywords: []string{"压测", "QPS", "上线", "自服务", "接口", "私有化"}},
	}
}

// Classifier assigns topic tags by case-insensitive keyword containment.
// It holds no mutable state after construction.
type Classifier struct {
	topics   []Topic
	fallback string
}

// NewClassifier copies topics with lowercased keywords. An empty fallback
// uses DefaultFallbackTopic.
func NewClassifier(topics []Topic, fallback string) *Classifier {
	if fallback == "" {
		fallback = DefaultFallbackTopic
	}
	lowered := lo.Map(topics, func(t Topic, _ int) Topic {
		return Topic{
			Name: t.Name,
			Keywords: lo.FilterMap(t.Keywords, func(k string, _ int) (string, bool) {
				k = strings.ToLower(k)
				return k, k != ""
			}),
		}
	})
	return &Classifier{topics: lowered, fallback: fallback}
}

// Tags returns the names of every topic with a keyword contained in text, in
// table order, or the fallback alone when none match. Never empty.
func (c *Classifier) Tags(text string) []string {
	lower := strings.ToLower(text)
	tags := lo.FilterMap(c.topics, func(t Topic, _ int) (string, bool) {
		return t.Name, lo.ContainsBy(t.Keywords, func(k string) bool {
			return strings.Contains(lower, k)
		})
	})
	if len(tags) == 0 {
		return []string{c.fallback}
	}
	return lo.Uniq(tags)
}

// Fallback returns the catch-all tag.
func (c *Classifier) Fallback() string {
	return c.fallback
}
