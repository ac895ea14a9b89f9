// Package ranking selects the best K candidate videos per topic.
//
// Ranking is a pure function of its input: it never mutates or aliases
// the results it is given, and the same input always ranks the same way.
package ranking

import (
	"fmt"
	"sort"

	"github.com/abelbrown/sylfinder/internal/model"
)

// DefaultK is how many videos are shown per topic.
const DefaultK = 2

// Metric is the numeric video field candidates are ordered by.
type Metric int

const (
	ByLikes Metric = iota // default
	ByViews
)

// Name returns the wire/config key of the metric.
func (m Metric) Name() string {
	switch m {
	case ByViews:
		return "viewCount"
	default:
		return "likeCount"
	}
}

func (m Metric) String() string { return m.Name() }

// Label is the short name shown in the sort selector.
func (m Metric) Label() string {
	if m == ByViews {
		return "Views"
	}
	return "Likes"
}

// Toggle returns the other metric.
func (m Metric) Toggle() Metric {
	if m == ByViews {
		return ByLikes
	}
	return ByViews
}

// Score returns the value v is ranked by. An unknown count scores as 0;
// the video itself is not changed.
func (m Metric) Score(v model.Video) uint64 {
	if m == ByViews {
		return v.ViewCount.OrZero()
	}
	return v.LikeCount.OrZero()
}

// ParseMetric maps a metric key to a Metric. Only the config layer takes
// metrics as text.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "likeCount":
		return ByLikes, nil
	case "viewCount":
		return ByViews, nil
	}
	return ByLikes, fmt.Errorf("unknown ranking metric %q", name)
}

// TopK returns the k highest scoring videos, highest first. Ties keep the
// order they had in videos, which carries the service's own relevance order.
func TopK(videos []model.Video, metric Metric, k int) []model.Video {
	if k < 0 {
		k = 0
	}

	sorted := make([]model.Video, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return metric.Score(sorted[i]) > metric.Score(sorted[j])
	})

	if len(sorted) > k {
		sorted = sorted[:k]
	}
	return sorted
}

// Rank ranks every topic's candidates under metric and keeps the top k.
// An empty input yields an empty, non-nil result.
func Rank(results []model.TopicResult, metric Metric, k int) []model.RankedTopicResult {
	ranked := make([]model.RankedTopicResult, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, model.RankedTopicResult{
			Topic:  r.Topic,
			Videos: TopK(r.Videos, metric, k),
		})
	}
	return ranked
}
