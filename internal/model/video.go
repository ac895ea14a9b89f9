// Package model holds the data types shared by the client controllers.
//
// Values in this package are plain data. Nothing here performs I/O, and
// every type is safe to copy.
package model

// Count is a non-negative metric that the service may omit.
// An unknown count is distinct from a zero count for display purposes.
type Count struct {
	Value uint64
	Known bool
}

// KnownCount returns a Count holding n.
func KnownCount(n uint64) Count {
	return Count{Value: n, Known: true}
}

// OrZero returns the count, or 0 when it is unknown.
func (c Count) OrZero() uint64 {
	if !c.Known {
		return 0
	}
	return c.Value
}

// Video is one candidate video for a topic.
type Video struct {
	Title     string
	Link      string // unique within a topic's candidate set
	LikeCount Count
	ViewCount Count
}

// TopicResult is a topic together with its unranked candidate videos,
// in the order the service returned them.
type TopicResult struct {
	Topic  string
	Videos []Video
}

// RankedTopicResult is derived from a TopicResult by the ranking package.
// It is never stored.
type RankedTopicResult struct {
	Topic  string
	Videos []Video
}

// UploadResult is the service's answer to a syllabus upload.
type UploadResult struct {
	Topics     []string
	VideoLinks []TopicResult
}
