package backend

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/abelbrown/sylfinder/internal/model"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token" validate:"required"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// wireCount accepts a JSON number, a numeric string or null. Stats APIs
// commonly send counts as strings; a string that is not a number is
// treated as unknown rather than failing the whole payload.
type wireCount struct {
	value uint64
	known bool
}

func (c *wireCount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*c = wireCount{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			*c = wireCount{}
			return nil
		}
		*c = wireCount{value: n, known: true}
		return nil
	}

	if n, err := strconv.ParseUint(string(b), 10, 64); err == nil {
		*c = wireCount{value: n, known: true}
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f >= 1<<64 {
		return fmt.Errorf("count %s is not a non-negative integer", b)
	}
	*c = wireCount{value: uint64(f), known: true}
	return nil
}

func (c wireCount) toModel() model.Count {
	return model.Count{Value: c.value, Known: c.known}
}

type wireVideo struct {
	Title     string    `json:"title"`
	Link      string    `json:"link" validate:"required"`
	LikeCount wireCount `json:"likeCount"`
	ViewCount wireCount `json:"viewCount"`
}

type wireTopic struct {
	Topic  string      `json:"topic"`
	Videos []wireVideo `json:"videos" validate:"required,unique=Link,dive"`
}

type uploadResponse struct {
	Topics     []string    `json:"topics" validate:"required"`
	VideoLinks []wireTopic `json:"videoLinks" validate:"required,dive"`
}

type historyEntry struct {
	Timestamp  time.Time   `json:"timestamp" validate:"required"`
	Language   string      `json:"language"`
	Topics     []string    `json:"topics" validate:"required"`
	VideoLinks []wireTopic `json:"videoLinks" validate:"required,dive"`
}

func convertTopics(topics []wireTopic) []model.TopicResult {
	out := make([]model.TopicResult, len(topics))
	for i, t := range topics {
		videos := make([]model.Video, len(t.Videos))
		for j, v := range t.Videos {
			videos[j] = model.Video{
				Title:     v.Title,
				Link:      v.Link,
				LikeCount: v.LikeCount.toModel(),
				ViewCount: v.ViewCount.toModel(),
			}
		}
		out[i] = model.TopicResult{Topic: t.Topic, Videos: videos}
	}
	return out
}

func (r uploadResponse) toModel() model.UploadResult {
	topics := make([]string, len(r.Topics))
	copy(topics, r.Topics)
	return model.UploadResult{
		Topics:     topics,
		VideoLinks: convertTopics(r.VideoLinks),
	}
}

func (e historyEntry) toModel() model.HistoryEntry {
	topics := make([]string, len(e.Topics))
	copy(topics, e.Topics)
	return model.HistoryEntry{
		Timestamp:  e.Timestamp,
		Language:   model.Language(e.Language),
		Topics:     topics,
		VideoLinks: convertTopics(e.VideoLinks),
	}
}
