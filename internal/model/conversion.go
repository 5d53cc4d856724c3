package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ConversionJob is the history record of one successful conversion.
type ConversionJob struct {
	ID          string    `db:"id" bson:"_id" json:"id"`
	UserID      string    `db:"user_id" bson:"user_id" json:"userId"`
	Filename    string    `db:"filename" bson:"filename" json:"filename"`
	Format      string    `db:"format" bson:"format" json:"format"`
	SizeInBytes int64     `db:"size_in_bytes" bson:"size_in_bytes" json:"sizeInBytes"`
	ProcessedAt time.Time `db:"processed_at" bson:"processed_at" json:"processedAt"`
}

// JobWithOwner is the admin view of a job joined with its owner.
type JobWithOwner struct {
	ConversionJob `bson:",inline"`
	OwnerEmail    string `db:"owner_email" bson:"owner_email" json:"userEmail"`
	OwnerName     string `db:"owner_name" bson:"owner_name" json:"userName"`
}

// ConversionRequest is one uploaded file within a batch. It is never persisted.
type ConversionRequest struct {
	OriginalName string
	SourceFormat string
	TargetFormat string
	Settings     FileSettings
	Content      []byte
}

type ConversionOutcome struct {
	OriginalName string `json:"originalName"`
	Success      bool   `json:"success"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
	Message      string `json:"message,omitempty"`
}

// FileSettings holds the per-file options sent by the client.
// Keys mirror what the frontend posts.
type FileSettings struct {
	RemoveAudio      bool       `json:"removeAudio"`
	VideoQuality     string     `json:"video_quality"`
	Resolution       string     `json:"resolution"`
	TrimStart        FlexString `json:"trimStart"`
	TrimEnd          FlexString `json:"trimEnd"`
	AudioCodec       string     `json:"audioCodec"`
	AudioRateControl string     `json:"audioRateControl"`
	Bitrate          FlexString `json:"bitrate"`
	Quality          FlexString `json:"quality"`
}

// FileSettingsEntry pairs settings with the original file name they apply to.
type FileSettingsEntry struct {
	OriginalName string       `json:"originalName"`
	Settings     FileSettings `json:"settings"`
}

// FlexString accepts a JSON string, number or null.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// Int parses the leading integer part, like a lenient parseInt.
func (f FlexString) Int() (int, bool) {
	s := string(f)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && s[end] == '-') {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
