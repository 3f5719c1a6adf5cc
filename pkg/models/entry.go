package models

import (
	"encoding/json"
	"time"
)

// EntryStatus 内容发布状态
type EntryStatus string

const (
	StatusDraft     EntryStatus = "draft"
	StatusPublished EntryStatus = "published"
)

// NormalizeStatus maps anything other than exactly "published" to draft.
func NormalizeStatus(s string) EntryStatus {
	if EntryStatus(s) == StatusPublished {
		return StatusPublished
	}
	return StatusDraft
}

// Entry is one content record belonging to a collection
type Entry struct {
	ID           int64                  `json:"id" db:"id"`
	CollectionID int64                  `json:"collection_id" db:"collection_id"`
	Data         map[string]interface{} `json:"data" db:"data"`
	Status       EntryStatus            `json:"status" db:"status"`
	CreatedAt    time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at" db:"updated_at"`
}

// CreateEntryInput 创建条目的请求体
type CreateEntryInput struct {
	Data   json.RawMessage `json:"data"`
	Status string          `json:"status"`
}

// EntryPatch 部分更新条目
type EntryPatch struct {
	Data   Optional[json.RawMessage] `json:"data"`
	Status Optional[string]          `json:"status"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// EntryList is one page of entries plus its pagination block.
type EntryList struct {
	Data       []Entry    `json:"data"`
	Pagination Pagination `json:"pagination"`
}
