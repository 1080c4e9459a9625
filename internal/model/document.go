package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

const (
	DocumentStatusUploaded   = "uploaded"
	DocumentStatusProcessing = "processing"
	DocumentStatusProcessed  = "processed"
	DocumentStatusError      = "error"
)

// DocumentRecord tracks an uploaded file and the vector ids of its chunks.
type DocumentRecord struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Filename         string         `gorm:"size:255;not null" json:"filename"`
	OriginalFilename string         `gorm:"size:255;not null" json:"original_filename"`
	FileType         string         `gorm:"size:50;not null" json:"file_type"`
	FileSize         int64          `gorm:"not null" json:"file_size"`
	FilePath         string         `gorm:"size:500;not null" json:"-"`
	Status           string         `gorm:"size:50;default:uploaded;index" json:"status"`
	ProcessingError  string         `gorm:"type:text" json:"processing_error,omitempty"`
	ContentType      string         `gorm:"size:100" json:"content_type"`
	ExtractedText    string         `gorm:"type:text" json:"-"`
	ChunkCount       int            `gorm:"default:0" json:"chunk_count"`
	VectorIDs        datatypes.JSON `json:"-"`
	UploadedAt       time.Time      `gorm:"autoCreateTime" json:"uploaded_at"`
	ProcessedAt      *time.Time     `json:"processed_at"`
}

func (DocumentRecord) TableName() string { return "documents" }

func (d *DocumentRecord) SetVectorIDs(ids []string) {
	if ids == nil {
		ids = []string{}
	}
	raw, _ := json.Marshal(ids)
	d.VectorIDs = datatypes.JSON(raw)
}

// VectorIDList returns the stored ids; empty on parse error.
func (d *DocumentRecord) VectorIDList() []string {
	if len(d.VectorIDs) == 0 {
		return nil
	}
	var ids []string
	_ = json.Unmarshal(d.VectorIDs, &ids)
	return ids
}
