package store

import (
	"time"

	"github.com/kodepos-id/kodepos/pkg/dataset"
)

// PostalCode is one published canonical record.
type PostalCode struct {
	VillageCode string  `gorm:"primaryKey;size:16"`
	PostalCode  *string `gorm:"size:8;index"`
	VillageName string  `gorm:"not null"`
	VillageType string  `gorm:"size:32;not null"`
	Source      string  `gorm:"size:64;not null;index"`
	Confidence  float64 `gorm:"not null"`
	Year        int     `gorm:"not null"`
	Status      string  `gorm:"size:16;not null;index"`
	BuildID     string  `gorm:"size:36;not null;index"`
	UpdatedAt   time.Time
}

// TableName pins the table name.
func (PostalCode) TableName() string { return "postal_codes" }

// Build records one publish.
type Build struct {
	BuildID     string `gorm:"primaryKey;size:36"`
	Profile     string `gorm:"size:64;not null"`
	BuildYear   int    `gorm:"not null"`
	Fingerprint string `gorm:"size:16;not null"`
	Records     int    `gorm:"not null"`
	Assigned    int    `gorm:"not null"`
	PublishedAt time.Time
}

// TableName pins the table name.
func (Build) TableName() string { return "builds" }

// FromRecord converts a canonical record into a row of buildID.
func FromRecord(rec dataset.Record, buildID string) PostalCode {
	return PostalCode{
		VillageCode: rec.VillageCode,
		PostalCode:  rec.PostalCode,
		VillageName: rec.VillageName,
		VillageType: rec.VillageType,
		Source:      rec.Source,
		Confidence:  float64(rec.Confidence),
		Year:        rec.Year,
		Status:      rec.Status.String(),
		BuildID:     buildID,
	}
}

// Record converts a row back into a canonical record.
func (p PostalCode) Record() dataset.Record {
	return dataset.Record{
		PostalCode:  p.PostalCode,
		VillageCode: p.VillageCode,
		VillageName: p.VillageName,
		VillageType: p.VillageType,
		Source:      p.Source,
		Confidence:  dataset.Confidence(p.Confidence),
		Year:        p.Year,
		Status:      dataset.Status(p.Status),
	}
}
