package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentQR is the QR image shown to customers paying by a manual method.
type PaymentQR struct {
	ID        uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	Method    PaymentMethod `json:"method" gorm:"type:varchar(30);uniqueIndex;not null"`
	FileKey   string        `json:"-" gorm:"not null"`
	FileURL   string        `json:"fileUrl" gorm:"not null"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// SavePaymentQR replaces the QR stored for method.
func SavePaymentQR(db *gorm.DB, method PaymentMethod, fileKey, fileURL string) (*PaymentQR, error) {
	qr := &PaymentQR{Method: method, FileKey: fileKey, FileURL: fileURL}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "method"}},
		DoUpdates: clause.AssignmentColumns([]string{"file_key", "file_url", "updated_at"}),
	}).Create(qr).Error
	if err != nil {
		return nil, err
	}
	return qr, nil
}

func GetPaymentQRs(db *gorm.DB) ([]PaymentQR, error) {
	var files []PaymentQR
	if err := db.Order("method ASC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
