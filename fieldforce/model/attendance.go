package model

import "time"

type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusOnField AttendanceStatus = "on-field"
	StatusAbsent  AttendanceStatus = "absent"
)

// AttendanceRecord is unique per (user_id, date).
type AttendanceRecord struct {
	ID        string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_attendance_user_date,priority:1" json:"userId"`
	Date      string           `gorm:"type:varchar(10);not null;uniqueIndex:idx_attendance_user_date,priority:2;index" json:"date"`
	CheckIn   *time.Time       `json:"checkIn"`
	CheckOut  *time.Time       `json:"checkOut"`
	Status    AttendanceStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time        `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt"`
	UpdatedAt time.Time        `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (AttendanceRecord) TableName() string {
	return "attendance"
}

func (r *AttendanceRecord) CheckedOut() bool {
	return r.CheckOut != nil
}
