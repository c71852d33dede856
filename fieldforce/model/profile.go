package model

import "time"

type Profile struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id" yaml:"id"`
	Email     string    `gorm:"type:varchar(190);uniqueIndex" json:"email" yaml:"email"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name" yaml:"name"`
	Role      Role      `gorm:"type:varchar(20);not null" json:"role" yaml:"role"`
	BranchID  *string   `gorm:"type:varchar(36);index" json:"branchId" yaml:"branchId"`
	CreatedAt time.Time `gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create" json:"createdAt" yaml:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) Branch() string {
	if p.BranchID == nil {
		return ""
	}
	return *p.BranchID
}
