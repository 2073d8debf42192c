package model

import (
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null;type:varchar(255)" json:"name"`
	Email        string `gorm:"not null;type:varchar(255);uniqueIndex" json:"email"`
	PasswordHash string `gorm:"not null;type:varchar(255)" json:"-"`
	Role         string `gorm:"not null;type:varchar(20);default:customer" json:"role"`
	BaseModel
}

// Session 對應一張已簽發的token，登出時撤銷
type Session struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)"`
	UserID    uint       `gorm:"not null;index"`
	ExpiresAt time.Time  `gorm:"not null"`
	RevokedAt *time.Time `gorm:"null"`
	CreatedAt time.Time
}

func (s *Session) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
