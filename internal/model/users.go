package model

import "time"

const (
	RoleAdmin  = "admin"
	RoleWorker = "worker"
)

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleWorker
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"not null;default:worker" json:"role"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	Earnings     []Earnings `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
