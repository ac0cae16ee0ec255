package models

import "time"

// AdminUser is an account allowed into the admin surface.
type AdminUser struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"type:varchar(254)" json:"email"`
	Password    string     `gorm:"type:varchar(128);not null" json:"-"`
	IsSuperuser bool       `gorm:"not null" json:"is_superuser"`
	IsStaff     bool       `gorm:"not null" json:"is_staff"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	LastLogin   *time.Time `json:"last_login"`
	DateJoined  time.Time  `gorm:"autoCreateTime" json:"date_joined"`
}

func (AdminUser) TableName() string { return "admin_users" }

// LoginForm is posted by the admin login page.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

// ModelCount is one row of the admin index.
type ModelCount struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Count    int64  `json:"count"`
}
