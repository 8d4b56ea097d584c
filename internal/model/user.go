package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Faculty UserRole = "faculty"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string    `gorm:"size:100;not null" json:"name"`
	Email      string    `gorm:"size:100;unique;not null" json:"email"`
	Password   string    `gorm:"size:100;not null" json:"-"`
	Role       UserRole  `gorm:"type:enum('student','faculty','admin');default:'student'" json:"role"`
	Department string    `gorm:"size:100" json:"department"`
	Semester   int       `gorm:"default:0" json:"semester"`
	RollNumber string    `gorm:"size:50" json:"rollNumber"`
	EmployeeID string    `gorm:"size:50" json:"employeeId"`
	IsActive   bool      `gorm:"default:true" json:"isActive"`
	LastLogin  time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
