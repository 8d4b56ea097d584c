package model

type NotificationType string

const (
	NotificationExam   NotificationType = "exam"
	NotificationResult NotificationType = "result"
	NotificationSystem NotificationType = "system"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// swagger:model Notification
type Notification struct {
	BaseModel
	Recipient   uint             `gorm:"index;type:bigint unsigned;not null" json:"recipient"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Message     string           `gorm:"type:text" json:"message"`
	Type        NotificationType `gorm:"size:20;default:'system'" json:"type"`
	RelatedExam *uint            `gorm:"type:bigint unsigned" json:"relatedExam,omitempty"`
	Priority    string           `gorm:"type:enum('low','medium','high');default:'medium'" json:"priority"`
	IsRead      bool             `gorm:"default:false;index" json:"isRead"`
}

func (Notification) TableName() string {
	return "notifications"
}
