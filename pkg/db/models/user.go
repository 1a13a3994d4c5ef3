package models

// User is a member of the sharing service; email is unique.
type User struct {
	ID    int64  `gorm:"column:id;primaryKey"`
	Name  string `gorm:"column:name;not null"`
	Email string `gorm:"column:email;type:text;not null;uniqueIndex:uq_users_email"`
}

func (User) TableName() string { return "users" }
