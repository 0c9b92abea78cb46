package domain

import "time"

// User is a registered customer account in the directory. Created at
// registration, read at login; only an administrator removes entries.
type User struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `json:"name" form:"name"`
	Email       string    `gorm:"index" json:"email" form:"email"`
	TaxID       string    `gorm:"index" json:"taxId" form:"tax_id"`
	CompanyName string    `json:"companyName" form:"company_name"`
	TradeName   string    `json:"tradeName,omitempty" form:"trade_name"`
	Contact     string    `json:"contact,omitempty" form:"contact"`
	Birthdate   string    `json:"birthdate,omitempty" form:"birthdate"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "store_users"
}
