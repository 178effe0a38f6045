package domain

import "time"

type Customer struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Customer) Summary() CustomerSummary {
	return CustomerSummary{ID: c.ID, FullName: c.FullName, Email: c.Email, Phone: c.Phone}
}
