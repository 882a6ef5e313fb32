package models

import "time"

// Upsert outcomes
const (
	CustomerCreated = "created"
	CustomerExists  = "exists"
)

// Customer is a row of the customers table. Email is unique.
type Customer struct {
	ID        int64     `json:"customer_id" db:"customer_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	Address   *string   `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateCustomerRequest is the body of POST /customers/add
type CreateCustomerRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
}

// CustomerResponse reports whether the customer was created or already existed
type CustomerResponse struct {
	Status     string `json:"status"`
	CustomerID int64  `json:"customer_id"`
}

// Validate checks that name and email are present
func (req *CreateCustomerRequest) Validate() error {
	if req.Name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if req.Email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	return nil
}

// Customer converts the request into a row to insert
func (req *CreateCustomerRequest) Customer() Customer {
	return Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
}
