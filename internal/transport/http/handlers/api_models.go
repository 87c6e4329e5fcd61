package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/transport/http/middleware"
)

// ErrorResponse is the generic error payload with a trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request's trace ID.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse is a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse describes the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// UserView is the API representation of a user. The password hash never
// appears here.
type UserView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserView(user domain.User) UserView {
	return UserView{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.RoleName(),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// RegisterRequest is the payload for self-service registration.
type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest is the payload for the login endpoint. Identifier accepts a
// username or an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	Token     string   `json:"token"`
	TokenType string   `json:"token_type"`
	User      UserView `json:"user"`
}

// PasswordResetRequest asks for a reset token to be issued.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// PasswordResetComplete redeems a reset token.
type PasswordResetComplete struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePasswordRequest is the self-service password change payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// CreateUserRequest is the admin user creation payload.
type CreateUserRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" binding:"required"`
}

// UpdateUserRequest is the admin user update payload. Omitted fields stay
// unchanged.
type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
}

// UserListResponse is one page of users.
type UserListResponse struct {
	Users  []UserView `json:"users"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// CustomerRequest is the payload for customer create and update.
type CustomerRequest struct {
	FirstName         string  `json:"first_name" binding:"required"`
	LastName          string  `json:"last_name" binding:"required"`
	Email             string  `json:"email" binding:"required"`
	Phone             string  `json:"phone" binding:"required"`
	Address           *string `json:"address"`
	City              *string `json:"city"`
	State             *string `json:"state"`
	PostalCode        *string `json:"postal_code"`
	Country           string  `json:"country"`
	BusinessName      string  `json:"business_name"`
	BusinessType      *string `json:"business_type"`
	BusinessRegNumber *string `json:"business_reg_number"`
	TINNumber         *string `json:"tin_number"`
	VATNumber         *string `json:"vat_number"`
	Activities        *string `json:"activities"`
}

// CustomerView is the API representation of a customer.
type CustomerView struct {
	ID                string    `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	Address           *string   `json:"address,omitempty"`
	City              *string   `json:"city,omitempty"`
	State             *string   `json:"state,omitempty"`
	PostalCode        *string   `json:"postal_code,omitempty"`
	Country           string    `json:"country"`
	BusinessName      string    `json:"business_name"`
	BusinessType      *string   `json:"business_type,omitempty"`
	BusinessRegNumber *string   `json:"business_reg_number,omitempty"`
	TINNumber         *string   `json:"tin_number,omitempty"`
	VATNumber         *string   `json:"vat_number,omitempty"`
	Activities        *string   `json:"activities,omitempty"`
	CreatedBy         string    `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toCustomerView(customer domain.Customer) CustomerView {
	return CustomerView{
		ID:                customer.ID,
		FirstName:         customer.FirstName,
		LastName:          customer.LastName,
		Email:             customer.Email,
		Phone:             customer.Phone,
		Address:           customer.Address,
		City:              customer.City,
		State:             customer.State,
		PostalCode:        customer.PostalCode,
		Country:           customer.Country,
		BusinessName:      customer.BusinessName,
		BusinessType:      customer.BusinessType,
		BusinessRegNumber: customer.BusinessRegNumber,
		TINNumber:         customer.TINNumber,
		VATNumber:         customer.VATNumber,
		Activities:        customer.Activities,
		CreatedBy:         customer.CreatedBy,
		CreatedAt:         customer.CreatedAt,
		UpdatedAt:         customer.UpdatedAt,
	}
}

// CustomerListResponse is one page of customers.
type CustomerListResponse struct {
	Customers []CustomerView `json:"customers"`
	Total     int            `json:"total"`
	Limit     int            `json:"limit"`
	Offset    int            `json:"offset"`
}

// DocumentView is the API representation of a customer document.
type DocumentView struct {
	ID           string    `json:"id"`
	CustomerID   string    `json:"customer_id"`
	DocumentType string    `json:"document_type,omitempty"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	FileType     string    `json:"file_type,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

func toDocumentView(doc domain.CustomerDocument) DocumentView {
	return DocumentView{
		ID:           doc.ID,
		CustomerID:   doc.CustomerID,
		DocumentType: doc.DocumentType,
		FileName:     doc.FileName,
		FileSize:     doc.FileSize,
		FileType:     doc.FileType,
		UploadedAt:   doc.UploadedAt,
	}
}
