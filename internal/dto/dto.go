package dto

// Envelope is the one response shape every endpoint uses.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

func OKMessage(message string) Envelope {
	return Envelope{Success: true, Message: message}
}

func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message}
}

// Page wraps offset-paginated listings.
type Page struct {
	Items      interface{} `json:"items"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}

func NewPage(items interface{}, page, limit int, total int64) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Page{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

type BulkCodesRequest struct {
	ProductID string   `json:"productId"`
	Codes     []string `json:"codes"`
}

type CredentialInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	AdditionalNotes string `json:"additionalNotes"`
}

type BulkCredentialsRequest struct {
	ProductID   string            `json:"productId"`
	Credentials []CredentialInput `json:"credentials"`
}

type CheckoutRequest struct {
	Items []CheckoutItemInput `json:"items"`
}

type CheckoutItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type UpdateRoleRequest struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type CartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type TrackEventRequest struct {
	EventType string `json:"eventType"`
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	OrderID   string `json:"orderId"`
	Metadata  string `json:"metadata"`
}
