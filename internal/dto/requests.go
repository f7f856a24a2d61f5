package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email                string `json:"email" form:"email" validate:"required,email"`
	Password             string `json:"password" form:"password" validate:"required,min=6,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
}

// SocialLoginRequest represents a social provider login request
type SocialLoginRequest struct {
	Provider string `json:"provider" form:"provider" validate:"required,oneof=facebook google"`
	Token    string `json:"token" form:"token" validate:"required"`
}

// ForgotPasswordRequest represents a reset code issuance request
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// CheckResetCodeRequest represents a reset code validity check
type CheckResetCodeRequest struct {
	Email string `json:"email" form:"email" validate:"required,email"`
	Code  string `json:"code" form:"code" validate:"required"`
}

// ResetPasswordRequest represents a password reset consuming a code
type ResetPasswordRequest struct {
	Email                string `json:"email" form:"email" validate:"required,email"`
	Password             string `json:"password" form:"password" validate:"required,min=6,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation" form:"password_confirmation"`
	Code                 string `json:"code" form:"code" validate:"required"`
}
