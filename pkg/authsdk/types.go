package authsdk

import "time"

// ErrorResponse documents the error body for API docs. APIError is the type
// used in code.
type ErrorResponse struct {
	Error            string `json:"error" example:"invalid_credentials"`
	ErrorDescription string `json:"error_description,omitempty" example:"invalid credentials"`
}

// Authentication

type RegisterRequest struct {
	Email    string `json:"email" example:"ada@example.edu"`
	Name     string `json:"name" example:"Ada Lovelace"`
	Password string `json:"password" example:"Valid123"`
	// Role is "teacher" or "student". Admins cannot self-register.
	Role string `json:"role" example:"teacher"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"ada@example.edu"`
	Password string `json:"password" example:"Valid123"`
	// OTP is the current TOTP code, required once MFA is enabled.
	OTP string `json:"otp,omitempty" example:"123456"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse carries a freshly minted access and refresh token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type" example:"Bearer"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int `json:"expires_in" example:"900"`
}

// Profile

type UserResponse struct {
	ID         string    `json:"id" example:"01HZX3K9Q2V7W8E4R5T6Y7U8I9"`
	Email      string    `json:"email" example:"ada@example.edu"`
	Name       string    `json:"name" example:"Ada Lovelace"`
	Role       string    `json:"role" example:"teacher"`
	MFAEnabled bool      `json:"mfa_enabled"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// MFA

type TOTPEnrollResponse struct {
	// Secret is the base32 TOTP secret, shown once for manual entry.
	Secret string `json:"secret" example:"JBSWY3DPEHPK3PXP"`
	// URL is the otpauth:// URI for QR rendering.
	URL string `json:"otpauth_url"`
}

type TOTPCodeRequest struct {
	Code string `json:"code" example:"123456"`
}

// Integrations

// LinkAccountRequest hands the server a third-party OAuth grant to store
// encrypted.
type LinkAccountRequest struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type LinkedAccountResponse struct {
	Provider        string     `json:"provider" example:"zoom"`
	HasRefreshToken bool       `json:"has_refresh_token"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	LinkedAt        time.Time  `json:"linked_at"`
}

type IntegrationListResponse struct {
	Integrations []LinkedAccountResponse `json:"integrations"`
}

// ProviderTokenResponse is the decrypted third-party grant.
type ProviderTokenResponse struct {
	Provider     string     `json:"provider" example:"zoom"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Documents

type CreateDocumentRequest struct {
	Title       string `json:"title" example:"Week 1 slides"`
	FileName    string `json:"file_name" example:"week1.pdf"`
	ContentType string `json:"content_type" example:"application/pdf"`
}

type DocumentResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// DocumentUploadResponse returns the new document and a presigned PUT URL.
// UploadHeaders must be sent with the PUT; the URL signature does not cover
// them.
type DocumentUploadResponse struct {
	Document      DocumentResponse  `json:"document"`
	UploadURL     string            `json:"upload_url"`
	UploadHeaders map[string]string `json:"upload_headers" example:"Content-Type:application/pdf"`
	ExpiresAt     time.Time         `json:"expires_at"`
}

type DownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Health

type HealthChecks struct {
	Database   string `json:"database" example:"ok"`
	Tokens     string `json:"tokens" example:"ok"`
	Encryption string `json:"encryption" example:"ok"`
	Storage    string `json:"storage,omitempty" example:"ok"`
}

type HealthResponse struct {
	Status  string        `json:"status" example:"ok"`
	Uptime  string        `json:"uptime" example:"1h2m3s"`
	Version string        `json:"version" example:"0.1.0"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
