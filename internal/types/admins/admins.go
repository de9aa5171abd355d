package admins

// Admin is an administrator account. Protected accounts cannot be
// modified or deleted through the API. Hashes never leave the server.
type Admin struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	PasswordHash       string `json:"-"`
	SecurityQuestionID string `json:"security_question_id,omitempty"`
	SecurityAnswerHash string `json:"-"`
	IsProtected        bool   `json:"is_protected"`
	CreatedAt          string `json:"created_at,omitempty"`
}

type SecurityQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
}

type LoginRequest struct {
	Username       string `json:"username" validate:"required"`
	Password       string `json:"password" validate:"required"`
	SecurityAnswer string `json:"security_answer"`
}

// LoginResponse covers the three login outcomes: success carries the
// admin and token, a pending challenge carries the question text, and
// failures are reported through the error envelope instead.
type LoginResponse struct {
	Admin                  *Admin `json:"admin,omitempty"`
	Token                  string `json:"token,omitempty"`
	RequiresSecurityAnswer bool   `json:"requires_security_answer,omitempty"`
	Question               string `json:"question,omitempty"`
}

// CreateRequest creates a new admin account. Question and answer must
// be supplied together or not at all.
type CreateRequest struct {
	Username           string `json:"username" validate:"required,min=3"`
	Password           string `json:"password" validate:"required,min=8"`
	SecurityQuestionID string `json:"security_question_id" validate:"required_with=SecurityAnswer"`
	SecurityAnswer     string `json:"security_answer" validate:"required_with=SecurityQuestionID"`
}

type UpdateRequest struct {
	Password           string `json:"password" validate:"omitempty,min=8"`
	SecurityQuestionID string `json:"security_question_id" validate:"required_with=SecurityAnswer"`
	SecurityAnswer     string `json:"security_answer" validate:"required_with=SecurityQuestionID"`
}
