package models

type LoginRequest struct {
	Username string `json:"username" binding:"required" validate:"required"`
	Password string `json:"password" binding:"required" validate:"required"`
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150" validate:"required,max=150"`
	Email     string `json:"email" binding:"required,email" validate:"required,email"`
	Password  string `json:"password" binding:"required,min=8" validate:"required,min=8"`
	FirstName string `json:"first_name" binding:"required,max=150" validate:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150" validate:"required,max=150"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
