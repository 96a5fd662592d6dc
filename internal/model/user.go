package model

import "time"

// Teacher is a quiz author account.
type Teacher struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Student is a quiz taker account. GradeLevel drives assignment fan-out:
// a student receives a quiz when their grade level is in the quiz's
// target set.
type Student struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GradeLevel   string    `json:"grade_level"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the shared login payload for both roles.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}
