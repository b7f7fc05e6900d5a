package models

import "time"

// User is a directory entry. Pin is stored and compared as plain text;
// do not run this against anything that matters.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Username  string    `gorm:"type:varchar(100) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;not null;uniqueIndex" json:"username"`
	Pin       string    `gorm:"size:100;not null" json:"pin"`
	IsAdmin   bool      `gorm:"not null" json:"is_admin"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"created_at"`
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Pin      string `json:"pin" binding:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Pin      string `json:"pin" binding:"required"`
}

// LoginUser is the pin-free projection returned by a successful login.
type LoginUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type LoginInfo struct {
	Message string     `json:"message"`
	User    *LoginUser `json:"user"`
}

func (u *User) clone() *User {
	c := *u
	return &c
}
