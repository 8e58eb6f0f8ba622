package user

import "time"

type User struct {
	ID           int       `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Credentials struct {
	Login    string `json:"login" minLength:"1" doc:"Логин пользователя"`
	Password string `json:"password" minLength:"1" doc:"Пароль"`
}
