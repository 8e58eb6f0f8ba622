package user

import (
	"time"

	"clipsync/internal/app/server/api/http/envelope"
	"clipsync/internal/domain/user"
)

type credentialsInput struct {
	Body user.Credentials
}

type registerOutput = envelope.Output[Registered]

type Registered struct {
	ID int `json:"user_id"`
}

type loginOutput = envelope.Output[Token]

type Token struct {
	Token     string    `json:"token" doc:"Bearer-токен для заголовка Authorization"`
	ExpiresIn int64     `json:"expires_in" doc:"Срок жизни токена, секунды"`
	User      user.User `json:"user"`
}

type profileOutput = envelope.Output[user.User]

type logoutOutput = envelope.Output[LoggedOut]

type LoggedOut struct {
	LoggedOutAt time.Time `json:"logged_out_at"`
}
