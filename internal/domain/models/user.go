package models

// User представляет пользователя
type User struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
	CoinBalance int    `json:"coin"`
}

// AuthorInfo — урезанная проекция пользователя, которая отдаётся вместе с рецептом
type AuthorInfo struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
}
