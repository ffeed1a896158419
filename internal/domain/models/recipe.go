package models

import "time"

// Ingredient — позиция в списке ингредиентов рецепта (порядок имеет значение)
type Ingredient struct {
	Name    string `json:"name"`
	Measure string `json:"measure"`
}

// Recipe представляет рецепт
type Recipe struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Image        string       `json:"image"`
	Country      string       `json:"country"`
	Video        string       `json:"video,omitempty"`
	CookTime     int          `json:"cookTime"`
	AuthorID     int64        `json:"author_id"`
	Author       *AuthorInfo  `json:"author,omitempty"` // заполняется через JOIN с таблицей users
	Instructions string       `json:"instructions"`
	Ingredients  []Ingredient `json:"ingredients"`
	PurchasedBy  []string     `json:"purchasedBy"` // email покупателей, дубликаты возможны
	Likes        []string     `json:"likes"`       // email лайкнувших
	WatchCount   int          `json:"watchCount"`
	CreatedAt    time.Time    `json:"created_at"`
}
