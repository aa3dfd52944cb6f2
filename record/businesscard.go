package record

import "github.com/lvillar/docsmith"

// BusinessCard is a two-sided contact card.
type BusinessCard struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	LogoURL     string `json:"logoUrl,omitempty"`
	AccentColor string `json:"accentColor"`
}

func (b *BusinessCard) Kind() docsmith.Kind { return docsmith.KindBusinessCard }
func (b *BusinessCard) Identifier() string  { return b.Name }

func (b *BusinessCard) Clone() Record {
	c := *b
	return &c
}
