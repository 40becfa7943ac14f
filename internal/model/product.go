// Package model はドメインモデルを定義する。
package model

// Product は販売商品を表す。
// JSONタグは永続化ブロブのフィールド名と一致させている。
type Product struct {
	ID          string  `json:"productId"`
	Name        string  `json:"productName"`
	Price       float64 `json:"productPrice"`
	Description string  `json:"productDesc"`
	Image       string  `json:"image"`
}
