package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexPrice はJSONの数値・文字列どちらの表現からもデコードできる価格。
// 元データの価格フィールドが数値と文字列の両方で供給されるために必要になる。
type FlexPrice float64

// UnmarshalJSON はJSONの数値または文字列を価格としてデコードする。
func (p *FlexPrice) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return NewInvalidPriceError(raw)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return NewInvalidPriceError(s)
		}
		*p = FlexPrice(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return NewInvalidPriceError(raw)
	}
	*p = FlexPrice(v)
	return nil
}

// ProductPatch は商品のスパースパッチを表す。
// nilのフィールドは変更しない。
type ProductPatch struct {
	Name        *string    `json:"productName"`
	Price       *FlexPrice `json:"productPrice"`
	Description *string    `json:"productDesc"`
	Image       *string    `json:"image"`
}

// Apply はパッチをproductに適用する。
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Price != nil {
		product.Price = float64(*p.Price)
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Image != nil {
		product.Image = *p.Image
	}
}

// UserPatch はユーザープロフィールのスパースパッチを表す。
// nilのフィールドは変更しない。
type UserPatch struct {
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Gender    *string `json:"gender"`
	Address   *string `json:"address"`
}

// Apply はパッチをuserに適用する。
func (p UserPatch) Apply(user *User) {
	if p.Email != nil {
		user.Email = *p.Email
	}
	if p.FirstName != nil {
		user.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		user.LastName = *p.LastName
	}
	if p.Gender != nil {
		user.Gender = *p.Gender
	}
	if p.Address != nil {
		user.Address = *p.Address
	}
}
