package model

// CartItem はカート内の1明細を表す。
// 追加時点の商品情報を値としてコピーして保持する（商品マスタへの参照は持たない）。
type CartItem struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Price       float64 `json:"productPrice"`
	Description string  `json:"productDesc"`
	Image       string  `json:"image"`
	Quantity    int     `json:"quantity"`
}

// Cart はショッピングカートを表す。
// 同一商品IDの明細は常に1件に集約される。
type Cart struct {
	Items []CartItem `json:"items"`
}

// NewCart は空のCartを生成する。
func NewCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

// AddItem は商品をカートに追加する。
// 既存明細がある場合は数量を加算し、なければ指定数量で新規明細を作成する。
func (c *Cart) AddItem(p Product, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity += quantity
			return
		}
	}
	c.Items = append(c.Items, CartItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Quantity:    quantity,
	})
}

// AddOneItem は商品を数量1でカートに追加する。
// 既存明細がある場合は数量を加算せず1で置き換える（単品追加の置換仕様）。
func (c *Cart) AddOneItem(p Product) {
	for i := range c.Items {
		if c.Items[i].ProductID == p.ID {
			c.Items[i].Quantity = 1
			return
		}
	}
	c.Items = append(c.Items, CartItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Quantity:    1,
	})
}

// RemoveItem は指定商品IDの明細を削除する。存在しない場合は何もしない。
func (c *Cart) RemoveItem(productID string) {
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
}

// UpdateQuantity は指定商品IDの数量を更新する。
// 数量が0以下の場合は明細を削除する。明細が存在しない場合は何もしない。
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if quantity <= 0 {
				c.RemoveItem(productID)
			} else {
				c.Items[i].Quantity = quantity
			}
			return
		}
	}
}

// FindItem は指定商品IDの明細を返す。見つからない場合はnilを返す。
func (c *Cart) FindItem(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// TotalPrice は全明細の単価×数量の合計を返す。
// キャッシュは持たず、呼び出しのたびに再計算する。
func (c *Cart) TotalPrice() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// TotalItems は全明細の数量合計を返す。
func (c *Cart) TotalItems() int {
	var total int
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Clear は全明細を削除する。
func (c *Cart) Clear() {
	c.Items = c.Items[:0]
}
