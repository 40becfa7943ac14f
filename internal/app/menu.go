package app

import "github.com/hitoshi/salvore/internal/model"

// DefaultMenu は初期投入用の標準メニューを返す。
// seedサブコマンドで空のカタログに投入される。
func DefaultMenu() []model.Product {
	return []model.Product{
		{
			Name:        "サーモン刺身",
			Price:       18.99,
			Description: "ノルウェー産アトランティックサーモンの厚切り刺身。",
		},
		{
			Name:        "特上にぎりセット",
			Price:       32.50,
			Description: "大トロ・ウニ・イクラを含む職人おまかせ10貫。",
		},
		{
			Name:        "海鮮丼",
			Price:       21.00,
			Description: "その日の仕入れから盛り込む海鮮丼。味噌汁付き。",
		},
		{
			Name:        "焼きガキ（6個）",
			Price:       16.50,
			Description: "広島産カキのガーリックバター焼き。",
		},
		{
			Name:        "エビフライ定食",
			Price:       14.80,
			Description: "大ぶりの車エビフライ3本。ご飯・味噌汁・小鉢付き。",
		},
		{
			Name:        "ウニ（小鉢）",
			Price:       24.00,
			Description: "北海道産バフンウニ。",
		},
	}
}
