package model

import "time"

// User はサービス利用ユーザーを表す。
// パスワードは保存されない（登録・ログイン時に受け取るが検証には使用されない）。
type User struct {
	ID        string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Gender    string `json:"gender"`
	Address   string `json:"address"`
}

// Session は現在の認証セッションを表す。
// アカウントコレクションとは独立した単一スロットとして永続化される。
// Userはログイン時点のアカウントのコピーを保持する。
type Session struct {
	ID        string    `json:"sessionId"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}
