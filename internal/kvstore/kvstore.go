// Package kvstore は名前付きストレージ領域ごとのキーバリュー永続化を提供する。
// 各ストアは自分専用の領域に、コレクション全体を1つのJSONドキュメントとして保存する。
package kvstore

import "context"

// Store は1つの名前付きストレージ領域に対するキーバリュー操作を提供する。
type Store interface {
	// Get は指定キーの値を取得する。キーが存在しない場合は第2戻り値がfalseになる。
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set は指定キーに値を保存する。既存キーは上書きされる。
	Set(ctx context.Context, key string, value []byte) error
	// Delete は指定キーを削除する。キーが存在しない場合もエラーにしない。
	Delete(ctx context.Context, key string) error
}

// Provider は名前付きストレージ領域を払い出す。
// 領域同士は互いに独立しており、キー空間を共有しない。
type Provider interface {
	// Area は指定名のストレージ領域を返す。
	Area(name string) Store
	// Ping はストレージが利用可能かを確認する。ヘルスチェック用。
	Ping(ctx context.Context) error
	// Close は背後のリソースを解放する。
	Close() error
}
