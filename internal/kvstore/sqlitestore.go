package kvstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider は単一のSQLiteデータベースに全ストレージ領域を格納するProvider実装。
// 領域はprefsテーブルのarea列で分離される。
type SQLiteProvider struct {
	db *sql.DB
}

// Open はSQLiteデータベースを開き、SQLiteProviderを生成する。
// スキーマは事前にRunMigrationsで適用されている必要がある。
func Open(path string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLiteは単一ライターのため、コネクションを1本に制限して
	// SQLITE_BUSYを避ける。
	db.SetMaxOpenConns(1)

	return &SQLiteProvider{db: db}, nil
}

// Area は指定名のストレージ領域を返す。
func (p *SQLiteProvider) Area(name string) Store {
	return &sqliteArea{db: p.db, name: name}
}

// Ping はデータベースに接続できるかを確認する。
func (p *SQLiteProvider) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close はデータベース接続を閉じる。
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

// DB は背後のsql.DBを返す。ヘルスチェック用。
func (p *SQLiteProvider) DB() *sql.DB {
	return p.db
}

// sqliteArea は1領域分のクエリを担当する。
type sqliteArea struct {
	db   *sql.DB
	name string
}

// Get は指定キーの値を取得する。
func (a *sqliteArea) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := a.db.QueryRowContext(ctx,
		`SELECT value FROM prefs WHERE area = ? AND key = ?`,
		a.name, key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s from area %s: %w", key, a.name, err)
	}
	return value, true, nil
}

// Set は指定キーに値を保存する。既存キーはUPSERTで上書きされる。
func (a *sqliteArea) Set(ctx context.Context, key string, value []byte) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO prefs (area, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (area, key) DO UPDATE SET value = excluded.value`,
		a.name, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set key %s in area %s: %w", key, a.name, err)
	}
	return nil
}

// Delete は指定キーを削除する。
func (a *sqliteArea) Delete(ctx context.Context, key string) error {
	_, err := a.db.ExecContext(ctx,
		`DELETE FROM prefs WHERE area = ? AND key = ?`,
		a.name, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete key %s from area %s: %w", key, a.name, err)
	}
	return nil
}

// compile-time interface check
var _ Provider = (*SQLiteProvider)(nil)
