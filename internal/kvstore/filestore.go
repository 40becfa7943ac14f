package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileProvider はストレージ領域ごとに1つのJSONファイルを使用するProvider実装。
// 領域名 "products" は <dir>/products.json に対応する。
// 書き込みは一時ファイルへの書き出しとリネームで行い、途中クラッシュでの破損を防ぐ。
type FileProvider struct {
	dir string
	mu  sync.Mutex
}

// NewFileProvider はFileProviderを生成する。
// ディレクトリが存在しない場合は作成する。
func NewFileProvider(dir string) (*FileProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileProvider{dir: dir}, nil
}

// Area は指定名のストレージ領域を返す。
func (p *FileProvider) Area(name string) Store {
	return &fileArea{provider: p, name: name}
}

// Ping はデータディレクトリにアクセスできるかを確認する。
func (p *FileProvider) Ping(ctx context.Context) error {
	if _, err := os.Stat(p.dir); err != nil {
		return fmt.Errorf("data directory is not accessible: %w", err)
	}
	return nil
}

// Close は何もしない。ファイルは操作ごとに開閉される。
func (p *FileProvider) Close() error {
	return nil
}

// fileArea は1領域分のファイル入出力を担当する。
type fileArea struct {
	provider *FileProvider
	name     string
}

func (a *fileArea) path() string {
	return filepath.Join(a.provider.dir, a.name+".json")
}

// load は領域ファイル全体を読み込む。ファイルが無い場合は空マップを返す。
func (a *fileArea) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(a.path())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read storage area %s: %w", a.name, err)
	}

	entries := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse storage area %s: %w", a.name, err)
		}
	}
	return entries, nil
}

// save は領域ファイル全体を原子的に書き戻す。
func (a *fileArea) save(entries map[string]json.RawMessage) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode storage area %s: %w", a.name, err)
	}

	tmp, err := os.CreateTemp(a.provider.dir, a.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage area %s: %w", a.name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, a.path()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace storage area %s: %w", a.name, err)
	}
	return nil
}

// Get は指定キーの値を取得する。
func (a *fileArea) Get(_ context.Context, key string) ([]byte, bool, error) {
	a.provider.mu.Lock()
	defer a.provider.mu.Unlock()

	entries, err := a.load()
	if err != nil {
		return nil, false, err
	}
	value, ok := entries[key]
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// Set は指定キーに値を保存する。
// 領域ファイル全体が1つのJSONオブジェクトであるため、値は有効なJSONでなければならない。
func (a *fileArea) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("invalid JSON value for key %s in area %s", key, a.name)
	}

	a.provider.mu.Lock()
	defer a.provider.mu.Unlock()

	entries, err := a.load()
	if err != nil {
		return err
	}
	entries[key] = json.RawMessage(value)
	return a.save(entries)
}

// Delete は指定キーを削除する。
func (a *fileArea) Delete(_ context.Context, key string) error {
	a.provider.mu.Lock()
	defer a.provider.mu.Unlock()

	entries, err := a.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return a.save(entries)
}

// compile-time interface check
var _ Provider = (*FileProvider)(nil)
