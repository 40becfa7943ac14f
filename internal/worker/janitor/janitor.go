// Package janitor は期限切れセッションの自動失効ジョブを提供する。
// 最大存続期間（デフォルト24時間）を超過したセッションスロットを
// 定期的にクリアする。
package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/salvore/internal/repository"
)

// Janitor はセッションスロットの定期失効ジョブ。
// 冪等で、失効対象がない場合でもエラーにならない。
type Janitor struct {
	sessions repository.SessionRepository
	logger   *slog.Logger
	MaxAge   time.Duration // セッションの最大存続期間（デフォルト: 24時間）
}

// NewJanitor は新しいJanitorを生成する。
// maxAgeが0以下の場合はデフォルト値24時間を使用する。
func NewJanitor(sessions repository.SessionRepository, logger *slog.Logger, maxAge time.Duration) *Janitor {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Janitor{
		sessions: sessions,
		logger:   logger,
		MaxAge:   maxAge,
	}
}

// RunOnce はセッションスロットを1回検査し、期限切れならクリアする。
func (j *Janitor) RunOnce(ctx context.Context) error {
	session, err := j.sessions.Find(ctx)
	if err != nil {
		j.logger.Error("セッションの読込に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションの読込に失敗: %w", err)
	}
	if session == nil {
		return nil
	}

	age := time.Since(session.CreatedAt)
	if age <= j.MaxAge {
		return nil
	}

	if err := j.sessions.Clear(ctx); err != nil {
		j.logger.Error("期限切れセッションのクリアに失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションのクリアに失敗: %w", err)
	}

	j.logger.Info("期限切れセッションを失効させました",
		slog.String("session_id", session.ID),
		slog.Duration("age", age),
	)
	return nil
}

// Start は指定間隔のティッカーでジョブを起動する。
// コンテキストがキャンセルされるまで実行を継続する。
func (j *Janitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("セッションジャニターを開始しました",
		slog.Duration("interval", interval),
		slog.Duration("max_age", j.MaxAge),
	)

	// 起動直後に1回実行
	if err := j.RunOnce(ctx); err != nil {
		j.logger.Error("セッション失効ジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
	}

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("セッションジャニターを停止しました")
			return
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil {
				j.logger.Error("セッション失効ジョブの実行に失敗しました",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
