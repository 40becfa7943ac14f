package upload

import (
	"context"
	"time"
)

// postResult はHTTPステータスコードに基づく送信結果の分類。
type postResult int

const (
	// postResultOK は送信成功（2xx）。
	postResultOK postResult = iota
	// postResultPermanent は再試行しても成功しないステータス（4xx）。
	postResultPermanent
	// postResultTransient は再試行で回復しうるステータス（429/5xx）。
	postResultTransient
)

const (
	// maxAttempts は1回のアップロードでの最大送信回数。
	maxAttempts = 3
	// initialBackoff は指数バックオフの初回遅延。
	initialBackoff = 500 * time.Millisecond
	// maxBackoffWait は指数バックオフの最大遅延。
	maxBackoffWait = 5 * time.Second
)

// classifyStatus はHTTPステータスコードを送信結果に分類する。
func classifyStatus(statusCode int) postResult {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return postResultOK
	case statusCode == 429 || statusCode >= 500:
		return postResultTransient
	default:
		return postResultPermanent
	}
}

// backoffDelay は再試行回数に基づいて指数バックオフ遅延を計算する。
// 初回500ミリ秒、2倍ずつ増加、最大5秒。
func backoffDelay(attempt int) time.Duration {
	delay := initialBackoff
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay > maxBackoffWait {
			return maxBackoffWait
		}
	}
	return delay
}

// waitBackoff は次の再試行まで待機する。コンテキストの取り消しで中断する。
func waitBackoff(ctx context.Context, attempt int) error {
	timer := time.NewTimer(backoffDelay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
