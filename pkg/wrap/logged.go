// Package wrap 提供以組合方式包裝操作的工具，取代在型別定義後改寫方法的做法。
package wrap

import (
	"context"
	"log/slog"
)

// Logged 回傳一個新的操作：先記錄方法名稱與參數，再呼叫原本的 op
//
// 參數:
//
//	logger: 記錄用的 slog.Logger
//	name: 方法名稱 (如 "deposit")
//	op: 被包裝的操作
//
// 回傳:
//
//	func(T) R: 包裝後的操作，回傳值與 op 完全相同
func Logged[T, R any](logger *slog.Logger, name string, op func(T) R) func(T) R {
	return func(arg T) R {
		logger.LogAttrs(context.Background(), slog.LevelInfo, "calling method",
			slog.String("method", name),
			slog.Any("args", []any{arg}),
		)
		return op(arg)
	}
}
