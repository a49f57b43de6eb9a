package async

import (
	"context"
	"time"
)

// Future 代表一個稍後才會完成的結果
//
// 結果只會寫入一次，done 關閉後 value/err 即為唯讀，可被多個 goroutine 同時讀取。
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// After 在 delay 之後執行 fn，並把結果放進 Future
//
// 參數:
//
//	delay: 延遲時間
//	fn: 延遲結束後執行的函式
//
// 回傳:
//
//	*Future[T]: 尚未完成的 Future
//
// 計時器一旦排定就不能取消，只能由呼叫端選擇不再等待。
func After[T any](delay time.Duration, fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	time.AfterFunc(delay, func() {
		f.value, f.err = fn()
		close(f.done)
	})
	return f
}

// Done 回傳完成通知 channel
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await 等待結果
//
// ctx 結束時回傳 ctx.Err()，但背景的計時器仍會照常完成。
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
