package wal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
)

// FileMode rw-r--r-- (擁有者讀寫，其他人唯讀)
const FileMode fs.FileMode = 0644

// WAL 以 JSON Lines 格式追加寫入的 Write-Ahead Log
//
// 每筆資料寫入後立即 fsync，確保回覆呼叫端之前已落盤。
type WAL struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// Open 開啟或建立一個 WAL 檔案 (O_APPEND|O_CREATE|O_RDWR)
func Open(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, FileMode)
	if err != nil {
		return nil, fmt.Errorf("open wal %s: %w", path, err)
	}
	return &WAL{path: path, file: file}, nil
}

// Path 回傳檔案路徑
func (w *WAL) Path() string {
	return w.path
}

// Append 寫入一筆資料並刷入硬碟
func (w *WAL) Append(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode wal record: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(line); err != nil {
		return fmt.Errorf("write wal record: %w", err)
	}
	return w.file.Sync()
}

// Replay 從頭依序讀取所有資料
//
// callback 每次收到一筆原始 JSON，避免一次將所有資料載入記憶體。
// callback 回傳錯誤時立即停止。
func (w *WAL) Replay(callback func(raw json.RawMessage) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(bufio.NewReader(w.file))
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("decode wal record: %w", err)
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
}

// Close 關閉檔案
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
