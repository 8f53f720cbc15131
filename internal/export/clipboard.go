package export

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	clipOnce sync.Once
	clipErr  error
)

func initClipboard() error {
	clipOnce.Do(func() {
		clipErr = clipboard.Init()
	})
	return clipErr
}

// CopyToClipboard places a serialized document on the system clipboard.
func CopyToClipboard(data []byte) error {
	if err := initClipboard(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}

// ReadFromClipboard returns the clipboard's text contents.
func ReadFromClipboard() ([]byte, error) {
	if err := initClipboard(); err != nil {
		return nil, fmt.Errorf("clipboard unavailable: %w", err)
	}
	return clipboard.Read(clipboard.FmtText), nil
}
