package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	commentPrefix = "#"
	maxLineSize   = 1 << 20
)

// Read читает записи построчно, сохраняя порядок.
// Пустые строки и строки-комментарии пропускаются.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		records = append(records, line)
	}

	if err := scanner.Err(); err != nil {
		zap.L().Error(err.Error())
		return nil, fmt.Errorf("read records: %w", err)
	}

	return records, nil
}

// ReadFile открывает файл, читает записи и закрывает файл на любом пути выхода.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			zap.L().Error(err.Error())
		}
	}()

	records, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return records, nil
}
