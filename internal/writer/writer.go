package writer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"record-splitter/internal/partitioner"

	"go.uber.org/zap"
)

const (
	defaultDelimiter = "\n"
	separatorReplace = "__"
	filePerm         = 0o644
	dirPerm          = 0o755
)

var (
	ErrEmptyName     = errors.New("empty set identifier")
	ErrNameCollision = errors.New("set identifiers map to the same file name")
)

var nameReplacer = strings.NewReplacer("/", separatorReplace, `\`, separatorReplace)

// FS записывает каждый набор в отдельный файл каталога dir.
type FS struct {
	dir       string
	delimiter string
}

// NewFS создаёт writer. Пустой delimiter заменяется переводом строки.
func NewFS(dir, delimiter string) *FS {
	if delimiter == "" {
		delimiter = defaultDelimiter
	}
	return &FS{dir: dir, delimiter: delimiter}
}

// FileName отображает идентификатор набора в имя файла.
func FileName(id string) string {
	return nameReplacer.Replace(id)
}

// CheckNames проверяет, что непустые наборы попадут в разные файлы.
func CheckNames(sets []partitioner.Set) error {
	seen := make(map[string]string, len(sets))

	for _, set := range sets {
		if len(set.Records) == 0 {
			continue
		}

		name := FileName(set.ID)
		if prev, ok := seen[name]; ok {
			err := fmt.Errorf("%w: %q and %q -> %q", ErrNameCollision, prev, set.ID, name)
			zap.L().Error(err.Error())
			return err
		}
		seen[name] = set.ID
	}

	return nil
}

// Path возвращает путь файла набора.
func (w *FS) Path(id string) string {
	return filepath.Join(w.dir, FileName(id))
}

// Write пишет записи набора через временный файл с последующим rename.
// Наборы без записей пропускаются.
func (w *FS) Write(ctx context.Context, set partitioner.Set) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if len(set.Records) == 0 {
		zap.L().Debug("empty set skipped", zap.String("set", set.ID))
		return nil
	}

	name := FileName(set.ID)
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrEmptyName, set.ID)
	}

	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		zap.L().Error(err.Error())
		return err
	}

	if err := w.writeAtomic(filepath.Join(w.dir, name), set.Records); err != nil {
		zap.L().Error(err.Error(), zap.String("set", set.ID))
		return err
	}

	return nil
}

func (w *FS) writeAtomic(dest string, records []string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	for _, r := range records {
		if _, err = bw.WriteString(r); err != nil {
			return err
		}
		if _, err = bw.WriteString(w.delimiter); err != nil {
			return err
		}
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Chmod(filePerm); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, dest)
}
