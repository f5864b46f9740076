package config

import (
	"record-splitter/internal/exclude"
	"record-splitter/internal/group"
)

const (
	defaultDelimiter = "\n"
	defaultOutputDir = "."
)

// File - содержимое конфигурационного файла.
type File struct {
	Group   group.Config
	Exclude exclude.Spec
	Output  Output
}

// Output - параметры записи наборов в файлы.
type Output struct {
	Dir       string
	Delimiter string
}

// Defaults возвращает конфигурацию без групп и политик.
func Defaults() File {
	return File{
		Output: Output{
			Dir:       defaultOutputDir,
			Delimiter: defaultDelimiter,
		},
	}
}
