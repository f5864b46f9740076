package group

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKey        = errors.New("unknown configuration key")
	ErrDuplicateKey      = errors.New("duplicate configuration key")
	ErrInvalidType       = errors.New("invalid value type")
	ErrConflictingPolicy = errors.New("more than one split policy")
	ErrConflictingSource = errors.New("both explicit records and source file")
	ErrInvalidNumber     = errors.New("value must be a positive integer")
	ErrSourceNotFound    = errors.New("source file not found")
	ErrInvalidWeights    = errors.New("weights must map records to non-negative numbers")
	ErrNoRecordSource    = errors.New("group has no records, source or patterns")
	ErrInvalidPattern    = errors.New("invalid pattern")
	ErrDuplicateGroup    = errors.New("duplicate group identifier")

	ErrAlreadyAssigned = errors.New("records already assigned")
)

// ConfigError описывает ошибку конфигурации конкретной группы.
// Категория ошибки доступна через errors.Is по Err.
type ConfigError struct {
	Group  string
	Key    string
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Key != "" {
		msg = fmt.Sprintf("%s: %s", e.Key, msg)
	}
	if e.Group != "" {
		msg = fmt.Sprintf("group %q: %s", e.Group, msg)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(group, key string, err error, detail string) *ConfigError {
	return &ConfigError{Group: group, Key: key, Detail: detail, Err: err}
}
