package config

import (
	"fmt"
	"math"
	"os"

	"record-splitter/internal/group"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	tagInt   = "!!int"
	tagFloat = "!!float"
	tagNull  = "!!null"
)

// Load читает и разбирает YAML-конфигурацию из файла.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		zap.L().Error(err.Error())
		return File{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		zap.L().Error(err.Error(), zap.String("path", path))
		return File{}, err
	}

	return cfg, nil
}

// Parse разбирает YAML-конфигурацию. Неизвестные ключи, нецелые числа
// и некорректная таблица весов возвращаются как *group.ConfigError.
func Parse(data []byte) (File, error) {
	cfg := Defaults()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if len(doc.Content) == 0 {
		return cfg, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == tagNull {
		return cfg, nil
	}
	if root.Kind != yaml.MappingNode {
		return cfg, fmt.Errorf("parse config: line %d: top level must be a mapping", root.Line)
	}

	err := eachPair("", "", root, func(key string, value *yaml.Node) error {
		switch key {
		case "exclude":
			return parseExclude(value, &cfg)
		case "output":
			return parseOutput(value, &cfg.Output)
		case "groups":
			if value.Kind != yaml.SequenceNode {
				return typeErr("", key, value, "a list of groups")
			}
			cfg.Group.Groups = make([]group.Config, 0, len(value.Content))
			for i, item := range value.Content {
				child, err := parseGroup(fmt.Sprintf("groups[%d]", i), item)
				if err != nil {
					return err
				}
				cfg.Group.Groups = append(cfg.Group.Groups, child)
			}
			return nil
		default:
			return parseGroupKey("", key, value, &cfg.Group, true)
		}
	})
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

func parseGroup(name string, node *yaml.Node) (group.Config, error) {
	var cfg group.Config
	if node.Kind != yaml.MappingNode {
		return cfg, typeErr(name, "", node, "a mapping")
	}

	err := eachPair(name, "", node, func(key string, value *yaml.Node) error {
		return parseGroupKey(name, key, value, &cfg, false)
	})
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

func parseGroupKey(name, key string, value *yaml.Node, cfg *group.Config, top bool) error {
	var err error

	switch key {
	case "identifier":
		cfg.Identifier, err = scalarString(name, key, value)
	case "records":
		cfg.Records, err = stringList(name, key, value)
	case "source":
		cfg.Source, err = scalarString(name, key, value)
	case "split_pattern":
		cfg.SplitPattern, err = scalarString(name, key, value)
	case "weights":
		cfg.Weights, err = weightMap(name, value)
	case string(group.RecordCountMode):
		cfg.RecordCount, err = integer(name, key, value)
	case string(group.SetCountMode):
		cfg.SetCount, err = integer(name, key, value)
	case string(group.WeightBudgetMode):
		cfg.WeightBudget, err = integer(name, key, value)
	case "max_records":
		cfg.MaxRecords, err = integer(name, key, value)
	case "patterns":
		if top {
			return unknownKey(name, key, value)
		}
		cfg.Patterns, err = stringList(name, key, value)
	default:
		return unknownKey(name, key, value)
	}

	return err
}

func parseExclude(node *yaml.Node, cfg *File) error {
	if node.Kind != yaml.MappingNode {
		return typeErr("", "exclude", node, "a mapping")
	}

	return eachPair("", "exclude", node, func(key string, value *yaml.Node) error {
		var err error
		switch key {
		case "records":
			cfg.Exclude.Records, err = stringList("", "exclude.records", value)
		case "patterns":
			cfg.Exclude.Patterns, err = stringList("", "exclude.patterns", value)
		case "file":
			cfg.Exclude.File, err = scalarString("", "exclude.file", value)
		default:
			return unknownKey("", "exclude."+key, value)
		}
		return err
	})
}

func parseOutput(node *yaml.Node, out *Output) error {
	if node.Kind != yaml.MappingNode {
		return typeErr("", "output", node, "a mapping")
	}

	return eachPair("", "output", node, func(key string, value *yaml.Node) error {
		var err error
		switch key {
		case "dir":
			out.Dir, err = scalarString("", "output.dir", value)
		case "delimiter":
			out.Delimiter, err = scalarString("", "output.delimiter", value)
		default:
			return unknownKey("", "output."+key, value)
		}
		return err
	})
}

// eachPair обходит пары ключ-значение mapping-узла в порядке объявления.
// Повторный ключ возвращает ErrDuplicateKey.
func eachPair(name, prefix string, node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	seen := make(map[string]struct{}, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]

		if _, ok := seen[keyNode.Value]; ok {
			key := keyNode.Value
			if prefix != "" {
				key = prefix + "." + key
			}
			return &group.ConfigError{
				Group:  name,
				Key:    key,
				Detail: fmt.Sprintf("line %d", keyNode.Line),
				Err:    group.ErrDuplicateKey,
			}
		}
		seen[keyNode.Value] = struct{}{}

		if err := fn(keyNode.Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func scalarString(name, key string, node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode {
		return "", typeErr(name, key, node, "a string")
	}
	return node.Value, nil
}

func stringList(name, key string, node *yaml.Node) ([]string, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, typeErr(name, key, node, "a list of strings")
	}

	out := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return nil, typeErr(name, key, item, "a list of strings")
		}
		out = append(out, item.Value)
	}
	return out, nil
}

func integer(name, key string, node *yaml.Node) (*int, error) {
	if node.Kind != yaml.ScalarNode || node.Tag != tagInt {
		return nil, &group.ConfigError{
			Group:  name,
			Key:    key,
			Detail: fmt.Sprintf("line %d: %q", node.Line, node.Value),
			Err:    group.ErrInvalidNumber,
		}
	}

	var n int
	if err := node.Decode(&n); err != nil {
		return nil, &group.ConfigError{Group: name, Key: key, Detail: err.Error(), Err: group.ErrInvalidNumber}
	}
	return &n, nil
}

func weightMap(name string, node *yaml.Node) (map[string]float64, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &group.ConfigError{
			Group:  name,
			Key:    "weights",
			Detail: fmt.Sprintf("line %d: not a mapping", node.Line),
			Err:    group.ErrInvalidWeights,
		}
	}

	weights := make(map[string]float64, len(node.Content)/2)
	err := eachPair(name, "weights", node, func(record string, value *yaml.Node) error {
		if value.Kind != yaml.ScalarNode || (value.Tag != tagInt && value.Tag != tagFloat) {
			return &group.ConfigError{
				Group:  name,
				Key:    "weights",
				Detail: fmt.Sprintf("line %d: %q is not a number", value.Line, record),
				Err:    group.ErrInvalidWeights,
			}
		}

		var w float64
		if err := value.Decode(&w); err != nil {
			return &group.ConfigError{Group: name, Key: "weights", Detail: err.Error(), Err: group.ErrInvalidWeights}
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return &group.ConfigError{
				Group:  name,
				Key:    "weights",
				Detail: fmt.Sprintf("line %d: %q is not finite", value.Line, record),
				Err:    group.ErrInvalidWeights,
			}
		}
		weights[record] = w
		return nil
	})
	if err != nil {
		return nil, err
	}

	return weights, nil
}

func unknownKey(name, key string, node *yaml.Node) error {
	return &group.ConfigError{
		Group:  name,
		Key:    key,
		Detail: fmt.Sprintf("line %d", node.Line),
		Err:    group.ErrUnknownKey,
	}
}

func typeErr(name, key string, node *yaml.Node, want string) error {
	return &group.ConfigError{
		Group:  name,
		Key:    key,
		Detail: fmt.Sprintf("line %d: must be %s", node.Line, want),
		Err:    group.ErrInvalidType,
	}
}
