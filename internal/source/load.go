package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/slangspace/internal/model"
)

// LoadFile reads slang terms from a JSON or YAML file. The file may hold a
// list of terms or a single term. Terms are normalized and marked committed
// unless the file says otherwise.
func LoadFile(path string) ([]model.SlangTerm, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var terms []model.SlangTerm
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		terms, err = decodeJSON(raw)
	default:
		terms, err = decodeYAML(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	for i := range terms {
		terms[i].Term = model.NormalizeTerm(terms[i].Term)
	}
	return terms, nil
}

func decodeJSON(raw []byte) ([]model.SlangTerm, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		st, err := decodeOneJSON(trimmed)
		if err != nil {
			return nil, err
		}
		return []model.SlangTerm{st}, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, err
	}
	out := make([]model.SlangTerm, 0, len(list))
	for _, item := range list {
		st, err := decodeOneJSON(item)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// decodeOneJSON defaults isCommitted to true when the key is absent
func decodeOneJSON(raw []byte) (model.SlangTerm, error) {
	st := model.SlangTerm{IsCommitted: true}
	err := json.Unmarshal(raw, &st)
	return st, err
}

func decodeYAML(raw []byte) ([]model.SlangTerm, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return []model.SlangTerm{}, nil
	}

	doc := node.Content[0]
	items := []*yaml.Node{doc}
	if doc.Kind == yaml.SequenceNode {
		items = doc.Content
	}

	out := make([]model.SlangTerm, 0, len(items))
	for _, item := range items {
		st := model.SlangTerm{IsCommitted: true}
		if err := item.Decode(&st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
