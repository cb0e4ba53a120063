package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/tidwall/gjson"

	"github.com/mcncl/jsonlens/internal/errors" // Custom errors package
	"github.com/mcncl/jsonlens/internal/models"
)

// ParseBytes validates data and converts it into a Document, preserving
// object key order.
func ParseBytes(data []byte) (models.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Document{}, errors.NewInputError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}
	if err := Validate(data); err != nil {
		return models.Document{}, err
	}

	root := convert(gjson.ParseBytes(data))
	return models.Document{Root: root, Raw: string(data)}, nil
}

// Validate checks that data holds exactly one well-formed JSON value.
// The returned error carries the decoder's own message and byte offset.
func Validate(data []byte) error {
	var raw json.RawMessage
	err := json.Unmarshal(data, &raw)
	if err == nil {
		return nil
	}

	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		message := fmt.Sprintf("%s (offset %d)", syntaxError.Error(), syntaxError.Offset)
		if strings.Contains(syntaxError.Error(), "after top-level value") {
			return errors.NewParsingError(message, errors.ErrMultipleJSON)
		}
		return errors.NewParsingError(message, errors.ErrInvalidJSON)
	}
	return errors.NewParsingError(err.Error(), errors.ErrInvalidJSON)
}

// convert builds the value model from an already validated gjson result.
// Duplicate object keys keep the position of their first occurrence and
// the value of their last one.
func convert(r gjson.Result) *models.Value {
	switch r.Type {
	case gjson.Null:
		return &models.Value{Kind: models.KindNull, Literal: "null"}
	case gjson.True, gjson.False:
		return &models.Value{Kind: models.KindBool, Literal: r.Raw}
	case gjson.Number:
		return &models.Value{Kind: models.KindNumber, Literal: r.Raw}
	case gjson.String:
		return &models.Value{Kind: models.KindString, Str: r.Str}
	}

	if r.IsArray() {
		v := &models.Value{Kind: models.KindArray, Items: []*models.Value{}}
		r.ForEach(func(_, item gjson.Result) bool {
			v.Items = append(v.Items, convert(item))
			return true
		})
		return v
	}

	v := &models.Value{Kind: models.KindObject, Members: []models.Member{}}
	seen := make(map[string]int)
	r.ForEach(func(key, value gjson.Result) bool {
		child := convert(value)
		if i, ok := seen[key.Str]; ok {
			v.Members[i].Value = child
			return true
		}
		seen[key.Str] = len(v.Members)
		v.Members = append(v.Members, models.Member{Key: key.Str, Value: child})
		return true
	})
	return v
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Document, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Document{}, errors.NewInputError("input string is empty", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Document, error) {
	data, err := ReadFile(filePath)
	if err != nil {
		return models.Document{}, err
	}
	return ParseBytes(data)
}

// ReadFile reads a JSON input file, mapping filesystem failures to input errors.
func ReadFile(filePath string) ([]byte, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return nil, errors.NewInputError(
			fmt.Sprintf("failed to read file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return data, nil
}
