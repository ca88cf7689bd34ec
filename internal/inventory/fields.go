package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"fleet/internal/models"
)

// KeyError — ключ полей устройства, не объявленный в схеме типа.
type KeyError struct{ Key string }

func (e *KeyError) Error() string {
	return fmt.Sprintf("field key %q is not declared by the type", e.Key)
}

// ValidateFields проверяет, что каждый ключ из raw (JSON-объект полей)
// входит в схему типа. Проверка по ключам, не по полноте: объект с меньшим
// числом ключей, чем в схеме, проходит. Первый не входящий в схему ключ —
// в порядке документа, поэтому результат детерминирован.
func ValidateFields(schema models.FieldSchema, raw []byte) error {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	keys, err := fieldKeys(raw)
	if err != nil {
		return err
	}
	set := schema.KeySet()
	for _, k := range keys {
		if _, ok := set[k]; !ok {
			return &KeyError{Key: k}
		}
	}
	return nil
}

// fieldKeys возвращает ключи верхнего уровня JSON-объекта в порядке документа.
// encoding/json при разборе в map порядок теряет, поэтому идём по токенам.
func fieldKeys(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("fields must be a JSON object")
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("fields: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("fields: unexpected token %v", keyTok)
		}
		keys = append(keys, key)
		if err := skipValue(dec); err != nil {
			return nil, fmt.Errorf("fields: %w", err)
		}
	}
	return keys, nil
}

// skipValue пропускает одно JSON-значение (включая вложенные объекты/массивы).
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
