package json_types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID идентификатор ресурса бэкенда. Бэкенд отдает числа, хранилище в памяти
// строки uuid, поэтому принимаем оба варианта и храним строкой
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("failed to parse id: %w", err)
		}
		*id = ID(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("failed to parse id: %w", err)
	}
	*id = ID(num.String())
	return nil
}

// MarshalJSON отдает число, если идентификатор числовой, иначе строку
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return json.Marshal(n)
	}
	return json.Marshal(string(id))
}

func (id ID) String() string {
	return string(id)
}

func (id ID) IsEmpty() bool {
	return id == ""
}
