package sharing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedPayload = errors.New("malformed sharing payload")

// SharedSubject is the exchange format of a subject. Teachers travel by name only.
type SharedSubject struct {
	Name     string   `json:"name"`
	Teachers []string `json:"teachers"`
	ColorHex string   `json:"colorHex"`
}

type SharedPeriod struct {
	Index           int `json:"index"`
	StartMinute     int `json:"startMinute"`
	DurationMinutes int `json:"durationMinutes"`
}

func DecodeSubjects(data []byte) ([]SharedSubject, error) {
	return decodeOneOrMany[SharedSubject](data)
}

func DecodePeriods(data []byte) ([]SharedPeriod, error) {
	return decodeOneOrMany[SharedPeriod](data)
}

// decodeOneOrMany accepts a JSON array of records or a single bare record.
func decodeOneOrMany[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedPayload)
	}
	var many []T
	arrayErr := json.Unmarshal(trimmed, &many)
	if arrayErr == nil {
		if many == nil {
			many = []T{}
		}
		return many, nil
	}
	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, errors.Join(arrayErr, err))
	}
	return []T{one}, nil
}

func encode[T any](records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	return json.Marshal(records)
}
