package codec

import (
	"fmt"

	"github.com/google/uuid"
)

func orderIDBytes(id string) ([16]byte, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return [16]byte{}, fmt.Errorf("order id %q: %w", id, err)
	}
	return parsed, nil
}

func orderIDString(raw [16]byte) string {
	return uuid.UUID(raw).String()
}
