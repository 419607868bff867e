package cart

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrCorrupt = errors.New("corrupt cart data")

// Encode serializes lines as a JSON array. A nil slice encodes as [].
func Encode(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}

	return json.Marshal(lines)
}

// Decode parses data written by Encode and rejects anything a Store could
// not have produced: duplicate ids or quantities below one.
func Decode(data []byte) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %q has quantity %d", ErrCorrupt, l.ID, l.Quantity)
		}
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("%w: product %q listed twice", ErrCorrupt, l.ID)
		}
		seen[l.ID] = struct{}{}
	}

	if lines == nil {
		lines = []Line{}
	}

	return lines, nil
}
