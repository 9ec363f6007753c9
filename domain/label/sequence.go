package label

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/prasetyowira/qrlabel/constant"
)

// Expand derives count payloads from base. A single-item run keeps base
// exactly as given; larger runs suffix it with -1 .. -count.
func Expand(base string, count int) ([]string, error) {
	return ExpandWithLimit(base, count, 0)
}

// ExpandWithLimit is Expand with an upper bound on count. A limit <= 0
// disables the bound.
func ExpandWithLimit(base string, count, limit int) ([]string, error) {
	if strings.TrimSpace(base) == "" {
		return nil, invalidInput(constant.ErrEmptyBase)
	}
	if count < 1 {
		return nil, invalidInput(constant.ErrInvalidSplitCount)
	}
	if limit > 0 && count > limit {
		return nil, invalidInput(fmt.Sprintf("%s (%d > %d)", constant.ErrSplitCountTooLarge, count, limit))
	}

	if count == 1 {
		return []string{base}, nil
	}

	payloads := make([]string, count)
	for i := range payloads {
		payloads[i] = base + "-" + strconv.Itoa(i+1)
	}
	return payloads, nil
}
