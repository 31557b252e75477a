package tool

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// MinIDWidth is the minimum zero-padded width of sequential record ids.
const MinIDWidth = 6

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IDWidth returns the zero-padded width needed to format indexes in [0, count).
func IDWidth(count int) int {
	w := len(strconv.Itoa(max(count-1, 0)))
	return max(w, MinIDWidth)
}

// SequentialID formats index as prefix followed by a zero-padded number,
// e.g. SequentialID("C", 7, 6) == "C000007".
func SequentialID(prefix string, index, width int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, index)
}
