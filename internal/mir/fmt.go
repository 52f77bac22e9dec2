package mir

import (
	"fmt"
	"strconv"
)

func vregString(r Register) string {
	return "%v" + strconv.FormatUint(uint64(r.ID), 10)
}

func pregString(r Register) string {
	return "%p" + strconv.FormatUint(uint64(r.ID), 10)
}

func intImmString(v int64) string {
	return strconv.FormatInt(v, 10)
}

func floatImmString(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func labelString(b BlockID) string {
	return fmt.Sprintf(".L%d", b)
}
