package snowflake

import (
	"strconv"
	"time"

	"github.com/sony/sonyflake"
)

var _idGen = sonyflake.NewSonyflake(sonyflake.Settings{
	StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	MachineID: func() (uint16, error) { return uint16(time.Now().Unix() % 1024), nil },
})

// Generate returns a short unique id usable in html element ids and file names.
func Generate() string {
	id, err := _idGen.NextID()
	if err != nil {
		// clock skew beyond the sonyflake epoch, fall back to wall clock
		id = uint64(time.Now().UnixNano())
	}
	return strconv.FormatUint(id, 36)
}
