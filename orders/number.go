package orders

import (
	"fmt"
	"sync/atomic"
	"time"
)

// orderSeq disambiguates orders placed within the same millisecond. A pure
// timestamp is not unique under concurrent placement.
var orderSeq atomic.Uint64

// NewOrderNumber generates a globally unique order number of the form
// ORD<epoch-ms><4-digit-sequence>. Generated once at creation and never
// regenerated.
func NewOrderNumber() string {
	seq := orderSeq.Add(1) % 10000
	return fmt.Sprintf("ORD%d%04d", time.Now().UnixMilli(), seq)
}
