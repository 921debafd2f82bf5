package local

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/itchan-dev/askanon/shared/domain"
)

const (
	questionPrefix = "q_"
	replyPrefix    = "r_"

	idSuffixLen = 9
	base36      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// newID returns prefix + epoch millis + "_" + a random base36 suffix. Unique with
// overwhelming probability within one store, not globally; collisions are not handled.
func newID(prefix string, now time.Time) string {
	suffix := make([]byte, idSuffixLen)
	for i := range suffix {
		suffix[i] = base36[rand.IntN(len(base36))]
	}
	return prefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix)
}

// decodeDocument parses the persisted document. A missing document is an empty snapshot.
func decodeDocument(data []byte) (domain.Snapshot, error) {
	if len(data) == 0 {
		return domain.Snapshot{}, nil
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode local document: %w", err)
	}
	return snap.Normalize(), nil
}

func encodeDocument(snap domain.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode local document: %w", err)
	}
	return data, nil
}
