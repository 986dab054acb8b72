package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// MakeCacheKey fingerprints an endpoint call as
// "svc:{endpoint}:{version}:{sha256hex}". Params are serialized as
// canonical JSON: encoding/json writes map keys in sorted order at
// every nesting level, so two maps with the same pairs in different
// insertion order produce identical bytes and identical keys.
func MakeCacheKey(endpoint, version string, params map[string]any) string {
	payload, err := json.Marshal(params)
	if err != nil {
		// params are plain scalars, lists and nulls; marshaling them
		// cannot fail at runtime.
		panic(fmt.Sprintf("cache: unmarshalable params: %v", err))
	}
	return fmt.Sprintf("svc:%s:%s:%x", endpoint, version, sha256.Sum256(payload))
}
