package primitives

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Digest returns a short deterministic fingerprint of the profile's content,
// so two processes can tell whether they run the same thread layout.
func (p *Profile) Digest() string {
	data, err := json.Marshal(p)
	if err != nil {
		return "invalid"
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:8])
}
