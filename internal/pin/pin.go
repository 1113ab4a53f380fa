// Package pin maps internal session ids to the opaque tokens clients
// use to address a session. The mapping is reversible obfuscation, not
// security; joining still requires the team password.
package pin

import (
	"fmt"
	"strconv"
	"strings"
)

const minLength = 6

// Codec encodes session ids as uppercase base-36 pins. The mask keeps
// consecutive ids from producing consecutive pins.
type Codec struct {
	mask int64
}

// NewCodec creates a codec with the given mask. A zero mask is valid
// and yields plain base-36 ids.
func NewCodec(mask int64) *Codec {
	return &Codec{mask: mask}
}

// Encode returns the pin for a session id.
func (c *Codec) Encode(id int64) string {
	pin := strings.ToUpper(strconv.FormatInt(id^c.mask, 36))
	if len(pin) < minLength {
		pin = strings.Repeat("0", minLength-len(pin)) + pin
	}
	return pin
}

// Decode returns the session id for a pin, or an error when the pin
// is not one this codec produced.
func (c *Codec) Decode(pin string) (int64, error) {
	if pin == "" {
		return 0, fmt.Errorf("empty pin")
	}
	v, err := strconv.ParseInt(strings.ToLower(pin), 36, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pin %q: %w", pin, err)
	}
	id := v ^ c.mask
	if id <= 0 {
		return 0, fmt.Errorf("invalid pin %q", pin)
	}
	return id, nil
}
