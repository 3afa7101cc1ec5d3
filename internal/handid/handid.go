// Package handid generates sortable hand identifiers: UUIDv7 encoded as a
// 26-character Crockford base32 string, so ids order by creation time.
package handid

import (
	"crypto/rand"
	"fmt"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// New returns a new hand id.
func New() string {
	return encodeBase32(newUUIDv7())
}

// newUUIDv7 builds a 128-bit UUIDv7: 48-bit millisecond timestamp, then
// version/variant bits over random data.
func newUUIDv7() [16]byte {
	var uuid [16]byte

	now := time.Now().UnixMilli()
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	if _, err := rand.Read(uuid[6:]); err != nil {
		panic("handid: " + err.Error())
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x70 // version 7
	uuid[8] = (uuid[8] & 0x3f) | 0x80 // variant 10

	return uuid
}

// encodeBase32 packs 128 bits into 26 base32 characters, 5 bits each.
func encodeBase32(data [16]byte) string {
	result := make([]byte, 26)
	for i := 0; i < 26; i++ {
		bitOffset := i * 5
		byteIndex := bitOffset / 8
		bitIndex := bitOffset % 8

		var value uint8
		if byteIndex < 16 {
			if bitIndex <= 3 {
				value = (data[byteIndex] >> (3 - bitIndex)) & 0x1f
			} else {
				value = (data[byteIndex] << (bitIndex - 3)) & 0x1f
				if byteIndex+1 < 16 {
					value |= data[byteIndex+1] >> (11 - bitIndex)
				}
			}
		}
		result[i] = alphabet[value]
	}
	return string(result)
}

// Validate checks that id is a well-formed hand id.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("hand id must be 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("hand id first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		valid := false
		for _, a := range alphabet {
			if c == a {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
