/* tokens.go
 * Contains credential generation helpers: judge passcodes and judge session tokens
 */

package shared

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

// PasscodeLength is the length of a judge passcode.
const PasscodeLength = 8

// passcodeAlphabet omits 0/O and 1/I so passcodes survive being read out loud.
const passcodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewPasscode generates an uppercase passcode of PasscodeLength characters.
// Uniqueness across judges is enforced by the store's unique index, not here.
func NewPasscode() (string, error) {
	code := make([]byte, PasscodeLength)
	max := big.NewInt(int64(len(passcodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = passcodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// NewSessionToken generates the opaque capability token handed to a judge after a
// successful passcode exchange. The token has no expiry; it stays valid for as long
// as the judge record exists.
func NewSessionToken() string {
	return uuid.NewString()
}
