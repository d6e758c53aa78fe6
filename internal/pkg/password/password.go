package password

import "golang.org/x/crypto/bcrypt"

// bcrypt only looks at the first 72 bytes and newer x/crypto rejects longer input.
const maxBytes = 72

func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(clip(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func Compare(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), clip(plain))
}

func clip(plain string) []byte {
	b := []byte(plain)
	if len(b) > maxBytes {
		b = b[:maxBytes]
	}
	return b
}
