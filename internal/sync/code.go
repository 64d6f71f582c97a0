package sync

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Word lists for human-memorable sync codes. Combined with the numeric
// suffix they give roughly 100k combinations — enough that guessing a
// live code within its 24-hour window is impractical for casual abuse.
// The code is a locator, not the secrecy boundary: the email-bound key is.
var codeAdjectives = []string{
	"GOLDEN", "MYSTIC", "AZURE", "CORAL", "EMERALD", "CRIMSON", "SILVER",
	"CRYSTAL", "SUNSET", "DAWN", "OCEAN", "MOUNTAIN", "FOREST", "DESERT",
	"AMBER", "VELVET", "HIDDEN", "WANDERING", "DISTANT", "POLAR",
	"TROPIC", "MISTY", "SUNLIT", "WINDY", "QUIET", "WILD", "ANCIENT",
	"BRIGHT", "COBALT", "IVORY", "SCARLET", "NOMAD",
}

var codeDestinations = []string{
	"TOKYO", "PARIS", "BALI", "ICELAND", "MOROCCO", "PERU", "GREECE",
	"NORWAY", "THAILAND", "EGYPT", "BRAZIL", "INDIA", "JAPAN", "ITALY",
	"KENYA", "CUBA", "FIJI", "LAOS", "MALTA", "NEPAL", "OMAN",
	"PATAGONIA", "SAHARA", "SICILY", "TAHITI", "TIBET", "VIENNA",
	"ZANZIBAR", "ANDES", "BORNEO", "CAIRO", "LISBON",
}

// GenerateCode draws from crypto/rand and returns a code of the form
// WORD-WORD-NN, e.g. "GOLDEN-TOKYO-42".
func GenerateCode() (string, error) {
	var buf [12]byte
	if _, err := io.ReadFull(rand.Reader, buf[:]); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	adjective := codeAdjectives[binary.BigEndian.Uint32(buf[0:4])%uint32(len(codeAdjectives))]
	destination := codeDestinations[binary.BigEndian.Uint32(buf[4:8])%uint32(len(codeDestinations))]
	number := binary.BigEndian.Uint32(buf[8:12])%99 + 1
	return fmt.Sprintf("%s-%s-%d", adjective, destination, number), nil
}

// NormalizeCode maps user input onto the stored code form.
// Codes match case-insensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
