package backend

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

const defaultTokenLimit = 8000

// tokenLimitFromEnv reads a vendor's total context budget at
// construction time. Unset falls back to the default; set-but-empty
// disables truncation entirely.
func tokenLimitFromEnv(name string) int {
	raw, ok := os.LookupEnv(name)
	if !ok {
		return defaultTokenLimit
	}
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("var", name).Str("value", raw).Msg("invalid token limit, using default")
		return defaultTokenLimit
	}
	return limit
}
