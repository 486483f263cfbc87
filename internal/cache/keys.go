package cache

import (
	"fmt"
	"strings"
)

func GameKey(appID int) string {
	return fmt.Sprintf("game:%d", appID)
}

func TagGamesKey(tag string) string {
	return fmt.Sprintf("tag:games:%s", strings.ToLower(tag))
}

func DeveloperGamesKey(developer string) string {
	return fmt.Sprintf("dev:games:%s", strings.ToLower(strings.TrimSpace(developer)))
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
