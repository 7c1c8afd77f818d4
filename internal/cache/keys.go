package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	JTIKeyPrefix  = "jti:%s"
)

const (
	// UserTTL bounds how stale a cached user row may get. Derived counts are
	// never cached; only the raw row is.
	UserTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func JTIKey(jti string) string {
	return fmt.Sprintf(JTIKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
