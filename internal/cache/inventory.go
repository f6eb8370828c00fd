package cache

import (
	"context"
	"fmt"
	"time"
)

const postKeyPrefix = "post:%s"

// PostTTL bounds how long a cached post may serve reads.
const PostTTL = 5 * time.Minute

// PostKey returns the cache key for one post.
func PostKey(postID string) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// Invalidate drops a key from the cache, if caching is enabled.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}
