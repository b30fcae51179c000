package constants

import "time"

// Per user entries in the user cache DB. CacheBuilder joins prefix and id
// with a colon.
const (
	UserCachePrefix  = "user"
	UserCacheExpiry  = 24 * time.Hour
	LikesCachePrefix = "likes"
	LikesCacheExpiry = 1 * time.Hour
)
