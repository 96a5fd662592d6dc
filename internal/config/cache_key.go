package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TeacherStatsKey returns the cache key for a teacher's dashboard quiz counts.
func (r *CacheKeyStruct) TeacherStatsKey(teacherID int) string {
	return fmt.Sprintf("teacher:%d:quiz_stats", teacherID)
}

// NotificationChannel returns the Redis PubSub channel for a recipient's
// live notification stream.
func (r *CacheKeyStruct) NotificationChannel(role string, recipientID int) string {
	return fmt.Sprintf("notify:%s:%d", role, recipientID)
}

var CacheKey = NewCacheKeyStruct()
