package main

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// SpamGuard allows one post per interval for each poster id.
type SpamGuard struct {
	interval time.Duration
	posts    map[string]*visitor
	mutex    *sync.Mutex
}

func NewSpamGuard(interval time.Duration) *SpamGuard {
	return &SpamGuard{
		interval: interval,
		posts:    make(map[string]*visitor),
		mutex:    &sync.Mutex{},
	}
}

func (sg *SpamGuard) CanPost(id string) bool {
	now := time.Now()
	sg.mutex.Lock()
	defer sg.mutex.Unlock()
	v, found := sg.posts[id]
	if !found {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(sg.interval), 1)}
		sg.posts[id] = v
	}
	v.seen = now
	result := v.limiter.AllowN(now, 1)
	sg.clean(now)
	return result
}

// clean forgets posters whose limiter has refilled since their last post.
func (sg *SpamGuard) clean(now time.Time) {
	for key, v := range sg.posts {
		if v.seen.Add(sg.interval).Before(now) {
			delete(sg.posts, key)
		}
	}
}
