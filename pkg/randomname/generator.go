package randomname

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Company name fragments for demo tenants. The combinations are meant to
// read like plausible maintenance-company names on a dashboard, not like
// container ids.
var adjectives = []string{
	"apex", "atlas", "beacon", "cascade", "crest", "evergreen", "frontier",
	"granite", "harbor", "horizon", "ironwood", "keystone", "lakeside",
	"meridian", "northern", "pioneer", "redwood", "ridgeline", "summit",
	"sterling", "titan", "vanguard", "westfield",
}

var nouns = []string{
	"facilities", "industrial", "logistics", "maintenance", "manufacturing",
	"mechanical", "operations", "plant services", "properties", "utilities",
}

var (
	mu  sync.Mutex
	rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Company returns a display name like "Cascade Industrial".
func Company() string {
	mu.Lock()
	defer mu.Unlock()
	return fmt.Sprintf("%s %s",
		title(adjectives[rnd.Intn(len(adjectives))]),
		title(nouns[rnd.Intn(len(nouns))]))
}

// title uppercases the first letter of each space-separated word. The word
// lists are plain ASCII so a byte-level transform is enough.
func title(s string) string {
	b := []byte(s)
	upper := true
	for i := range b {
		if upper && b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
		upper = b[i] == ' '
	}
	return string(b)
}
