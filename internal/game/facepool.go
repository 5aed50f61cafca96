package game

import "strconv"

// DefaultFacePoolSize is the number of card faces shipped with the web client.
const DefaultFacePoolSize = 128

// DefaultFacePool returns n face values named card0 through card{n-1}.
// The names match the image files served to the browser.
func DefaultFacePool(n int) []string {
	if n < 0 {
		n = 0
	}
	pool := make([]string, n)
	for i := range pool {
		pool[i] = "card" + strconv.Itoa(i)
	}
	return pool
}

// MaxGridSize returns the largest even grid size a pool of poolSize distinct
// faces can fill. Returns 0 when not even a 2x2 grid fits.
func MaxGridSize(poolSize int) int {
	size := 0
	for g := 2; g*g/2 <= poolSize; g += 2 {
		size = g
	}
	return size
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
