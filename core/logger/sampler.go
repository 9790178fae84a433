package logger

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// ratioSampler admits num out of every den events.
type ratioSampler struct {
	num     atomic.Int64
	den     atomic.Int64
	counter atomic.Int64
}

func newRatioSampler(num, den int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(num, den)
	return s
}

// Set replaces the sampling ratio. A zero denominator disables sampling entirely.
func (s *ratioSampler) Set(num, den int) {
	s.num.Store(int64(num))
	s.den.Store(int64(den))
}

// Allow reports whether the next event falls within the sampled fraction.
func (s *ratioSampler) Allow() bool {
	den := s.den.Load()
	if den <= 0 {
		return false
	}
	num := s.num.Load()
	if num >= den {
		return true
	}
	n := s.counter.Add(1)
	return (n-1)%den < num
}

// parseRatioSpec parses "1/50" style specs; "off"/"0" returns (0, 0).
func parseRatioSpec(spec string) (int, int) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	switch spec {
	case "off", "none", "0":
		return 0, 0
	case "all", "1", "on":
		return 1, 1
	}
	parts := strings.SplitN(spec, "/", 2)
	if len(parts) != 2 {
		return -1, -1
	}
	num, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	den, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return -1, -1
	}
	return num, den
}
