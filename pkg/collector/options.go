package collector

import "time"

type Options struct {
	Model       string
	Timeout     time.Duration
	Temperature float32
}

func DefaultOptions() Options {
	return Options{
		Model:       "gemini-2.5-flash",
		Timeout:     30 * time.Second,
		Temperature: 0.2,
	}
}
