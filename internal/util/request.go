package util

import (
	"fmt"
	"math/rand"
)

var (
	requestActions = []string{
		"grazing", "trekking", "humming", "spitting", "prancing",
		"carrying", "leading", "following", "resting", "alerting",
		"browsing", "foraging", "wandering", "galloping", "ambling",
	}
	requestLlamas = []string{
		"huacaya", "suri", "vicuna", "alpaca", "guanaco",
		"woolly", "silky", "fluffy", "curly", "shaggy",
		"noble", "gentle", "swift", "steady", "proud",
	}
)

// GenerateRequestID returns a short readable id, e.g. "suri_grazing_03fa"
func GenerateRequestID() string {
	group := requestLlamas[rand.Intn(len(requestLlamas))]
	action := requestActions[rand.Intn(len(requestActions))]
	return fmt.Sprintf("%s_%s_%04x", group, action, rand.Intn(65536))
}
