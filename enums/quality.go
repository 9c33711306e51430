package enums

import "strings"

type Quality string

const (
	QualitySD Quality = "sd"
	QualityHD Quality = "hd"
)

// Rank orders qualities as sd < hd. unknown values rank below sd.
func (q Quality) Rank() int {
	switch Quality(strings.ToLower(string(q))) {
	case QualitySD:
		return 1
	case QualityHD:
		return 2
	default:
		return 0
	}
}
