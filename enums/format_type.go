package enums

type FormatType string

const (
	FormatTypeHLS FormatType = "hls"
	FormatTypeMPD FormatType = "mpd"
	// processed assets produced by the remux service
	FormatTypeVideo FormatType = "video"
)
