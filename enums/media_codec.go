package enums

type MediaCodec string

const (
	MediaCodecAVC    MediaCodec = "avc"
	MediaCodecHEVC   MediaCodec = "hevc"
	MediaCodecVP9    MediaCodec = "vp9"
	MediaCodecAV1    MediaCodec = "av1"
	MediaCodecAAC    MediaCodec = "aac"
	MediaCodecAC3    MediaCodec = "ac3"
	MediaCodecEAC3   MediaCodec = "eac3"
	MediaCodecOpus   MediaCodec = "opus"
	MediaCodecMP3    MediaCodec = "mp3"
	MediaCodecWebVTT MediaCodec = "wvtt"
	MediaCodecTTML   MediaCodec = "stpp"
)
