package enums

type PsshSource string

const (
	PsshSourceAttribute PsshSource = "attribute"
	PsshSourceElement   PsshSource = "element"
	// synthesized from a widevine ContentProtection node
	PsshSourceDRMInfo PsshSource = "drm_info"
)
