package enums

type Outcome string

const (
	OutcomeClear             Outcome = "clear"
	OutcomeProcessedAsset    Outcome = "processed_asset"
	OutcomeProcessingPending Outcome = "processing_pending"
	OutcomeClearKeyURL       Outcome = "clearkey_url"
	OutcomeNoKey             Outcome = "no_key"
)

// Degraded reports whether the outcome is a best effort fallback.
func (o Outcome) Degraded() bool {
	return o == OutcomeProcessingPending || o == OutcomeNoKey
}

type ResolveState string

const (
	StateSelectingFormat        ResolveState = "selecting_format"
	StateCheckingExistingAsset  ResolveState = "checking_existing_asset"
	StateExtractingProtection   ResolveState = "extracting_protection"
	StateRequestingLicenseToken ResolveState = "requesting_license_token"
	StateRequestingKey          ResolveState = "requesting_key"
	StateNormalizingKey         ResolveState = "normalizing_key"
	StateChoosingDelivery       ResolveState = "choosing_delivery"
	StateTriggerAsyncRemux      ResolveState = "trigger_async_remux"
)

type DeliveryStrategy string

const (
	DeliveryAuto     DeliveryStrategy = "auto"
	DeliveryClearKey DeliveryStrategy = "clearkey"
	DeliveryRemux    DeliveryStrategy = "remux"
)

func ParseDeliveryStrategy(value string) (DeliveryStrategy, bool) {
	switch DeliveryStrategy(value) {
	case DeliveryAuto, DeliveryClearKey, DeliveryRemux:
		return DeliveryStrategy(value), true
	}
	return "", false
}
