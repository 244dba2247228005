package domain

// LocationErrorInfo describes why a destination's location could not be
// resolved. It is derived at read time from the persisted trip and is never
// stored itself.
type LocationErrorInfo struct {
	Cause   string `json:"cause"`
	Message string `json:"message"`
}

// LocationErrors inspects both destinations of a trip and reports which of
// them failed to resolve. Per destination: neither country nor locality set
// means the coordinates could not be located at all; country without
// locality means the coordinates were too imprecise for a locality. A fully
// resolved destination contributes nothing.
func LocationErrors(t Trip) []LocationErrorInfo {
	var errs []LocationErrorInfo

	start := t.StartDestination
	if start.Country == "" && start.Locality == "" {
		errs = append(errs, LocationErrorInfo{
			Cause:   "Invalid start location coordinates",
			Message: "Cannot define location by coordinates. Please update start location coordinates",
		})
	} else if start.Locality == "" {
		errs = append(errs, LocationErrorInfo{
			Cause:   "Invalid start location coordinates",
			Message: "Cannot define locality by coordinates. Please specify start location coordinates more precisely",
		})
	}

	final := t.FinalDestination
	if final.Country == "" && final.Locality == "" {
		errs = append(errs, LocationErrorInfo{
			Cause:   "Invalid final location coordinates",
			Message: "Cannot define location by coordinates. Please update final location coordinates",
		})
	} else if final.Locality == "" {
		errs = append(errs, LocationErrorInfo{
			Cause:   "Invalid final location coordinates",
			Message: "Cannot define locality by coordinates. Please specify final location coordinates more precisely",
		})
	}

	return errs
}
