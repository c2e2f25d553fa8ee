package bolt

// featureSet is the per-version capability table. Each protocol
// version connection type declares one; requests are checked against
// it before anything is queued or encoded.
type featureSet struct {
	notificationFilters bool
}

// bolt5x1Features: 5.1 adds LOGON/LOGOFF but predates server-side
// notification filtering (introduced in 5.2).
var bolt5x1Features = featureSet{
	notificationFilters: false,
}

// NotificationConfig carries the optional notification filtering
// request options. MinSeverity empty means unset. A nil
// DisabledCategories means unset, while a non-nil empty slice is an
// explicit (empty) filter and still counts as using the feature.
type NotificationConfig struct {
	MinSeverity        string
	DisabledCategories []string
}

func (n NotificationConfig) isSet() bool {
	return n.MinSeverity != "" || n.DisabledCategories != nil
}

// checkNotificationFiltering gates notification filter options against
// the capability table.
func checkNotificationFiltering(n NotificationConfig, features featureSet) error {
	if !n.isSet() || features.notificationFilters {
		return nil
	}
	return &ConfigurationError{
		Message: "Notification filtering is not supported on this protocol version (5.1)",
	}
}
