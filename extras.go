package bolt

// TxConfig carries the optional request parameters shared by RUN and
// BEGIN. Zero values are omitted from the wire.
type TxConfig struct {
	// DB selects the database to run against. Empty means the
	// server-side default.
	DB string

	// ImpersonatedUser runs the work as another user. Empty means no
	// impersonation.
	ImpersonatedUser string

	// Notifications is gated by the per-version feature table and is
	// rejected before encoding on versions that lack it.
	Notifications NotificationConfig
}

// txExtras builds the extras mapping for RUN and BEGIN. Keys appear
// only when their value differs from the default.
func txExtras(config TxConfig) map[string]interface{} {
	extra := map[string]interface{}{}
	if config.DB != "" {
		extra["db"] = config.DB
	}
	if config.ImpersonatedUser != "" {
		extra["imp_user"] = config.ImpersonatedUser
	}
	return extra
}

// streamExtras builds the extras mapping for PULL and DISCARD. The
// record count n is always present (-1 means all). qid identifies the
// query on the server and is omitted at its default of -1, meaning
// the most recent query.
func streamExtras(n, qid int64) map[string]interface{} {
	extra := map[string]interface{}{"n": n}
	if qid != -1 {
		extra["qid"] = qid
	}
	return extra
}
