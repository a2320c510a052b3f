// Package notify delivers missing-media alerts.
//
// A Notifier is called once per missing-media check, after the report has
// been written, and only when the missing set is non-empty. The shipped
// implementations log the composed message or do nothing; mail transport is
// left to other Notifier implementations.
package notify
