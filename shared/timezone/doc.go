// Package timezone keeps every timestamp the service reads or writes in one
// configured location (APP_TIMEZONE, IANA names such as "UTC" or "Asia/Jakarta").
//
//	now := timezone.Now()
//	t, err := timezone.ParseDateTime("2024-01-01 08:30:00")
//	formatted := timezone.Format(t, time.RFC3339)
//
// The location is resolved once when the package is imported and falls back
// to UTC when the name cannot be loaded.
package timezone
