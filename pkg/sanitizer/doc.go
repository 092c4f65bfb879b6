// Package sanitizer normalizes user input before validation and storage.
//
// Every function is idempotent. Invalid input yields an empty string rather
// than an error; callers decide whether empty is acceptable.
//
//   - Phone numbers become E.164 (+[country][number]).
//   - Names and titles have whitespace collapsed and trimmed.
//   - Logins are trimmed and lowercased.
package sanitizer
