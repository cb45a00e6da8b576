// Package mail delivers finished audit reports over SMTP, with retry logic
// and the workbook attached from memory.
package mail
