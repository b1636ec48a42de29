// Package storage persists reminders in SQLite.
//
// The schema mirrors the reminder data model one to one; timestamps
// are epoch seconds, optional ones NULL. The single write connection
// plus WAL keeps overlapping trigger invocations serialized at the
// database.
package storage
