// Package remind implements the reminder scheduling core:
// time-expression resolution, repeat intervals, reminder state
// transitions, due-set evaluation and the run orchestration.
//
// Everything here is deterministic given an explicit "now"; the only
// I/O happens behind the Store and Notifier interfaces consumed by
// Engine.
package remind
