// Package check defines the result contract emitted by every governance
// check: a named pass/fail/skip outcome with enumerated violations.
package check
