// Package diagnostic provides accumulated, structured findings: errors and
// warnings tied to a data path, the rule that produced them and,
// for warnings, a suggested alternative.
//
// Validation never stops at the first problem; it records every finding here
// and lets the caller decide what a failure is.
package diagnostic
