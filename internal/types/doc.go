// Package types holds the value types shared by the pattern compiler, the
// scanning engine and the report writers.
package types
