// Package blockedit manages uniquely keyed, marker-delimited blocks inside text
// files that users also edit by hand, such as SSH configuration and shell rc files.
package blockedit
