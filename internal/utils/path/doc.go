// Package pathutils converts between "~"-prefixed and absolute paths.
package pathutils
