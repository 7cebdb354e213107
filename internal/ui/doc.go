// Package ui holds small terminal output helpers.
package ui
