// Package catalog models what can be ordered: catalog items and the category
// that decides which lifecycle an order containing them follows.
package catalog
