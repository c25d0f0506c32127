// Package faq loads the FAQ knowledge base from JSON or YAML and watches the
// source file for edits.
package faq
