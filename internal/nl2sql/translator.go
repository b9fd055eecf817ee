// Package nl2sql translates a natural-language question into a candidate SQL
// string. The result is untrusted text; the sqlguard package decides whether
// it may run.
package nl2sql

import "context"

type Request struct {
	Question   string
	SchemaText string
	// Dialect names the SQL flavor the model should emit
	// ("sqlserver" or "postgres").
	Dialect string
}

type Result struct {
	SQL      string
	Provider string
	Model    string
}

type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}
