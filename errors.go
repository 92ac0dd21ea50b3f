package mpschema

import "github.com/reoring/mpschema/diag"

// Issue is a single compilation failure with its source location.
type Issue = diag.Issue

// Issues aggregates failures of independent compilations (CompileAll).
type Issues = diag.Issues

// AsIssue extracts an *Issue from err using errors.As.
func AsIssue(err error) (*Issue, bool) { return diag.AsIssue(err) }

// AsIssues extracts Issues from err using errors.As.
func AsIssues(err error) (Issues, bool) { return diag.AsIssues(err) }
