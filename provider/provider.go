// Package provider defines the AI provider implementations for translation
// and quality review.
package provider

import "github.com/ZaguanLabs/localeflow"

// Provider is the interface for AI text-generation backends.
// This is an alias to the main package interface for convenience.
type Provider = localeflow.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = localeflow.TranslateRequest

// ReviewRequest is an alias to the main package type.
type ReviewRequest = localeflow.ReviewRequest

// ReviewResult is an alias to the main package type.
type ReviewResult = localeflow.ReviewResult
